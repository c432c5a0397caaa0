// Enum values stored as strings so the API and the database agree on the
// wire representation without a translation table.
package model

// User role in the workspace
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Project status
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Sprint status
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// Story board column
type StoryStatus string

const (
	StoryBacklog    StoryStatus = "backlog"
	StoryTodo       StoryStatus = "todo"
	StoryInProgress StoryStatus = "inProgress"
	StoryReview     StoryStatus = "review"
	StoryDone       StoryStatus = "done"
)

// Story priority
type StoryPriority string

const (
	PriorityLow    StoryPriority = "low"
	PriorityMedium StoryPriority = "medium"
	PriorityHigh   StoryPriority = "high"
)
