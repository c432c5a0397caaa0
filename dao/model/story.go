package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Comment is an append-only entry in a story's discussion log, stored inline
// as JSONB. Comments are never edited or deleted.
type Comment struct {
	Text       string    `json:"text"`
	AuthorID   uint      `json:"authorId"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Story is a unit of work belonging to a project, optionally placed in a
// sprint of the same project.
type Story struct {
	gorm.Model
	Title       string        `gorm:"type:varchar(200);not null"`
	Description string        `gorm:"type:text"`
	ProjectID   uint          `gorm:"not null;index"`
	SprintID    *uint         `gorm:"index"`
	Status      StoryStatus   `gorm:"type:varchar(16);not null;default:'backlog'"`
	Priority    StoryPriority `gorm:"type:varchar(16);not null;default:'medium'"`
	Points      int           `gorm:"not null;default:0"`
	AssigneeID  *uint         `gorm:"index"`
	Assignee    *User
	ReporterID  uint `gorm:"not null"`
	Reporter    User
	Comments    datatypes.JSONSlice[Comment] `gorm:"type:jsonb"`
}

// CanDelete is narrower than general project access: any member may create and
// update stories, but only the project owner or the original reporter may
// delete one.
func (s *Story) CanDelete(p *Project, userID uint) bool {
	return p.IsOwner(userID) || s.ReporterID == userID
}

// AttachToSprint places the story in a sprint and moves it onto the board.
// The status side effect is part of the operation's contract.
func (s *Story) AttachToSprint(sprintID uint) {
	s.SprintID = &sprintID
	s.Status = StoryTodo
}

// DetachFromSprint removes the sprint link and sends the story back to the
// backlog.
func (s *Story) DetachFromSprint() {
	s.SprintID = nil
	s.Status = StoryBacklog
}

// AddComment appends an entry with a server-assigned timestamp.
func (s *Story) AddComment(author *User, text string) {
	s.Comments = append(s.Comments, Comment{
		Text:       text,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  time.Now(),
	})
}
