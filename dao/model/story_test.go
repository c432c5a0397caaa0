package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStorySprintLifecycle(t *testing.T) {
	s := Story{Status: StoryBacklog}

	s.AttachToSprint(42)
	require.NotNil(t, s.SprintID)
	assert.Equal(t, uint(42), *s.SprintID)
	assert.Equal(t, StoryTodo, s.Status, "linking a story must move it onto the board")

	s.Status = StoryInProgress
	s.DetachFromSprint()
	assert.Nil(t, s.SprintID)
	assert.Equal(t, StoryBacklog, s.Status, "unlinking must send the story back to the backlog")
}

func TestStoryCanDelete(t *testing.T) {
	p := &Project{OwnerID: 1, Members: []User{
		{Model: gorm.Model{ID: 2}},
		{Model: gorm.Model{ID: 3}},
	}}
	s := Story{ReporterID: 2}

	assert.True(t, s.CanDelete(p, 1), "owner may delete any story")
	assert.True(t, s.CanDelete(p, 2), "reporter may delete their own story")
	assert.False(t, s.CanDelete(p, 3), "plain members may not delete")
}

func TestStoryAddComment(t *testing.T) {
	author := &User{Model: gorm.Model{ID: 5}, Name: "alice"}
	s := Story{}

	s.AddComment(author, "first")
	s.AddComment(author, "second")

	require.Len(t, s.Comments, 2)
	assert.Equal(t, "first", s.Comments[0].Text)
	assert.Equal(t, uint(5), s.Comments[0].AuthorID)
	assert.Equal(t, "alice", s.Comments[0].AuthorName)
	assert.False(t, s.Comments[0].CreatedAt.IsZero())
}
