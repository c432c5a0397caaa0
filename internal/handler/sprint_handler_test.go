package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
)

func TestSprintDeleteDetachesStories(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	p := seedProject(t, db, "SPD", owner)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sprint := model.Sprint{
		Name: "Sprint 1", ProjectID: p.ID,
		StartDate: start, EndDate: start.AddDate(0, 0, 14),
		Status: model.SprintActive,
	}
	require.NoError(t, db.Create(&sprint).Error)
	story := model.Story{
		Title: "Ship relay", ProjectID: p.ID, SprintID: &sprint.ID,
		Status: model.StoryInProgress, Priority: model.PriorityMedium,
		ReporterID: owner.ID,
	}
	require.NoError(t, db.Create(&story).Error)

	code, _ := doReq(t, newTestRouter(owner), http.MethodDelete,
		fmt.Sprintf("/v1/sprints/%d", sprint.ID), nil)
	require.Equal(t, http.StatusOK, code)

	var got model.Story
	require.NoError(t, db.First(&got, story.ID).Error)
	assert.Nil(t, got.SprintID, "story must survive sprint deletion detached")
	assert.Equal(t, model.StoryBacklog, got.Status)

	var sprints int64
	require.NoError(t, db.Unscoped().Model(&model.Sprint{}).Count(&sprints).Error)
	assert.Zero(t, sprints)
}

func TestSprintUpdateRejectsBadDateRange(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	p := seedProject(t, db, "SPR", owner)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sprint := model.Sprint{
		Name: "Sprint 1", ProjectID: p.ID,
		StartDate: start, EndDate: start.AddDate(0, 0, 14),
		Status: model.SprintPlanning,
	}
	require.NoError(t, db.Create(&sprint).Error)

	// Moving only the start date past the end must fail against the combined range.
	code, resp := doReq(t, newTestRouter(owner), http.MethodPut,
		fmt.Sprintf("/v1/sprints/%d", sprint.ID),
		map[string]any{"startDate": start.AddDate(0, 0, 30).Format(time.RFC3339)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvariantViolation, resp.Code)

	var got model.Sprint
	require.NoError(t, db.First(&got, sprint.ID).Error)
	assert.True(t, got.StartDate.Equal(start), "rejected update must not persist")
}

func TestSprintAttachRejectsForeignStory(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	p := seedProject(t, db, "ATC", owner)
	other := seedProject(t, db, "ATX", owner)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sprint := model.Sprint{
		Name: "Sprint 1", ProjectID: p.ID,
		StartDate: start, EndDate: start.AddDate(0, 0, 14),
		Status: model.SprintPlanning,
	}
	require.NoError(t, db.Create(&sprint).Error)
	foreign := model.Story{
		Title: "Wrong board", ProjectID: other.ID,
		Status: model.StoryBacklog, Priority: model.PriorityMedium,
		ReporterID: owner.ID,
	}
	require.NoError(t, db.Create(&foreign).Error)

	code, resp := doReq(t, newTestRouter(owner), http.MethodPost,
		fmt.Sprintf("/v1/sprints/%d/stories/%d", sprint.ID, foreign.ID), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvariantViolation, resp.Code)

	var got model.Story
	require.NoError(t, db.First(&got, foreign.ID).Error)
	assert.Nil(t, got.SprintID)
}
