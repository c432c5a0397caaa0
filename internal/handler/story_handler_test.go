package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
)

func TestCreateStoryValidation(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	outsider := seedUser(t, db, "outsider", model.RoleMember)
	p := seedProject(t, db, "STV", owner)
	other := seedProject(t, db, "OTH", owner)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	foreignSprint := model.Sprint{
		Name: "Elsewhere", ProjectID: other.ID,
		StartDate: start, EndDate: start.AddDate(0, 0, 7),
		Status: model.SprintPlanning,
	}
	require.NoError(t, db.Create(&foreignSprint).Error)

	r := newTestRouter(owner)
	path := fmt.Sprintf("/v1/projects/%d/stories", p.ID)

	// Points are capped at 100.
	code, resp := doReq(t, r, http.MethodPost, path,
		map[string]any{"title": "Implement login", "points": 500})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvalidRequest, resp.Code)

	// A sprint from another project cannot hold this story.
	code, resp = doReq(t, r, http.MethodPost, path,
		map[string]any{"title": "Implement login", "sprintId": foreignSprint.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvariantViolation, resp.Code)

	// The assignee must be a project member.
	code, resp = doReq(t, r, http.MethodPost, path,
		map[string]any{"title": "Implement login", "assigneeId": outsider.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvariantViolation, resp.Code)

	// A valid request lands in the backlog with medium priority.
	code, resp = doReq(t, r, http.MethodPost, path,
		map[string]any{"title": "Implement login", "points": 100})
	require.Equal(t, http.StatusCreated, code)
	var created StoryResp
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, model.StoryBacklog, created.Status)
	assert.Equal(t, model.PriorityMedium, created.Priority)
	assert.Equal(t, 100, created.Points)
}

func TestStoryUpdateAssigneeMustBeMember(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	mate := seedUser(t, db, "mate", model.RoleMember)
	outsider := seedUser(t, db, "outsider", model.RoleMember)
	p := seedProject(t, db, "ASN", owner, mate)

	story := model.Story{
		Title: "Review PR", ProjectID: p.ID,
		Status: model.StoryBacklog, Priority: model.PriorityMedium,
		ReporterID: owner.ID,
	}
	require.NoError(t, db.Create(&story).Error)

	r := newTestRouter(owner)
	path := fmt.Sprintf("/v1/stories/%d", story.ID)

	code, resp := doReq(t, r, http.MethodPut, path,
		map[string]any{"assigneeId": outsider.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvariantViolation, resp.Code)

	code, _ = doReq(t, r, http.MethodPut, path,
		map[string]any{"assigneeId": mate.ID})
	require.Equal(t, http.StatusOK, code)
	var got model.Story
	require.NoError(t, db.First(&got, story.ID).Error)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, mate.ID, *got.AssigneeID)

	// Updating points past the cap is rejected on update too.
	code, resp = doReq(t, r, http.MethodPut, path,
		map[string]any{"points": 101})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvalidRequest, resp.Code)

	// An explicit null unassigns; an absent key leaves the assignee alone.
	code, _ = doReq(t, r, http.MethodPut, path, map[string]any{"title": "Review PR again"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, db.First(&got, story.ID).Error)
	assert.NotNil(t, got.AssigneeID)

	code, _ = doReq(t, r, http.MethodPut, path, map[string]any{"assigneeId": nil})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, db.First(&got, story.ID).Error)
	assert.Nil(t, got.AssigneeID)
}

func TestStoryDeleteRequiresOwnerOrReporter(t *testing.T) {
	db := setupDB(t)
	owner := seedUser(t, db, "owner", model.RoleMember)
	reporter := seedUser(t, db, "reporter", model.RoleMember)
	mate := seedUser(t, db, "mate", model.RoleMember)
	p := seedProject(t, db, "DSR", owner, reporter, mate)

	story := model.Story{
		Title: "Fix flaky test", ProjectID: p.ID,
		Status: model.StoryBacklog, Priority: model.PriorityHigh,
		ReporterID: reporter.ID,
	}
	require.NoError(t, db.Create(&story).Error)
	path := fmt.Sprintf("/v1/stories/%d", story.ID)

	code, resp := doReq(t, newTestRouter(mate), http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, resputil.UserNotAllowed, resp.Code)

	code, _ = doReq(t, newTestRouter(reporter), http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, code)
	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Story{}).Count(&count).Error)
	assert.Zero(t, count)
}
