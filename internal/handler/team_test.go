package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/internal/payload"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
)

func TestInviteRole(t *testing.T) {
	db := setupDB(t)
	admin := seedUser(t, db, "boss", model.RoleAdmin)
	r := newTestRouter(admin)

	// Role defaults to member when omitted.
	code, resp := doReq(t, r, http.MethodPost, "/v1/admin/team/invite",
		map[string]any{"email": "newbie@example.com"})
	require.Equal(t, http.StatusCreated, code)
	var created payload.UserProfile
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, model.RoleMember, created.Role)
	assert.Equal(t, "newbie", created.Name, "name falls back to the email prefix")

	// An explicit role is honored.
	code, resp = doReq(t, r, http.MethodPost, "/v1/admin/team/invite",
		map[string]any{"email": "deputy@example.com", "role": "admin"})
	require.Equal(t, http.StatusCreated, code)
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, model.RoleAdmin, created.Role)

	var stored model.User
	require.NoError(t, db.Where("email = ?", "deputy@example.com").First(&stored).Error)
	assert.Equal(t, model.RoleAdmin, stored.Role)
	assert.NotEmpty(t, stored.Password, "invited accounts get a random credential")

	// Unknown roles are rejected by validation.
	code, resp = doReq(t, r, http.MethodPost, "/v1/admin/team/invite",
		map[string]any{"email": "chief@example.com", "role": "owner"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.InvalidRequest, resp.Code)

	// Duplicate emails are rejected.
	code, resp = doReq(t, r, http.MethodPost, "/v1/admin/team/invite",
		map[string]any{"email": "newbie@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, resputil.Conflict, resp.Code)
}
