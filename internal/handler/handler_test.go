package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
	"github.com/sprint-lab/scrumdesk/pkg/mailer"
	"github.com/sprint-lab/scrumdesk/pkg/relay"
)

// setupDB points the handlers at a fresh in-memory database, named after the
// test so parallel packages never share state.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Project{}, &model.Sprint{}, &model.Story{},
	))

	query.SetDB(db)
	return db
}

// authAs replaces the JWT middleware: requests run with the given user's
// identity already bound to the context.
func authAs(u *model.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		util.SetJWTContext(c, util.JWTMessage{
			UserID: u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
		})
	}
}

func newTestRouter(u *model.User) *gin.Engine {
	r := gin.New()
	conf := &RegisterConfig{Mailer: &mailer.Mailer{}, Hub: relay.NewHub()}

	protected := r.Group("/v1", authAs(u))
	admin := r.Group("/v1/admin", authAs(u))
	for _, register := range Registers {
		mgr := register(conf)
		mgr.RegisterProtected(protected.Group(mgr.GetName()))
		mgr.RegisterAdmin(admin.Group(mgr.GetName()))
	}
	return r
}

func doReq(t *testing.T, r http.Handler, method, path string, body any) (int, resputil.Response[json.RawMessage]) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp resputil.Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	require.NoError(t, u.SetPassword("secret123"))
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProject(t *testing.T, db *gorm.DB, key string, owner *model.User, members ...*model.User) *model.Project {
	t.Helper()
	p := &model.Project{
		Name:    key + " project",
		Key:     key,
		Status:  model.ProjectActive,
		OwnerID: owner.ID,
	}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Model(p).Association("Members").Append(owner))
	for _, m := range members {
		require.NoError(t, db.Model(p).Association("Members").Append(m))
	}
	return p
}
