package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/payload"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
	"github.com/sprint-lab/scrumdesk/pkg/logutils"
	"github.com/sprint-lab/scrumdesk/pkg/mailer"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTeamMgr)
}

type TeamMgr struct {
	name   string
	mailer *mailer.Mailer
}

func NewTeamMgr(conf *RegisterConfig) Manager {
	return &TeamMgr{
		name:   "team",
		mailer: conf.Mailer,
	}
}

func (mgr *TeamMgr) GetName() string { return mgr.name }

func (mgr *TeamMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TeamMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.GET(":id", mgr.Get)
}

func (mgr *TeamMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("invite", mgr.Invite)
	g.PUT(":id", mgr.Update)
	g.DELETE(":id", mgr.Delete)
}

// List godoc
// @Summary List all workspace users
// @Tags Team
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]payload.UserProfile] "users"
// @Router /v1/team [get]
func (mgr *TeamMgr) List(c *gin.Context) {
	var users []model.User
	err := query.GetDB().WithContext(c).Order("created_at ASC").Find(&users).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(users, func(u model.User, _ int) payload.UserProfile {
		return payload.ProfileOf(&u)
	}))
}

// Get godoc
// @Summary Get one workspace user
// @Tags Team
// @Produce json
// @Security Bearer
// @Param id path int true "user id"
// @Success 200 {object} resputil.Response[payload.UserProfile] "user"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/team/{id} [get]
func (mgr *TeamMgr) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user model.User
	if err := query.GetDB().WithContext(c).First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	resputil.Success(c, payload.ProfileOf(&user))
}

type InviteReq struct {
	Email string     `json:"email" binding:"required,email"`
	Name  string     `json:"name" binding:"omitempty,min=2,max=50"`
	Role  model.Role `json:"role" binding:"omitempty,oneof=admin member"`
}

// Invite godoc
// @Summary Invite a user by email (admin only)
// @Description Creates an account with a random password and mails the
// @Description credentials to the invitee. The role defaults to member.
// @Tags Team
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body InviteReq true "invitee"
// @Success 201 {object} resputil.Response[payload.UserProfile] "created user"
// @Failure 400 {object} resputil.Response[any] "email already registered"
// @Router /v1/admin/team/invite [post]
func (mgr *TeamMgr) Invite(c *gin.Context) {
	var req InviteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)
	email := strings.ToLower(req.Email)

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		resputil.ConflictError(c, "User already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	name := req.Name
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	role := req.Role
	if role == "" {
		role = model.RoleMember
	}

	password, err := randomPassword()
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	user := model.User{
		Name:  name,
		Email: email,
		Role:  role,
	}
	if err = user.SetPassword(password); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err = db.Create(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if err = mgr.mailer.SendInvite(user.Email, password); err != nil {
		// The account exists either way; the admin can fall back to a reset.
		logutils.Log.Errorf("send invite mail to %s failed: %v", user.Email, err)
	}

	resputil.Created(c, payload.ProfileOf(&user))
}

type UpdateTeamUserReq struct {
	Name   *string     `json:"name" binding:"omitempty,min=2,max=50"`
	Role   *model.Role `json:"role" binding:"omitempty,oneof=admin member"`
	Skills []string    `json:"skills"`
}

// Update godoc
// @Summary Update a user's name, role or skills (admin only)
// @Tags Team
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "user id"
// @Param data body UpdateTeamUserReq true "fields to change"
// @Success 200 {object} resputil.Response[payload.UserProfile] "updated user"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/admin/team/{id} [put]
func (mgr *TeamMgr) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTeamUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}

	if err := db.Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, payload.ProfileOf(&user))
}

// Delete godoc
// @Summary Remove a user from the workspace (admin only)
// @Description Admins cannot delete their own account.
// @Tags Team
// @Produce json
// @Security Bearer
// @Param id path int true "user id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 400 {object} resputil.Response[any] "cannot delete yourself"
// @Router /v1/admin/team/{id} [delete]
func (mgr *TeamMgr) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if id == util.GetToken(c).UserID {
		resputil.BadRequestError(c, "Cannot delete your own account")
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.First(&user, id).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	if err := db.Unscoped().Delete(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "User deleted")
}

// randomPassword returns a throwaway credential for invited accounts. The
// invitee is expected to change it after first login.
func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
