package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/payload"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

// UserMgr covers self-service operations on the caller's own account. Admin
// operations on other accounts live in TeamMgr.
type UserMgr struct {
	name string
}

func NewUserMgr(_ *RegisterConfig) Manager {
	return &UserMgr{name: "users"}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.PUT("profile", mgr.UpdateProfile)
	g.PUT("change-password", mgr.ChangePassword)
}

func (mgr *UserMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type UpdateProfileReq struct {
	Name   *string  `json:"name" binding:"omitempty,min=2,max=50"`
	Bio    *string  `json:"bio" binding:"omitempty,max=500"`
	Avatar *string  `json:"avatar"`
	Skills []string `json:"skills"`
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Partial update of name, bio, avatar and skills. Email and role
// @Description cannot be changed here.
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body UpdateProfileReq true "fields to change"
// @Success 200 {object} resputil.Response[payload.UserProfile] "updated profile"
// @Router /v1/users/profile [put]
func (mgr *UserMgr) UpdateProfile(c *gin.Context) {
	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.First(&user, util.GetToken(c).UserID).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
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

type ChangePasswordReq struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Description Requires the current password to match.
// @Tags User
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body ChangePasswordReq true "current and new password"
// @Success 200 {object} resputil.Response[string] "password updated"
// @Failure 401 {object} resputil.Response[any] "current password is wrong"
// @Router /v1/users/change-password [put]
func (mgr *UserMgr) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.First(&user, util.GetToken(c).UserID).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	if !user.ComparePassword(req.CurrentPassword) {
		resputil.UnauthorizedError(c, "Current password is incorrect", resputil.InvalidCredentials)
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := db.Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Password updated successfully")
}
