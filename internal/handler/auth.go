package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
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
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name   string
	mailer *mailer.Mailer
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:   "auth",
		mailer: conf.Mailer,
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("register", mgr.Register)
	g.POST("login", mgr.Login)
	g.POST("forgot-password", mgr.ForgotPassword)
	g.POST("reset-password", mgr.ResetPassword)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("me", mgr.Me)
}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	RegisterReq struct {
		Name     string `json:"name" binding:"required,min=2,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	LoginReq struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	TokenResp struct {
		AccessToken  string              `json:"accessToken"`
		RefreshToken string              `json:"refreshToken"`
		User         payload.UserProfile `json:"user"`
	}
)

// Register godoc
// @Summary Register a new user
// @Description The first registered user becomes the workspace admin.
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body RegisterReq true "registration info"
// @Success 201 {object} resputil.Response[TokenResp] "tokens and profile"
// @Failure 400 {object} resputil.Response[any] "email already registered"
// @Router /v1/auth/register [post]
func (mgr *AuthMgr) Register(c *gin.Context) {
	var req RegisterReq
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

	// The first user gets the admin role, everyone after that is invited or
	// registers as a plain member.
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	role := model.RoleMember
	if count == 0 {
		role = model.RoleAdmin
	}

	user := model.User{
		Name:  req.Name,
		Email: email,
		Role:  role,
	}
	if err := user.SetPassword(req.Password); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := db.Create(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	mgr.respondWithTokens(c, &user, true)
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body LoginReq true "credentials"
// @Success 200 {object} resputil.Response[TokenResp] "tokens and profile"
// @Failure 401 {object} resputil.Response[any] "invalid email or password"
// @Router /v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err != nil || !user.ComparePassword(req.Password) {
		// Same reply for unknown email and wrong password.
		resputil.UnauthorizedError(c, "Invalid email or password", resputil.InvalidCredentials)
		return
	}

	mgr.respondWithTokens(c, &user, false)
}

func (mgr *AuthMgr) respondWithTokens(c *gin.Context, user *model.User, created bool) {
	access, refresh, err := util.GetTokenMgr().CreateTokens(&util.JWTMessage{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resp := TokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         payload.ProfileOf(user),
	}
	if created {
		resputil.Created(c, resp)
		return
	}
	resputil.Success(c, resp)
}

// Me godoc
// @Summary Get the current user's profile
// @Tags Auth
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[payload.UserProfile] "profile"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/auth/me [get]
func (mgr *AuthMgr) Me(c *gin.Context) {
	token := util.GetToken(c)

	var user model.User
	if err := query.GetDB().WithContext(c).First(&user, token.UserID).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	resputil.Success(c, payload.ProfileOf(&user))
}

type ForgotPasswordReq struct {
	Email string `json:"email" binding:"required,email"`
}

const resetTokenTTL = time.Hour

// ForgotPassword godoc
// @Summary Request a password reset token by mail
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body ForgotPasswordReq true "account email"
// @Success 200 {object} resputil.Response[string] "reset mail sent"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/auth/forgot-password [post]
func (mgr *AuthMgr) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	plain, hashed, err := newResetToken()
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	expire := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = &hashed
	user.ResetPasswordExpire = &expire
	if err := db.Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if err := mgr.mailer.SendPasswordReset(user.Email, plain); err != nil {
		logutils.Log.Errorf("send reset mail to %s failed: %v", user.Email, err)
		resputil.Error(c, "Failed to send reset mail", resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Password reset link sent to your email")
}

type ResetPasswordReq struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword godoc
// @Summary Set a new password using a mailed reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param data body ResetPasswordReq true "token and new password"
// @Success 200 {object} resputil.Response[string] "password updated"
// @Failure 400 {object} resputil.Response[any] "token invalid or expired"
// @Router /v1/auth/reset-password [post]
func (mgr *AuthMgr) ResetPassword(c *gin.Context) {
	var req ResetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	db := query.GetDB().WithContext(c)

	hashed := hashResetToken(req.Token)
	var user model.User
	err := db.Where("reset_password_token = ? AND reset_password_expire > ?", hashed, time.Now()).
		First(&user).Error
	if err != nil {
		resputil.BadRequestError(c, "Reset token is invalid or has expired")
		return
	}

	if err := user.SetPassword(req.Password); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	user.ResetPasswordToken = nil
	user.ResetPasswordExpire = nil
	if err := db.Save(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Password updated successfully")
}

// newResetToken returns the plain token for the mail and its sha256 digest
// for storage.
func newResetToken() (plain, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, hashResetToken(plain), nil
}

func hashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
