package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
)

func AuthProtected() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		t := strings.Split(authHeader, " ")
		if len(t) < 2 || t[0] != "Bearer" {
			resputil.UnauthorizedError(c, "Invalid token", resputil.TokenInvalid)
			c.Abort()
			return
		}

		authToken := t[1]
		token, err := util.GetTokenMgr().CheckToken(authToken)
		if err != nil {
			resputil.UnauthorizedError(c, err.Error(), resputil.TokenExpired)
			c.Abort()
			return
		}

		// Mutating requests re-validate the claimed role against the database,
		// so a demoted or deleted user cannot keep writing with an old token.
		if c.Request.Method != "GET" {
			var user model.User
			if err := query.GetDB().WithContext(c).First(&user, token.UserID).Error; err != nil {
				resputil.UnauthorizedError(c, "User not found", resputil.TokenInvalid)
				c.Abort()
				return
			}
			if user.Role != token.Role {
				resputil.UnauthorizedError(c, "Role token not match", resputil.TokenInvalid)
				c.Abort()
				return
			}
		}

		util.SetJWTContext(c, token)
		c.Next()
	}
}

func AuthAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.GetToken(c)
		if token.Role != model.RoleAdmin {
			resputil.ForbiddenError(c, "Not Admin")
			c.Abort()
			return
		}
		c.Next()
	}
}
