package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sprint-lab/scrumdesk/pkg/mailer"
	"github.com/sprint-lab/scrumdesk/pkg/relay"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// RegisterConfig carries the shared dependencies injected into every manager.
type RegisterConfig struct {
	Mailer *mailer.Mailer
	Hub    *relay.Hub
}

type Register func(conf *RegisterConfig) Manager

// Registers is appended to by each manager's init; the server iterates it to
// build the route table.
var Registers []Register
