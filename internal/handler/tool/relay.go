package tool

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sprint-lab/scrumdesk/internal/handler"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
	"github.com/sprint-lab/scrumdesk/pkg/config"
	"github.com/sprint-lab/scrumdesk/pkg/relay"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	handler.Registers = append(handler.Registers, NewRelayMgr)
}

type RelayMgr struct {
	name string
	hub  *relay.Hub
}

func NewRelayMgr(conf *handler.RegisterConfig) handler.Manager {
	return &RelayMgr{
		name: "ws",
		hub:  conf.Hub,
	}
}

func (mgr *RelayMgr) GetName() string { return mgr.name }

// The upgrade endpoint sits in the public group because browser websocket
// clients cannot set an Authorization header; the access token is passed as a
// query parameter and checked before upgrading.
func (mgr *RelayMgr) RegisterPublic(g *gin.RouterGroup) {
	g.GET("", mgr.Connect)
}

func (mgr *RelayMgr) RegisterProtected(_ *gin.RouterGroup) {}
func (mgr *RelayMgr) RegisterAdmin(_ *gin.RouterGroup)     {}

// Connect godoc
// @Summary Upgrade to a websocket for project room events
// @Description Clients join and leave project rooms and exchange taskUpdated
// @Description events; the server relays them to the other room members.
// @Tags Relay
// @Param token query string true "access token"
// @Success 101 {string} string "switching protocols"
// @Failure 401 {object} resputil.Response[any] "token invalid"
// @Router /v1/ws [get]
func (mgr *RelayMgr) Connect(c *gin.Context) {
	token, err := util.GetTokenMgr().CheckToken(c.Query("token"))
	if err != nil {
		resputil.UnauthorizedError(c, err.Error(), resputil.TokenInvalid)
		return
	}

	upgrade := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	// Allow all origins in debug mode
	if config.IsDebugMode() {
		upgrade.CheckOrigin = func(_ *http.Request) bool {
			return true
		}
	}
	ws, err := upgrade.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	client := relay.NewClient(mgr.hub, ws, token.UserID)
	client.Serve()
}
