package helper

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sprint-lab/scrumdesk/dao"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/handler"
	"github.com/sprint-lab/scrumdesk/pkg/config"
	"github.com/sprint-lab/scrumdesk/pkg/mailer"
	"github.com/sprint-lab/scrumdesk/pkg/relay"
)

// ConfigInitializer wraps configuration loading for the server entrypoint.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment loads .debug.env when running in gin debug mode, so a
// local server can pick its port without touching the deployed config.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	err := godotenv.Load(".debug.env")
	if err != nil {
		return err
	}

	be := os.Getenv("SCRUMDESK_BE_PORT")
	if be == "" {
		panic("SCRUMDESK_BE_PORT is not set")
	}

	ci.backendConfig.ServerAddr = ":" + be

	return nil
}

// InitializeRegisterConfig connects the database, applies pending migrations
// and builds the shared dependencies handed to every handler manager.
func (ci *ConfigInitializer) InitializeRegisterConfig() (*handler.RegisterConfig, error) {
	db := query.GetDB()
	if err := dao.Migrate(db); err != nil {
		return nil, err
	}

	return &handler.RegisterConfig{
		Mailer: mailer.New(),
		Hub:    relay.NewHub(),
	}, nil
}
