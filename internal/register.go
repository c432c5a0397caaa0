package internal

import (
	"k8s.io/klog/v2"

	"github.com/sprint-lab/scrumdesk/internal/handler"
	_ "github.com/sprint-lab/scrumdesk/internal/handler/tool"
)

// registerManagers registers all the managers.
func registerManagers(config *handler.RegisterConfig) []handler.Manager {
	var managers []handler.Manager
	for _, register := range handler.Registers {
		manager := register(config)
		managers = append(managers, manager)
		klog.Infof("Registered manager: %s", manager.GetName())
	}
	return managers
}
