package main

import (
	"k8s.io/klog/v2"

	"github.com/sprint-lab/scrumdesk/cmd/scrumdesk/helper"
)

// @title						ScrumDesk API
// @version						1.0.0
// @description					This is the API server for ScrumDesk, a Scrum project management backend.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Log in via /v1/auth/login and pass 'Bearer ${TOKEN}' to access protected endpoints
func main() {
	// Initialize configuration
	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	// Load debug environment if needed
	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	// Connect storage and build shared handler dependencies
	registerConfig, err := configInit.InitializeRegisterConfig()
	if err != nil {
		klog.Fatalf("Failed to register config: %s\n", err)
	}

	// Start HTTP server
	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartServer(registerConfig)
}
