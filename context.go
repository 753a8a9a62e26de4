package hosttheory

import "github.com/theory-cloud/hosttheory/config"

// BuilderContext pairs the environment with the current configuration
// snapshot. It is handed to every app-configuration, service, and container
// delegate. Configuration starts as the host configuration and is replaced
// exactly once during Build with the merged app configuration.
type BuilderContext struct {
	Environment   *Environment
	Configuration *config.Config
}
