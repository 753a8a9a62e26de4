// Package hosttheory composes long-lived application hosts out of layered
// configuration, a dependency-injection service provider, and lifetime
// wiring. Callers register ordered delegates on a HostBuilder, then call
// Build exactly once to obtain the Host.
package hosttheory

import (
	"github.com/spf13/afero"

	"github.com/theory-cloud/hosttheory/config"
	"github.com/theory-cloud/hosttheory/pkg/observability"
)

// HostBuilder accumulates configuration, service, and container delegates
// and executes them in a fixed order during Build. It is not safe for
// concurrent use; Build may run at most once per builder.
type HostBuilder struct {
	hostConfigDelegates []func(*config.Builder)
	appConfigDelegates  []func(*BuilderContext, *config.Builder)
	serviceDelegates    []func(*BuilderContext, *ServiceCollection)
	containerDelegates  []func(*BuilderContext, *ServiceCollection)

	factory ServiceProviderFactory
	startup Startup
	logger  observability.StructuredLogger
	clock   Clock

	applicationName string
	environmentName string
	contentRoot     string
	platform        Platform
	fs              afero.Fs

	// baseDir overrides the process base directory for content-root
	// resolution. Tests set it; production builds leave it empty.
	baseDir string

	built bool
}

// New returns an empty builder with the default collection-based provider
// factory.
func New() *HostBuilder {
	return &HostBuilder{
		factory: DefaultServiceProviderFactory(),
		clock:   RealClock{},
		fs:      afero.NewOsFs(),
	}
}

// ConfigureHostConfiguration registers a delegate over the host
// configuration builder. Host configuration is built first and feeds the
// environment and the app configuration seed. A nil delegate panics with
// *NilArgumentError.
func (b *HostBuilder) ConfigureHostConfiguration(delegate func(*config.Builder)) *HostBuilder {
	if delegate == nil {
		panic(&NilArgumentError{Name: "delegate"})
	}
	b.hostConfigDelegates = append(b.hostConfigDelegates, delegate)
	return b
}

// ConfigureAppConfiguration registers a context-aware delegate over the app
// configuration builder, which is seeded with the host configuration.
func (b *HostBuilder) ConfigureAppConfiguration(delegate func(*BuilderContext, *config.Builder)) *HostBuilder {
	if delegate == nil {
		panic(&NilArgumentError{Name: "delegate"})
	}
	b.appConfigDelegates = append(b.appConfigDelegates, delegate)
	return b
}

// ConfigureServices registers a delegate over the service collection. User
// delegates run after the defaults, so a later registration wins.
func (b *HostBuilder) ConfigureServices(delegate func(*BuilderContext, *ServiceCollection)) *HostBuilder {
	if delegate == nil {
		panic(&NilArgumentError{Name: "delegate"})
	}
	b.serviceDelegates = append(b.serviceDelegates, delegate)
	return b
}

// ConfigureContainer registers a delegate over the container builder's
// collection. Container delegates run last, after user service delegates and
// the startup hook, through the provider factory adapter.
func (b *HostBuilder) ConfigureContainer(delegate func(*BuilderContext, *ServiceCollection)) *HostBuilder {
	if delegate == nil {
		panic(&NilArgumentError{Name: "delegate"})
	}
	b.containerDelegates = append(b.containerDelegates, delegate)
	return b
}

// UseServiceProviderFactory substitutes an alternate container
// implementation.
func (b *HostBuilder) UseServiceProviderFactory(factory ServiceProviderFactory) *HostBuilder {
	if factory == nil {
		panic(&NilArgumentError{Name: "factory"})
	}
	b.factory = factory
	return b
}

// UseStartup registers a startup hook. Its ConfigureServices runs once,
// after all user service delegates.
func (b *HostBuilder) UseStartup(startup Startup) *HostBuilder {
	if startup == nil {
		panic(&NilArgumentError{Name: "startup"})
	}
	b.startup = startup
	return b
}

// UseApplicationName sets the application name, overriding the
// "application_name" host configuration key.
func (b *HostBuilder) UseApplicationName(name string) *HostBuilder {
	b.applicationName = name
	return b
}

// UseEnvironment sets the environment name, overriding the "environment"
// host configuration key. Unset, the environment defaults to production.
func (b *HostBuilder) UseEnvironment(name string) *HostBuilder {
	b.environmentName = name
	return b
}

// UseContentRoot sets the content root. Relative paths resolve against the
// process base directory during Build.
func (b *HostBuilder) UseContentRoot(path string) *HostBuilder {
	b.contentRoot = path
	return b
}

// UsePlatform overrides platform detection.
func (b *HostBuilder) UsePlatform(platform Platform) *HostBuilder {
	b.platform = platform
	return b
}

// UseLogger sets the logger registered as the default StructuredLogger.
// Unset, the host logs to a no-op logger.
func (b *HostBuilder) UseLogger(logger observability.StructuredLogger) *HostBuilder {
	if logger == nil {
		panic(&NilArgumentError{Name: "logger"})
	}
	b.logger = logger
	return b
}

// UseClock overrides the clock registered as the default Clock.
func (b *HostBuilder) UseClock(clock Clock) *HostBuilder {
	if clock == nil {
		panic(&NilArgumentError{Name: "clock"})
	}
	b.clock = clock
	return b
}

// UseFs routes all file access (config sources, the environment's file
// provider) through fs. Intended for tests with in-memory filesystems.
func (b *HostBuilder) UseFs(fs afero.Fs) *HostBuilder {
	if fs == nil {
		panic(&NilArgumentError{Name: "fs"})
	}
	b.fs = fs
	return b
}
