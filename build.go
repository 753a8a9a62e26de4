package hosttheory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/theory-cloud/hosttheory/config"
	"github.com/theory-cloud/hosttheory/pkg/observability"
)

// Host configuration keys the builder reads when the corresponding Use*
// method was not called.
const (
	ConfigKeyApplicationName = "application_name"
	ConfigKeyEnvironment     = "environment"
	ConfigKeyContentRoot     = "content_root"
)

// Build executes the registered delegates in a fixed order and returns the
// composed host: host configuration, environment, builder context, app
// configuration, service provider, host resolution. It may run at most once
// per builder; a second call fails with *InvalidOperationError.
func (b *HostBuilder) Build() (*Host, error) {
	if b.built {
		return nil, &InvalidOperationError{Op: "build", Reason: "build can only be called once per builder"}
	}
	b.built = true

	hostCfg, err := b.buildHostConfiguration()
	if err != nil {
		return nil, fmt.Errorf("building host configuration: %w", err)
	}

	env := b.buildEnvironment(hostCfg)
	ctx := &BuilderContext{Environment: env, Configuration: hostCfg}

	appCfg, err := b.buildAppConfiguration(ctx, hostCfg)
	if err != nil {
		return nil, fmt.Errorf("building app configuration: %w", err)
	}
	ctx.Configuration = appCfg

	provider, err := b.buildServiceProvider(ctx)
	if err != nil {
		return nil, err
	}

	return Resolve[*Host](provider)
}

func (b *HostBuilder) buildHostConfiguration() (*config.Config, error) {
	builder := config.NewBuilder().WithFs(b.fs)
	for _, delegate := range b.hostConfigDelegates {
		delegate(builder)
	}
	return builder.Build()
}

func (b *HostBuilder) buildEnvironment(hostCfg *config.Config) *Environment {
	appName := b.applicationName
	if appName == "" {
		appName = hostCfg.GetString(ConfigKeyApplicationName)
	}
	if appName == "" {
		appName = filepath.Base(os.Args[0])
	}

	envName := b.environmentName
	if envName == "" {
		envName = hostCfg.GetString(ConfigKeyEnvironment)
	}

	contentRoot := b.contentRoot
	if contentRoot == "" {
		contentRoot = hostCfg.GetString(ConfigKeyContentRoot)
	}
	baseDir := b.baseDir
	if baseDir == "" {
		baseDir = baseDirectory()
	}
	resolved := resolveContentRoot(contentRoot, baseDir)

	files := afero.NewBasePathFs(b.fs, resolved)
	return newEnvironment(appName, envName, resolved, b.platform, files)
}

func (b *HostBuilder) buildAppConfiguration(ctx *BuilderContext, hostCfg *config.Config) (*config.Config, error) {
	builder := config.NewBuilder().WithFs(b.fs).Add(config.FromConfig(hostCfg))
	for _, delegate := range b.appConfigDelegates {
		delegate(ctx, builder)
	}
	return builder.Build()
}

func (b *HostBuilder) buildServiceProvider(ctx *BuilderContext) (*ServiceProvider, error) {
	services := NewServiceCollection()
	b.registerDefaults(ctx, services)

	for _, delegate := range b.serviceDelegates {
		delegate(ctx, services)
	}
	if b.startup != nil {
		b.startup.ConfigureServices(ctx, services)
	}

	containerBuilder := b.factory.CreateBuilder(services)
	if containerBuilder == nil {
		return nil, &InvalidOperationError{
			Op:     "build",
			Reason: fmt.Sprintf("service provider factory %T returned a nil container builder", b.factory),
		}
	}
	for _, delegate := range b.containerDelegates {
		delegate(ctx, containerBuilder.Services())
	}

	provider, err := b.factory.CreateProvider(containerBuilder)
	if err != nil {
		return nil, fmt.Errorf("finalizing service provider: %w", err)
	}
	if provider == nil {
		return nil, &InvalidOperationError{
			Op:     "build",
			Reason: fmt.Sprintf("service provider factory %T returned a nil provider", b.factory),
		}
	}
	return provider, nil
}

func (b *HostBuilder) registerDefaults(ctx *BuilderContext, services *ServiceCollection) {
	AddSingletonInstance(services, ctx.Environment)
	AddSingletonInstance(services, ctx)
	AddSingletonInstance(services, ctx.Configuration)
	AddSingletonInstance(services, NewApplicationLifetime())
	AddSingletonInstance[Clock](services, b.clock)

	logger := b.logger
	if logger == nil {
		logger = observability.NewNoOpLogger()
	}
	AddSingletonInstance(services, logger)

	AddSingleton(services, newHost)
}
