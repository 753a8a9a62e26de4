package hosttheory

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/theory-cloud/hosttheory/config"
	"github.com/theory-cloud/hosttheory/pkg/observability"
)

func testBuilder() *HostBuilder {
	b := New().UseFs(afero.NewMemMapFs()).UsePlatform(PlatformLinux)
	b.baseDir = "/base"
	return b
}

func TestBuild_SecondCallFails(t *testing.T) {
	b := testBuilder()

	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
}

func TestConfigure_NilDelegatePanics(t *testing.T) {
	tests := []struct {
		name     string
		register func(*HostBuilder)
	}{
		{"host configuration", func(b *HostBuilder) { b.ConfigureHostConfiguration(nil) }},
		{"app configuration", func(b *HostBuilder) { b.ConfigureAppConfiguration(nil) }},
		{"services", func(b *HostBuilder) { b.ConfigureServices(nil) }},
		{"container", func(b *HostBuilder) { b.ConfigureContainer(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				recovered := recover()
				require.NotNil(t, recovered)
				var nilArg *NilArgumentError
				require.ErrorAs(t, recovered.(error), &nilArg)
			}()
			tt.register(testBuilder())
		})
	}
}

func TestUse_NilArgumentPanics(t *testing.T) {
	tests := []struct {
		name     string
		register func(*HostBuilder)
	}{
		{"factory", func(b *HostBuilder) { b.UseServiceProviderFactory(nil) }},
		{"startup", func(b *HostBuilder) { b.UseStartup(nil) }},
		{"logger", func(b *HostBuilder) { b.UseLogger(nil) }},
		{"clock", func(b *HostBuilder) { b.UseClock(nil) }},
		{"fs", func(b *HostBuilder) { b.UseFs(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Panics(t, func() { tt.register(testBuilder()) })
		})
	}
}

func TestBuild_DelegatesRunOnceInRegistrationOrder(t *testing.T) {
	var calls []string
	b := testBuilder().
		ConfigureServices(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "services-1")
		}).
		ConfigureHostConfiguration(func(_ *config.Builder) {
			calls = append(calls, "host-config-1")
		}).
		ConfigureContainer(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "container-1")
		}).
		ConfigureAppConfiguration(func(_ *BuilderContext, _ *config.Builder) {
			calls = append(calls, "app-config-1")
		}).
		ConfigureHostConfiguration(func(_ *config.Builder) {
			calls = append(calls, "host-config-2")
		}).
		ConfigureServices(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "services-2")
		})

	_, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, []string{
		"host-config-1",
		"host-config-2",
		"app-config-1",
		"services-1",
		"services-2",
		"container-1",
	}, calls)
}

func TestBuild_ContentRootUnsetUsesBaseDirectory(t *testing.T) {
	host, err := testBuilder().Build()
	require.NoError(t, err)
	require.Equal(t, "/base", host.Environment().ContentRoot())
}

func TestBuild_ContentRootAbsoluteUnchanged(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "srv", "app")
	host, err := testBuilder().UseContentRoot(abs).Build()
	require.NoError(t, err)
	require.Equal(t, abs, host.Environment().ContentRoot())
}

func TestBuild_ContentRootRelativeJoinsBaseDirectory(t *testing.T) {
	host, err := testBuilder().UseContentRoot("content").Build()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/base", "content"), host.Environment().ContentRoot())
}

func TestBuild_RegistersDefaultServices(t *testing.T) {
	host, err := testBuilder().Build()
	require.NoError(t, err)

	p := host.Services()
	require.NotNil(t, MustResolve[*Environment](p))
	require.NotNil(t, MustResolve[*BuilderContext](p))
	require.NotNil(t, MustResolve[*config.Config](p))
	require.NotNil(t, MustResolve[*ApplicationLifetime](p))
	require.NotNil(t, MustResolve[Clock](p))
	require.NotNil(t, MustResolve[observability.StructuredLogger](p))

	same, err := Resolve[*Host](p)
	require.NoError(t, err)
	require.Same(t, host, same)
}

func TestBuild_EnvironmentFromHostConfiguration(t *testing.T) {
	b := testBuilder().
		ConfigureHostConfiguration(func(cb *config.Builder) {
			cb.Add(config.Map(map[string]any{
				ConfigKeyApplicationName: "ordersvc",
				ConfigKeyEnvironment:     EnvStaging,
				ConfigKeyContentRoot:     "svc",
			}))
		})

	host, err := b.Build()
	require.NoError(t, err)

	env := host.Environment()
	require.Equal(t, "ordersvc", env.ApplicationName())
	require.Equal(t, EnvStaging, env.EnvironmentName())
	require.True(t, env.IsStaging())
	require.Equal(t, filepath.Join("/base", "svc"), env.ContentRoot())
}

func TestBuild_ExplicitSettingsBeatConfiguration(t *testing.T) {
	b := testBuilder().
		UseApplicationName("explicit").
		UseEnvironment(EnvDevelopment).
		ConfigureHostConfiguration(func(cb *config.Builder) {
			cb.Add(config.Map(map[string]any{
				ConfigKeyApplicationName: "from-config",
				ConfigKeyEnvironment:     EnvProduction,
			}))
		})

	host, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, "explicit", host.Environment().ApplicationName())
	require.True(t, host.Environment().IsDevelopment())
}

func TestBuild_AppConfigurationSeededWithHostConfiguration(t *testing.T) {
	b := testBuilder().
		ConfigureHostConfiguration(func(cb *config.Builder) {
			cb.Add(config.Map(map[string]any{"retained": "host", "overridden": "host"}))
		}).
		ConfigureAppConfiguration(func(_ *BuilderContext, cb *config.Builder) {
			cb.Add(config.Map(map[string]any{"overridden": "app", "added": "app"}))
		})

	host, err := b.Build()
	require.NoError(t, err)

	cfg := MustResolve[*config.Config](host.Services())
	require.Equal(t, "host", cfg.GetString("retained"))
	require.Equal(t, "app", cfg.GetString("overridden"))
	require.Equal(t, "app", cfg.GetString("added"))
}

func TestBuild_ContextConfigurationReplacedOnce(t *testing.T) {
	var hostSnapshot, serviceSnapshot *config.Config
	b := testBuilder().
		ConfigureHostConfiguration(func(cb *config.Builder) {
			cb.Add(config.Map(map[string]any{"stage": "host"}))
		}).
		ConfigureAppConfiguration(func(ctx *BuilderContext, cb *config.Builder) {
			hostSnapshot = ctx.Configuration
			cb.Add(config.Map(map[string]any{"stage": "app"}))
		}).
		ConfigureServices(func(ctx *BuilderContext, _ *ServiceCollection) {
			serviceSnapshot = ctx.Configuration
		})

	host, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, "host", hostSnapshot.GetString("stage"))
	require.Equal(t, "app", serviceSnapshot.GetString("stage"))
	require.Same(t, serviceSnapshot, MustResolve[*BuilderContext](host.Services()).Configuration)
}

func TestBuild_StartupHookRunsAfterServiceDelegates(t *testing.T) {
	var calls []string
	b := testBuilder().
		UseStartup(StartupFunc(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "startup")
		})).
		ConfigureServices(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "services")
		}).
		ConfigureContainer(func(_ *BuilderContext, _ *ServiceCollection) {
			calls = append(calls, "container")
		})

	_, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []string{"services", "startup", "container"}, calls)
}

func TestBuild_UserRegistrationOverridesDefault(t *testing.T) {
	replacement := observability.NewTestLogger()
	b := testBuilder().
		ConfigureServices(func(_ *BuilderContext, s *ServiceCollection) {
			AddSingletonInstance[observability.StructuredLogger](s, replacement)
		})

	host, err := b.Build()
	require.NoError(t, err)

	resolved := MustResolve[observability.StructuredLogger](host.Services())
	require.Same(t, replacement, resolved)
}

type nilProviderFactory struct{}

func (nilProviderFactory) CreateBuilder(services *ServiceCollection) ContainerBuilder {
	return &collectionContainerBuilder{services: services}
}

func (nilProviderFactory) CreateProvider(ContainerBuilder) (*ServiceProvider, error) {
	return nil, nil
}

func TestBuild_NilProviderFromFactoryFails(t *testing.T) {
	_, err := testBuilder().UseServiceProviderFactory(nilProviderFactory{}).Build()

	var invalidOp *InvalidOperationError
	require.ErrorAs(t, err, &invalidOp)
	require.Contains(t, err.Error(), "nilProviderFactory")
}

type recordingFactory struct {
	defaultFactory
	builderCalls  int
	providerCalls int
}

func (f *recordingFactory) CreateBuilder(services *ServiceCollection) ContainerBuilder {
	f.builderCalls++
	return f.defaultFactory.CreateBuilder(services)
}

func (f *recordingFactory) CreateProvider(b ContainerBuilder) (*ServiceProvider, error) {
	f.providerCalls++
	return f.defaultFactory.CreateProvider(b)
}

func TestBuild_AlternateFactoryIsUsed(t *testing.T) {
	factory := &recordingFactory{}
	host, err := testBuilder().UseServiceProviderFactory(factory).Build()
	require.NoError(t, err)
	require.NotNil(t, host)
	require.Equal(t, 1, factory.builderCalls)
	require.Equal(t, 1, factory.providerCalls)
}

func TestBuild_HostIDAssigned(t *testing.T) {
	host, err := testBuilder().Build()
	require.NoError(t, err)
	require.Len(t, host.ID(), 26)
}
