package hosttheory

// Startup is an optional hook whose ConfigureServices runs after all user
// service delegates and before the container is built. It mirrors the
// convention of keeping an application's registrations on one type instead
// of scattering closures over the builder.
type Startup interface {
	ConfigureServices(ctx *BuilderContext, services *ServiceCollection)
}

// StartupFunc adapts a function to the Startup interface.
type StartupFunc func(ctx *BuilderContext, services *ServiceCollection)

func (f StartupFunc) ConfigureServices(ctx *BuilderContext, services *ServiceCollection) {
	f(ctx, services)
}
