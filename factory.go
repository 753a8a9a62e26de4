package hosttheory

// ContainerBuilder is the intermediate representation a provider factory
// builds from a service collection. Container-customization delegates run
// against it before the provider is finalized.
type ContainerBuilder interface {
	Services() *ServiceCollection
}

// ServiceProviderFactory decouples the host builder from a concrete
// dependency-injection container. The builder calls CreateBuilder with the
// populated service collection, applies container delegates, then calls
// CreateProvider to finalize.
type ServiceProviderFactory interface {
	CreateBuilder(services *ServiceCollection) ContainerBuilder
	CreateProvider(builder ContainerBuilder) (*ServiceProvider, error)
}

// DefaultServiceProviderFactory returns the collection-based factory used
// when no alternate container is configured.
func DefaultServiceProviderFactory() ServiceProviderFactory {
	return defaultFactory{}
}

type defaultFactory struct{}

type collectionContainerBuilder struct {
	services *ServiceCollection
}

func (b *collectionContainerBuilder) Services() *ServiceCollection {
	return b.services
}

func (defaultFactory) CreateBuilder(services *ServiceCollection) ContainerBuilder {
	return &collectionContainerBuilder{services: services}
}

func (defaultFactory) CreateProvider(builder ContainerBuilder) (*ServiceProvider, error) {
	return newServiceProvider(builder.Services()), nil
}
