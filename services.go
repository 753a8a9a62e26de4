package hosttheory

import "reflect"

// ServiceLifetime controls how a registration is cached by the provider.
type ServiceLifetime int

const (
	// LifetimeSingleton shares one instance across the whole provider.
	LifetimeSingleton ServiceLifetime = iota
	// LifetimeScoped shares one instance per scope.
	LifetimeScoped
	// LifetimeTransient constructs a new instance on every resolution.
	LifetimeTransient
)

func (l ServiceLifetime) String() string {
	switch l {
	case LifetimeSingleton:
		return "singleton"
	case LifetimeScoped:
		return "scoped"
	case LifetimeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

type serviceDescriptor struct {
	serviceType reflect.Type
	lifetime    ServiceLifetime
	factory     func(*ServiceProvider) (any, error)
	instance    any
	hasInstance bool
}

// ServiceCollection is an ordered list of service registrations. The same
// type may be registered more than once; Resolve returns the last
// registration and ResolveAll returns all of them in order.
type ServiceCollection struct {
	descriptors []serviceDescriptor
}

func NewServiceCollection() *ServiceCollection {
	return &ServiceCollection{}
}

// Count returns the number of registrations.
func (s *ServiceCollection) Count() int {
	return len(s.descriptors)
}

func (s *ServiceCollection) add(d serviceDescriptor) {
	s.descriptors = append(s.descriptors, d)
}

func serviceType[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func addFactory[T any](s *ServiceCollection, lifetime ServiceLifetime, factory func(*ServiceProvider) (T, error)) {
	if factory == nil {
		panic(&NilArgumentError{Name: "factory"})
	}
	s.add(serviceDescriptor{
		serviceType: serviceType[T](),
		lifetime:    lifetime,
		factory: func(p *ServiceProvider) (any, error) {
			return factory(p)
		},
	})
}

// AddSingleton registers a factory whose result is shared across the
// provider. A nil factory panics with *NilArgumentError.
func AddSingleton[T any](s *ServiceCollection, factory func(*ServiceProvider) (T, error)) {
	addFactory(s, LifetimeSingleton, factory)
}

// AddSingletonInstance registers an already-constructed value. A nil value
// panics with *NilArgumentError.
func AddSingletonInstance[T any](s *ServiceCollection, value T) {
	if isNilValue(reflect.ValueOf(value)) {
		panic(&NilArgumentError{Name: "value"})
	}
	s.add(serviceDescriptor{
		serviceType: serviceType[T](),
		lifetime:    LifetimeSingleton,
		instance:    value,
		hasInstance: true,
	})
}

// AddScoped registers a factory whose result is shared within one scope.
func AddScoped[T any](s *ServiceCollection, factory func(*ServiceProvider) (T, error)) {
	addFactory(s, LifetimeScoped, factory)
}

// AddTransient registers a factory invoked on every resolution.
func AddTransient[T any](s *ServiceCollection, factory func(*ServiceProvider) (T, error)) {
	addFactory(s, LifetimeTransient, factory)
}

// AddHostedService registers a hosted service. Hosted services are
// singletons; the host starts them in registration order and stops them in
// reverse.
func AddHostedService(s *ServiceCollection, factory func(*ServiceProvider) (HostedService, error)) {
	addFactory(s, LifetimeSingleton, factory)
}
