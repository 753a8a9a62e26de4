package hosttheory

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// ServiceProvider resolves services from a finalized collection. Singletons
// are cached on the root provider; scoped instances on the provider returned
// by CreateScope. The root provider doubles as the root scope.
type ServiceProvider struct {
	descriptors []serviceDescriptor
	index       map[reflect.Type][]int

	parent *ServiceProvider

	mu         sync.Mutex
	singletons map[int]any
	scoped     map[int]any

	resolutionState sync.Map
	statePool       sync.Pool
}

type resolutionState struct {
	chain map[string]bool
	keys  []string
}

func newServiceProvider(s *ServiceCollection) *ServiceProvider {
	descriptors := make([]serviceDescriptor, len(s.descriptors))
	copy(descriptors, s.descriptors)

	index := make(map[reflect.Type][]int, len(descriptors))
	for i, d := range descriptors {
		index[d.serviceType] = append(index[d.serviceType], i)
	}

	p := &ServiceProvider{
		descriptors: descriptors,
		index:       index,
		singletons:  make(map[int]any),
		scoped:      make(map[int]any),
	}
	p.statePool.New = func() any {
		return &resolutionState{
			chain: make(map[string]bool, 8),
			keys:  make([]string, 0, 8),
		}
	}
	return p
}

// CreateScope returns a provider sharing singletons with the root but
// holding its own scoped instances.
func (p *ServiceProvider) CreateScope() *ServiceProvider {
	root := p.root()
	return &ServiceProvider{
		descriptors: root.descriptors,
		index:       root.index,
		parent:      root,
		scoped:      make(map[int]any),
	}
}

func (p *ServiceProvider) root() *ServiceProvider {
	if p.parent != nil {
		return p.parent
	}
	return p
}

// Resolve returns the service registered for T, constructing it if needed.
// When T has multiple registrations the last one wins.
func Resolve[T any](p *ServiceProvider) (T, error) {
	var zero T
	t := serviceType[T]()
	idxs := p.index[t]
	if len(idxs) == 0 {
		return zero, &NotRegisteredError{Type: t.String()}
	}
	val, err := p.resolveIndex(idxs[len(idxs)-1])
	if err != nil {
		return zero, err
	}
	typed, ok := val.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: t.String(), Got: typeName(val)}
	}
	return typed, nil
}

// MustResolve is Resolve, panicking on error. Intended for composition-root
// code where a missing registration is a programmer error.
func MustResolve[T any](p *ServiceProvider) T {
	v, err := Resolve[T](p)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveAll returns every registration for T in registration order.
func ResolveAll[T any](p *ServiceProvider) ([]T, error) {
	t := serviceType[T]()
	idxs := p.index[t]
	out := make([]T, 0, len(idxs))
	for _, i := range idxs {
		val, err := p.resolveIndex(i)
		if err != nil {
			return nil, err
		}
		typed, ok := val.(T)
		if !ok {
			return nil, &TypeMismatchError{Expected: t.String(), Got: typeName(val)}
		}
		out = append(out, typed)
	}
	return out, nil
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	return t.String()
}

func (p *ServiceProvider) resolveIndex(i int) (any, error) {
	d := p.descriptors[i]
	if d.hasInstance {
		return d.instance, nil
	}

	root := p.root()
	key := strconv.Itoa(i) + ":" + d.serviceType.String()
	if err := root.startResolving(key); err != nil {
		return nil, err
	}
	defer root.finishResolving(key)

	switch d.lifetime {
	case LifetimeSingleton:
		return root.cached(root, i, d)
	case LifetimeScoped:
		return p.cached(root, i, d)
	default:
		val, err := d.factory(p)
		if err != nil {
			return nil, &ResolveError{Type: d.serviceType.String(), Err: err}
		}
		return val, nil
	}
}

// cached returns the instance for descriptor i from the receiver's cache,
// constructing it outside the lock on a miss. Losing a construction race is
// possible only for resolutions racing across goroutines; the first stored
// instance wins.
func (p *ServiceProvider) cached(root *ServiceProvider, i int, d serviceDescriptor) (any, error) {
	cache := p.cacheFor(d.lifetime)

	p.mu.Lock()
	if val, ok := cache[i]; ok {
		p.mu.Unlock()
		return val, nil
	}
	p.mu.Unlock()

	val, err := d.factory(p.resolverFor(root, d.lifetime))
	if err != nil {
		return nil, &ResolveError{Type: d.serviceType.String(), Err: err}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := cache[i]; ok {
		return existing, nil
	}
	cache[i] = val
	return val, nil
}

func (p *ServiceProvider) cacheFor(lifetime ServiceLifetime) map[int]any {
	if lifetime == LifetimeSingleton {
		return p.singletons
	}
	return p.scoped
}

// resolverFor picks the provider a factory's own dependencies resolve
// against: singleton factories must not capture scoped instances.
func (p *ServiceProvider) resolverFor(root *ServiceProvider, lifetime ServiceLifetime) *ServiceProvider {
	if lifetime == LifetimeSingleton {
		return root
	}
	return p
}

func (p *ServiceProvider) getResolutionState() *resolutionState {
	id := strconv.FormatInt(goid(), 10)
	if state, ok := p.resolutionState.Load(id); ok {
		return state.(*resolutionState)
	}
	state := p.statePool.Get().(*resolutionState)
	p.resolutionState.Store(id, state)
	return state
}

func (p *ServiceProvider) startResolving(key string) error {
	state := p.getResolutionState()
	if state.chain[key] {
		return &CircularDependencyError{Type: key[strings.Index(key, ":")+1:]}
	}
	state.chain[key] = true
	state.keys = append(state.keys, key)
	return nil
}

func (p *ServiceProvider) finishResolving(key string) {
	state := p.getResolutionState()
	delete(state.chain, key)
	if len(state.chain) > 0 {
		return
	}
	id := strconv.FormatInt(goid(), 10)
	p.resolutionState.Delete(id)
	for _, k := range state.keys {
		delete(state.chain, k)
	}
	state.keys = state.keys[:0]
	p.statePool.Put(state)
}
