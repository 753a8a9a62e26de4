package hosttheory

import "github.com/theory-cloud/hosttheory/config"

// Options carries a strongly typed view over a configuration subtree,
// resolved lazily from the provider's Config.
type Options[T any] struct {
	Value T
}

// AddOptions registers *Options[T] bound to the configuration subtree at
// key. An empty key binds the whole configuration. Decoding happens on first
// resolution; a decode failure surfaces as a *ResolveError.
func AddOptions[T any](s *ServiceCollection, key string) {
	AddSingleton(s, func(p *ServiceProvider) (*Options[T], error) {
		cfg, err := Resolve[*config.Config](p)
		if err != nil {
			return nil, err
		}
		opts := &Options[T]{}
		if err := cfg.Unmarshal(key, &opts.Value); err != nil {
			return nil, err
		}
		return opts, nil
	})
}
