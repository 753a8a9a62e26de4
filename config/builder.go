package config

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Source applies one configuration layer to a store. Sources are applied in
// registration order; later layers override earlier ones.
type Source interface {
	Apply(v *viper.Viper, fs afero.Fs) error
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(v *viper.Viper, fs afero.Fs) error

func (f SourceFunc) Apply(v *viper.Viper, fs afero.Fs) error {
	return f(v, fs)
}

// NilSourceError reports a nil Source passed to Builder.Add.
type NilSourceError struct{}

func (e *NilSourceError) Error() string {
	return "nil configuration source"
}

// SourceError wraps a source that failed to apply, identifying its position
// in the layer order.
type SourceError struct {
	Index int
	Err   error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("applying configuration source %d: %v", e.Index, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Builder accumulates configuration sources and folds them into a Config.
type Builder struct {
	sources    []Source
	fs         afero.Fs
	watchPaths []string
}

func NewBuilder() *Builder {
	return &Builder{
		fs: afero.NewOsFs(),
	}
}

// Add appends a source layer. A nil source panics immediately.
func (b *Builder) Add(src Source) *Builder {
	if src == nil {
		panic(&NilSourceError{})
	}
	if wf, ok := src.(*watchedFile); ok {
		b.watchPaths = append(b.watchPaths, wf.path)
	}
	b.sources = append(b.sources, src)
	return b
}

// WithFs replaces the filesystem file sources read from. Intended for tests.
func (b *Builder) WithFs(fs afero.Fs) *Builder {
	if fs != nil {
		b.fs = fs
	}
	return b
}

// Sources returns the registered layers in order.
func (b *Builder) Sources() []Source {
	return b.sources
}

// Build folds every source, in order, into a fresh store.
func (b *Builder) Build() (*Config, error) {
	v := viper.New()
	for i, src := range b.sources {
		if err := src.Apply(v, b.fs); err != nil {
			return nil, &SourceError{Index: i, Err: err}
		}
	}
	return &Config{
		v:          v,
		sources:    b.sources,
		fs:         b.fs,
		watchPaths: b.watchPaths,
	}, nil
}
