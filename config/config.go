// Package config provides layered configuration for hosttheory hosts.
//
// A Builder folds an ordered list of Sources into a single Config snapshot;
// later sources override earlier ones key by key. Sources read files through
// an afero filesystem so tests can run fully in memory.
package config

import (
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Config is an immutable-by-convention configuration snapshot. Watched file
// sources may replace the underlying store via Reload; readers always see a
// consistent snapshot.
type Config struct {
	mu      sync.RWMutex
	v       *viper.Viper
	sources []Source
	fs      afero.Fs

	watchPaths []string

	changeMu sync.Mutex
	onChange []func()
}

func (c *Config) store() *viper.Viper {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

func (c *Config) Get(key string) any {
	return c.store().Get(key)
}

func (c *Config) GetString(key string) string {
	return c.store().GetString(key)
}

func (c *Config) GetInt(key string) int {
	return c.store().GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	return c.store().GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	return c.store().GetDuration(key)
}

func (c *Config) GetStringSlice(key string) []string {
	return c.store().GetStringSlice(key)
}

func (c *Config) IsSet(key string) bool {
	return c.store().IsSet(key)
}

// AllSettings returns the merged settings tree. The returned map is a copy
// owned by the caller.
func (c *Config) AllSettings() map[string]any {
	return c.store().AllSettings()
}

// Unmarshal decodes the subtree at key into out. An empty key decodes the
// whole configuration.
func (c *Config) Unmarshal(key string, out any) error {
	v := c.store()
	if key == "" {
		return v.Unmarshal(out)
	}
	return v.UnmarshalKey(key, out)
}

// Sub returns the subtree at key as a standalone Config, or nil if the key
// is absent. The result does not participate in reload.
func (c *Config) Sub(key string) *Config {
	sub := c.store().Sub(key)
	if sub == nil {
		return nil
	}
	return &Config{v: sub, fs: c.fs}
}

// OnChange registers fn to run after a watched-file reload replaces the
// snapshot.
func (c *Config) OnChange(fn func()) {
	if fn == nil {
		return
	}
	c.changeMu.Lock()
	c.onChange = append(c.onChange, fn)
	c.changeMu.Unlock()
}

// Reload re-applies every source in order and swaps in the fresh snapshot.
func (c *Config) Reload() error {
	fresh := viper.New()
	for _, src := range c.sources {
		if err := src.Apply(fresh, c.fs); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.v = fresh
	c.mu.Unlock()

	c.changeMu.Lock()
	handlers := make([]func(), len(c.onChange))
	copy(handlers, c.onChange)
	c.changeMu.Unlock()
	for _, fn := range handlers {
		fn()
	}
	return nil
}
