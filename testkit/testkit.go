// Package testkit provides deterministic helpers for testing hosttheory
// hosts: a manual clock, an in-memory recording logger, and a pre-wired
// builder that never touches the real filesystem.
package testkit

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/theory-cloud/hosttheory"
	"github.com/theory-cloud/hosttheory/pkg/observability"
)

// Env is a deterministic local test environment for hosttheory hosts.
type Env struct {
	Clock  *ManualClock
	Logger *observability.TestLogger
	Fs     afero.Fs
}

func New() *Env {
	return NewWithTime(time.Unix(0, 0).UTC())
}

func NewWithTime(now time.Time) *Env {
	return &Env{
		Clock:  NewManualClock(now),
		Logger: observability.NewTestLogger(),
		Fs:     afero.NewMemMapFs(),
	}
}

// Builder returns a host builder wired to the environment's clock, logger,
// and in-memory filesystem, with a fixed platform so tests do not depend on
// the machine they run on.
func (e *Env) Builder() *hosttheory.HostBuilder {
	return hosttheory.New().
		UseClock(e.Clock).
		UseLogger(e.Logger).
		UseFs(e.Fs).
		UsePlatform(hosttheory.PlatformLinux).
		UseApplicationName("testapp").
		UseEnvironment(hosttheory.EnvDevelopment)
}

// WriteFile places a file on the environment's in-memory filesystem.
func (e *Env) WriteFile(path string, data []byte) error {
	return afero.WriteFile(e.Fs, path, data, 0o644)
}

// RunHost starts the host, invokes fn while it is running, and stops it.
// The first error encountered is returned.
func RunHost(ctx context.Context, host *hosttheory.Host, fn func()) error {
	if err := host.Start(ctx); err != nil {
		return err
	}
	if fn != nil {
		fn()
	}
	return host.Stop(ctx)
}

// ManualClock is a deterministic, mutable clock for tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ hosttheory.Clock = (*ManualClock)(nil)

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
