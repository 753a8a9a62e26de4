package hosttheory

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/theory-cloud/hosttheory/pkg/observability"
)

// HostedService is a long-running component owned by the host. Start must
// return once the service is running; blocking work belongs on a goroutine
// the service owns. Stop must return once the service has shut down.
type HostedService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Host is the composed runtime object returned by HostBuilder.Build. It owns
// the service provider and drives hosted services through the application
// lifetime.
type Host struct {
	id       string
	env      *Environment
	services *ServiceProvider
	lifetime *ApplicationLifetime
	logger   observability.StructuredLogger
	clock    Clock
	hosted   []HostedService

	mu      sync.Mutex
	started bool
}

func newHost(p *ServiceProvider) (*Host, error) {
	env, err := Resolve[*Environment](p)
	if err != nil {
		return nil, err
	}
	lifetime, err := Resolve[*ApplicationLifetime](p)
	if err != nil {
		return nil, err
	}
	logger, err := Resolve[observability.StructuredLogger](p)
	if err != nil {
		return nil, err
	}
	clock, err := Resolve[Clock](p)
	if err != nil {
		return nil, err
	}
	hosted, err := ResolveAll[HostedService](p)
	if err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	return &Host{
		id:       id,
		env:      env,
		services: p,
		lifetime: lifetime,
		logger: logger.WithFields(map[string]any{
			"host_id": id,
			"app":     env.ApplicationName(),
			"env":     env.EnvironmentName(),
		}),
		clock:  clock,
		hosted: hosted,
	}, nil
}

// ID returns the host's ULID instance identifier.
func (h *Host) ID() string {
	return h.id
}

// Services returns the root service provider.
func (h *Host) Services() *ServiceProvider {
	return h.services
}

func (h *Host) Environment() *Environment {
	return h.env
}

func (h *Host) Lifetime() *ApplicationLifetime {
	return h.lifetime
}

// Start brings up every hosted service in registration order. The first
// failure stops the services already started, in reverse order, and is
// returned as a *StartError.
func (h *Host) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return &InvalidOperationError{Op: "start", Reason: "host already started"}
	}

	begin := h.clock.Now()
	for i, svc := range h.hosted {
		if err := svc.Start(ctx); err != nil {
			startErr := &StartError{Service: typeName(svc), Err: err}
			h.logger.Error("host start failed", map[string]any{
				"service": typeName(svc),
				"error":   err.Error(),
			})
			h.stopServices(context.WithoutCancel(ctx), i-1)
			return startErr
		}
	}
	h.started = true
	h.lifetime.notifyStarted()
	h.logger.Info("host started", map[string]any{
		"platform":        string(h.env.Platform()),
		"hosted_services": len(h.hosted),
		"duration_ms":     h.clock.Now().Sub(begin).Milliseconds(),
	})
	return nil
}

// Stop shuts down hosted services in reverse registration order. Every
// service is stopped even when an earlier one fails; the first failure is
// returned as a *StopError.
func (h *Host) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lifetime.StopApplication()
	err := h.stopServices(ctx, len(h.hosted)-1)
	h.started = false
	h.lifetime.notifyStopped()
	if err != nil {
		return err
	}
	h.logger.Info("host stopped", nil)
	return nil
}

func (h *Host) stopServices(ctx context.Context, from int) error {
	var firstErr error
	for i := from; i >= 0; i-- {
		svc := h.hosted[i]
		if err := svc.Stop(ctx); err != nil {
			h.logger.Error("hosted service stop failed", map[string]any{
				"service": typeName(svc),
				"error":   err.Error(),
			})
			if firstErr == nil {
				firstErr = &StopError{Service: typeName(svc), Err: err}
			}
		}
	}
	return firstErr
}

// Run starts the host, blocks until ctx is cancelled or StopApplication is
// called, then stops it.
func (h *Host) Run(ctx context.Context) error {
	if err := h.Start(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-h.lifetime.Stopping():
	}
	return h.Stop(context.WithoutCancel(ctx))
}
