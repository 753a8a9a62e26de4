package hosttheory

import "sync"

// ApplicationLifetime exposes the host's lifecycle transitions as channels.
// It is registered as a default service so any component can observe
// startup, request a stop, or wait for shutdown to finish.
type ApplicationLifetime struct {
	started  chan struct{}
	stopping chan struct{}
	stopped  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	doneOnce  sync.Once
}

func NewApplicationLifetime() *ApplicationLifetime {
	return &ApplicationLifetime{
		started:  make(chan struct{}),
		stopping: make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Started is closed once all hosted services have started.
func (l *ApplicationLifetime) Started() <-chan struct{} {
	return l.started
}

// Stopping is closed when a stop has been requested.
func (l *ApplicationLifetime) Stopping() <-chan struct{} {
	return l.stopping
}

// Stopped is closed once all hosted services have stopped.
func (l *ApplicationLifetime) Stopped() <-chan struct{} {
	return l.stopped
}

// StopApplication requests a graceful stop. Safe to call more than once and
// from any goroutine.
func (l *ApplicationLifetime) StopApplication() {
	l.stopOnce.Do(func() { close(l.stopping) })
}

func (l *ApplicationLifetime) notifyStarted() {
	l.startOnce.Do(func() { close(l.started) })
}

func (l *ApplicationLifetime) notifyStopped() {
	l.doneOnce.Do(func() { close(l.stopped) })
}
