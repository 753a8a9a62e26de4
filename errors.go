package hosttheory

import "fmt"

// NilArgumentError reports a nil delegate, factory, or service passed to a
// registration method. Registration methods are fluent and cannot return an
// error, so they panic with this type immediately.
type NilArgumentError struct {
	Name string
}

func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("nil argument: %s", e.Name)
}

// InvalidOperationError reports a call that is not valid for the current
// state of the builder or provider, such as building a host twice.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Op, e.Reason)
}

// NotRegisteredError reports a resolution request for a type with no
// registration in the service collection.
type NotRegisteredError struct {
	Type string
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("no service registered for type: %s", e.Type)
}

// CircularDependencyError reports a resolution cycle between service
// factories on a single goroutine.
type CircularDependencyError struct {
	Type string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected for type: %s", e.Type)
}

// TypeMismatchError reports a registration whose instance or factory result
// does not satisfy the requested service type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// ResolveError wraps a failure from a user-supplied service factory.
type ResolveError struct {
	Type string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving %s: %v", e.Type, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// StartError reports a hosted service that failed to start.
type StartError struct {
	Service string
	Err     error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Service, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// StopError reports a hosted service that failed to stop.
type StopError struct {
	Service string
	Err     error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("stopping %s: %v", e.Service, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}
