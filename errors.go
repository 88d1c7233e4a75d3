package nasc

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// Resolution never returns these errors: a failed resolution is reported as
// an absent result. They describe what went wrong on the diagnostics
// channel (the engine's logger).

// InvalidBindingError is returned when a binding has invalid parameters.
type InvalidBindingError = registry.InvalidBindingError

// BindingAlreadyExistsError is returned when a binding name is registered twice.
type BindingAlreadyExistsError = registry.BindingAlreadyExistsError

// BindingNotFoundError describes a request with no matching binding.
type BindingNotFoundError struct {
	Type reflect.Type
	Name string
}

func (e *BindingNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("named binding '%s' not found for type %v", e.Name, e.Type)
	}
	return fmt.Sprintf("binding not found for type %v", e.Type)
}

// ResolutionError describes an implementation none of whose constructors
// succeeded.
type ResolutionError struct {
	Type    reflect.Type
	Name    string
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	typeStr := "unknown"
	if e.Type != nil {
		typeStr = e.Type.String()
	}

	nameStr := ""
	if e.Name != "" {
		nameStr = fmt.Sprintf(" (name=%s)", e.Name)
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %s%s%s%s", typeStr, nameStr, contextStr, causeStr)
}

// Unwrap returns the underlying cause error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError indicates a circular dependency was detected.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "circular dependency detected"
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

// MissingDependencyError indicates a required constructor parameter resolved
// to nothing.
type MissingDependencyError struct {
	Type  reflect.Type
	Name  string
	Index int
}

func (e *MissingDependencyError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("parameter %d: no instance of %v named '%s'", e.Index, e.Type, e.Name)
	}
	return fmt.Sprintf("parameter %d: no instance of %v", e.Index, e.Type)
}

// ConstructorPanicError carries the value a constructor panicked with.
type ConstructorPanicError struct {
	Value interface{}
}

func (e *ConstructorPanicError) Error() string {
	return fmt.Sprintf("constructor panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *ConstructorPanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// UnassignableResultError indicates a constructed value does not satisfy the
// requested type, which can happen with open generic families.
type UnassignableResultError struct {
	Result reflect.Type
	Target reflect.Type
}

func (e *UnassignableResultError) Error() string {
	return fmt.Sprintf("constructed %v is not assignable to %v", e.Result, e.Target)
}
