package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// Resolve resolves T with type safety.
//
//	logger, ok := nasc.Resolve[Logger](container)
func Resolve[T any](n *Nasc) (T, bool) {
	return ResolveNamed[T](n, "")
}

// ResolveNamed resolves the binding of T registered under name.
func ResolveNamed[T any](n *Nasc, name string) (T, bool) {
	var zero T
	instance, ok := n.ResolveNamed(reflect.TypeFor[T](), name)
	if !ok {
		return zero, false
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// MustResolve resolves T or panics - use only during startup.
func MustResolve[T any](n *Nasc) T {
	instance, ok := Resolve[T](n)
	if !ok {
		panic(fmt.Sprintf("failed to resolve %v", reflect.TypeFor[T]()))
	}
	return instance
}

// Singleton registers an unnamed singleton binding of T.
// ctors are passed to registry.NewImplementation, or a single
// *registry.Implementation (for example an open family built with
// registry.Generic) is used as is.
//
//	nasc.Singleton[Database](reg, NewPostgresDB)
func Singleton[T any](reg *registry.Registry, ctors ...interface{}) error {
	impl, err := implementationOf(ctors)
	if err != nil {
		return err
	}
	return reg.AddSingleton(reflect.TypeFor[T](), impl)
}

// NamedSingleton registers a singleton binding of T under name.
func NamedSingleton[T any](reg *registry.Registry, name string, ctors ...interface{}) error {
	impl, err := implementationOf(ctors)
	if err != nil {
		return err
	}
	return reg.AddNamedSingleton(reflect.TypeFor[T](), impl, name)
}

// Transient registers an unnamed transient binding of T.
func Transient[T any](reg *registry.Registry, ctors ...interface{}) error {
	impl, err := implementationOf(ctors)
	if err != nil {
		return err
	}
	return reg.AddTransient(reflect.TypeFor[T](), impl)
}

// NamedTransient registers a transient binding of T under name.
func NamedTransient[T any](reg *registry.Registry, name string, ctors ...interface{}) error {
	impl, err := implementationOf(ctors)
	if err != nil {
		return err
	}
	return reg.AddNamedTransient(reflect.TypeFor[T](), impl, name)
}

func implementationOf(ctors []interface{}) (*registry.Implementation, error) {
	if len(ctors) == 1 {
		if impl, ok := ctors[0].(*registry.Implementation); ok {
			return impl, nil
		}
	}
	return registry.NewImplementation(ctors...)
}
