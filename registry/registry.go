// Package registry stores which implementation types satisfy which abstract
// types. It is pure data: insertion and lookup, no resolution behavior.
package registry

import (
	"fmt"
	"reflect"
	"sync"
)

// Lifetime selects the candidate tables a binding is stored in.
type Lifetime uint8

const (
	// Transient bindings are constructed on every resolution.
	Transient Lifetime = iota

	// Singleton bindings are constructed once per engine and cached.
	Singleton
)

// String returns the string representation of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	default:
		return fmt.Sprintf("lifetime(%d)", uint8(l))
	}
}

// Registry holds four tables per lifetime family: ordered unnamed candidate
// lists and name-qualified maps, for transient and singleton bindings.
// Unnamed lists keep insertion order; the first entry is the default.
//
// A Registry is goroutine-safe.
type Registry struct {
	mu             sync.RWMutex
	transient      map[Key][]*Implementation
	singleton      map[Key][]*Implementation
	namedTransient map[Key]map[string]*Implementation
	namedSingleton map[Key]map[string]*Implementation
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		transient:      make(map[Key][]*Implementation),
		singleton:      make(map[Key][]*Implementation),
		namedTransient: make(map[Key]map[string]*Implementation),
		namedSingleton: make(map[Key]map[string]*Implementation),
	}
}

// AddSingleton appends impl to the singleton candidates of abstract.
func (r *Registry) AddSingleton(abstract reflect.Type, impl *Implementation) error {
	return r.add(Singleton, abstract, impl, "")
}

// AddNamedSingleton registers impl as the singleton named name for abstract.
// The implementation is also appended to the unnamed singleton candidates.
func (r *Registry) AddNamedSingleton(abstract reflect.Type, impl *Implementation, name string) error {
	if name == "" {
		return &InvalidBindingError{Reason: "name cannot be empty"}
	}
	return r.add(Singleton, abstract, impl, name)
}

// AddTransient appends impl to the transient candidates of abstract.
func (r *Registry) AddTransient(abstract reflect.Type, impl *Implementation) error {
	return r.add(Transient, abstract, impl, "")
}

// AddNamedTransient registers impl as the transient named name for abstract.
// The implementation is also appended to the unnamed transient candidates.
func (r *Registry) AddNamedTransient(abstract reflect.Type, impl *Implementation, name string) error {
	if name == "" {
		return &InvalidBindingError{Reason: "name cannot be empty"}
	}
	return r.add(Transient, abstract, impl, name)
}

// add validates the shape of a binding and stores it. Whether the
// implementation's own dependencies can be satisfied is not checked.
func (r *Registry) add(lifetime Lifetime, abstract reflect.Type, impl *Implementation, name string) error {
	if abstract == nil {
		return &InvalidBindingError{Reason: "abstract type cannot be nil"}
	}
	if impl == nil {
		return &InvalidBindingError{Reason: "implementation cannot be nil"}
	}

	var key Key
	if impl.IsOpen() {
		k, _, ok := OpenKey(abstract)
		if !ok {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("open implementation %v requires a generic abstract type, got %v", impl, abstract),
			}
		}
		key = k
	} else {
		if !impl.Type.AssignableTo(abstract) {
			return &InvalidBindingError{
				Reason: fmt.Sprintf("%v is not assignable to %v", impl.Type, abstract),
			}
		}
		key = TypeKey(abstract)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unnamed, named := r.tables(lifetime)

	if name != "" {
		if named[key] == nil {
			named[key] = make(map[string]*Implementation)
		}
		if _, exists := named[key][name]; exists {
			return &BindingAlreadyExistsError{Type: abstract, Name: name}
		}
		named[key][name] = impl
	}

	unnamed[key] = append(unnamed[key], impl)
	return nil
}

// tables returns the unnamed and named tables of a lifetime.
// Must be called with r.mu held.
func (r *Registry) tables(lifetime Lifetime) (map[Key][]*Implementation, map[Key]map[string]*Implementation) {
	if lifetime == Singleton {
		return r.singleton, r.namedSingleton
	}
	return r.transient, r.namedTransient
}

// UnnamedCandidates returns a copy of the ordered unnamed candidates of key.
// The result is empty when nothing is registered.
//
// This method is goroutine-safe.
func (r *Registry) UnnamedCandidates(lifetime Lifetime, key Key) []*Implementation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unnamed, _ := r.tables(lifetime)
	candidates := unnamed[key]
	if len(candidates) == 0 {
		return nil
	}

	out := make([]*Implementation, len(candidates))
	copy(out, candidates)
	return out
}

// NamedCandidate returns the implementation registered under name for key.
//
// This method is goroutine-safe.
func (r *Registry) NamedCandidate(lifetime Lifetime, key Key, name string) (*Implementation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, named := r.tables(lifetime)
	impl, ok := named[key][name]
	return impl, ok
}

// Has reports whether key has at least one unnamed candidate.
//
// This method is goroutine-safe.
func (r *Registry) Has(lifetime Lifetime, key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unnamed, _ := r.tables(lifetime)
	return len(unnamed[key]) > 0
}

// HasNamed reports whether the named table of lifetime holds key at all,
// regardless of which names it carries.
//
// This method is goroutine-safe.
func (r *Registry) HasNamed(lifetime Lifetime, key Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, named := r.tables(lifetime)
	_, exists := named[key]
	return exists
}

// InvalidBindingError is returned when a binding has invalid parameters.
type InvalidBindingError struct {
	Reason string
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding: %s", e.Reason)
}

// BindingAlreadyExistsError is returned when a name is registered twice for
// the same abstract type and lifetime.
type BindingAlreadyExistsError struct {
	Type reflect.Type
	Name string
}

func (e *BindingAlreadyExistsError) Error() string {
	return fmt.Sprintf("named binding '%s' for type %v already exists", e.Name, e.Type)
}
