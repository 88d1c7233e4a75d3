package nasc

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// Nasc is the resolution engine. It turns requested abstract types into
// instances using the bindings of a registry, caching singletons.
// A Nasc is safe for concurrent use.
type Nasc struct {
	registry   *registry.Registry
	singletons *singletonCache
	logger     *zap.Logger
	metrics    *metrics
}

// New creates an engine resolving against reg. A nil registry behaves as an
// empty one. Options can be provided to configure diagnostics.
//
// Example:
//
//	reg := registry.New()
//	_ = nasc.Singleton[Logger](reg, NewConsoleLogger)
//	container := nasc.New(reg, nasc.WithDebug())
func New(reg *registry.Registry, options ...Option) *Nasc {
	if reg == nil {
		reg = registry.New()
	}

	n := &Nasc{
		registry:   reg,
		singletons: newSingletonCache(),
		logger:     zap.NewNop(),
	}

	for _, opt := range options {
		if err := opt(n); err != nil {
			panic(fmt.Sprintf("failed to apply option: %v", err))
		}
	}

	return n
}

// resolution is the state of one top-level Resolve call: the stack of
// implementation types under construction and whether this call chain holds
// the singleton lock.
type resolution struct {
	stack  []reflect.Type
	locked bool
}

// begin starts a top-level resolution. A call made from inside a singleton
// constructor, on the goroutine holding the singleton lock, continues the
// resolution that holds it: the lock is reused and its stack still detects
// cycles.
func (n *Nasc) begin() *resolution {
	if res, ok := n.singletons.current(); ok {
		return res
	}
	return &resolution{}
}

// Resolve returns an instance of t, or false when no binding exists or
// construction failed.
func (n *Nasc) Resolve(t reflect.Type) (interface{}, bool) {
	return n.ResolveNamed(t, "")
}

// ResolveNamed returns the instance bound to t under name. An empty name is
// an unnamed request. A name that is not registered yields false even when
// an unnamed binding for t exists.
func (n *Nasc) ResolveNamed(t reflect.Type, name string) (interface{}, bool) {
	if t == nil {
		return nil, false
	}

	v, ok := n.resolve(t, name, n.begin())
	n.metrics.resolved(ok)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// resolve walks the binding priorities: named tables, unnamed singleton,
// unnamed transient, collections, then the open-generic tables.
func (n *Nasc) resolve(t reflect.Type, name string, res *resolution) (reflect.Value, bool) {
	key := registry.TypeKey(t)
	openKey, args, generic := registry.OpenKey(t)

	if name != "" {
		if v, found, ok := n.resolveNamed(t, key, "", name, res); found {
			return v, ok
		}
		if generic {
			if v, found, ok := n.resolveNamed(t, openKey, args, name, res); found {
				return v, ok
			}
		}
		n.logger.Debug("no binding", zap.Error(&BindingNotFoundError{Type: t, Name: name}))
		return reflect.Value{}, false
	}

	if v, found, ok := n.resolveUnnamed(t, key, "", res); found {
		return v, ok
	}

	if t.Kind() == reflect.Slice {
		if v, found := n.resolveAll(t, res); found {
			return v, true
		}
	}

	if generic {
		if v, found, ok := n.resolveUnnamed(t, openKey, args, res); found {
			return v, ok
		}
	}

	n.logger.Debug("no binding", zap.Error(&BindingNotFoundError{Type: t}))
	return reflect.Value{}, false
}

// resolveNamed looks name up in the named singleton table, then the named
// transient table. found reports whether one of them holds key; once a table
// matches, a missing name is final.
func (n *Nasc) resolveNamed(t reflect.Type, key registry.Key, args, name string, res *resolution) (v reflect.Value, found, ok bool) {
	for _, lifetime := range lifetimes {
		if !n.registry.HasNamed(lifetime, key) {
			continue
		}

		impl, exists := n.registry.NamedCandidate(lifetime, key, name)
		if !exists {
			n.logger.Debug("no binding", zap.Error(&BindingNotFoundError{Type: t, Name: name}))
			return reflect.Value{}, true, false
		}

		impl, exists = n.instantiate(t, impl, args)
		if !exists {
			return reflect.Value{}, true, false
		}

		if lifetime == registry.Singleton {
			v, ok = n.singleton(t, slot{name: name}, impl, res)
		} else {
			v, ok = n.build(t, impl, registry.Transient, res)
		}
		return v, true, ok
	}

	return reflect.Value{}, false, false
}

// resolveUnnamed resolves the default (first) candidate of key, singletons
// taking precedence over transients.
func (n *Nasc) resolveUnnamed(t reflect.Type, key registry.Key, args string, res *resolution) (v reflect.Value, found, ok bool) {
	for _, lifetime := range lifetimes {
		candidates := n.registry.UnnamedCandidates(lifetime, key)
		if len(candidates) == 0 {
			continue
		}

		impl, exists := n.instantiate(t, candidates[0], args)
		if !exists {
			return reflect.Value{}, true, false
		}

		if lifetime == registry.Singleton {
			v, ok = n.singleton(t, slot{impl: impl}, impl, res)
		} else {
			v, ok = n.build(t, impl, registry.Transient, res)
		}
		return v, true, ok
	}

	return reflect.Value{}, false, false
}

// instantiate substitutes the request's type arguments into an open
// implementation. Closed implementations pass through.
func (n *Nasc) instantiate(t reflect.Type, impl *registry.Implementation, args string) (*registry.Implementation, bool) {
	inst, ok := impl.Instantiate(args)
	if !ok {
		n.logger.Debug("no instantiation for type arguments",
			zap.Stringer("type", t),
			zap.Stringer("implementation", impl),
			zap.String("args", args),
		)
	}
	return inst, ok
}

// lifetimes is the lookup order; singleton registrations win.
var lifetimes = [...]registry.Lifetime{registry.Singleton, registry.Transient}
