package nasc

import (
	"errors"
	"reflect"
	"sort"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// build constructs impl as an instance of t on the current resolution.
// The implementation type stays on the resolution stack for the duration of
// the construction.
func (n *Nasc) build(t reflect.Type, impl *registry.Implementation, lifetime registry.Lifetime, res *resolution) (reflect.Value, bool) {
	res.stack = append(res.stack, impl.Type)
	defer func() {
		res.stack = res.stack[:len(res.stack)-1]
	}()

	if res.cyclic() {
		n.logger.Debug("dependency cycle",
			zap.Stringer("type", t),
			zap.Error(&CircularDependencyError{Path: res.path()}),
		)
		n.metrics.failed(reasonCycle)
		return reflect.Value{}, false
	}

	ranked := n.rank(impl.Constructors)
	attempts := make([]func() (reflect.Value, error), len(ranked))
	for i, ctor := range ranked {
		ctor := ctor
		attempts[i] = func() (reflect.Value, error) {
			return n.invoke(t, ctor, res)
		}
	}

	v, errs := firstSuccess(attempts)
	if !v.IsValid() {
		n.logger.Debug("construction failed",
			zap.Error(&ResolutionError{
				Type:    t,
				Context: "implementation " + impl.Type.String(),
				Cause:   errors.Join(errs...),
			}),
		)
		n.metrics.failed(reasonConstructor)
		return reflect.Value{}, false
	}

	n.metrics.constructed(lifetime)
	return v, true
}

// cyclic reports whether the top of the stack already appears below it.
func (r *resolution) cyclic() bool {
	top := len(r.stack) - 1
	for _, t := range r.stack[:top] {
		if t == r.stack[top] {
			return true
		}
	}
	return false
}

func (r *resolution) path() []string {
	path := make([]string, len(r.stack))
	for i, t := range r.stack {
		path[i] = t.String()
	}
	return path
}

// invoke resolves the parameters of ctor in declaration order and calls it.
func (n *Nasc) invoke(t reflect.Type, ctor *registry.Constructor, res *resolution) (reflect.Value, error) {
	args := make([]reflect.Value, len(ctor.Params))
	for i, p := range ctor.Params {
		if p.Skip || isValueShaped(p.Type) {
			args[i] = reflect.Zero(p.Type)
			continue
		}

		v, ok := n.resolve(p.Type, p.Name, res)
		if !ok || !v.Type().AssignableTo(p.Type) {
			if p.Optional {
				args[i] = reflect.Zero(p.Type)
				continue
			}
			return reflect.Value{}, &MissingDependencyError{Type: p.Type, Name: p.Name, Index: i}
		}
		args[i] = v
	}

	out, err := ctor.Invoke(args)
	if err != nil {
		return reflect.Value{}, err
	}
	if !out.Type().AssignableTo(t) {
		return reflect.Value{}, &UnassignableResultError{Result: out.Type(), Target: t}
	}
	return out, nil
}

// rank orders constructors by ascending count of parameters that no known
// registration can satisfy. The sort is stable, so ties keep registration
// order.
func (n *Nasc) rank(ctors []*registry.Constructor) []*registry.Constructor {
	ranked := make([]*registry.Constructor, len(ctors))
	copy(ranked, ctors)
	if len(ranked) < 2 {
		return ranked
	}

	cost := make(map[*registry.Constructor]int, len(ranked))
	for _, ctor := range ranked {
		for _, p := range ctor.Params {
			if !n.satisfiable(p) {
				cost[ctor]++
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return cost[ranked[i]] < cost[ranked[j]]
	})
	return ranked
}

// satisfiable reports whether p needs no registration or has one under
// either lifetime. A parameter counts as unsatisfiable only when it is
// registered neither as a singleton nor as a transient.
func (n *Nasc) satisfiable(p registry.Param) bool {
	if p.Skip || isValueShaped(p.Type) {
		return true
	}
	return n.registered(p.Type, p.Name)
}

func (n *Nasc) registered(t reflect.Type, name string) bool {
	keys := []registry.Key{registry.TypeKey(t)}
	if open, _, ok := registry.OpenKey(t); ok {
		keys = append(keys, open)
	}

	for _, key := range keys {
		for _, lifetime := range lifetimes {
			if name != "" {
				if _, ok := n.registry.NamedCandidate(lifetime, key, name); ok {
					return true
				}
				continue
			}
			if n.registry.Has(lifetime, key) {
				return true
			}
		}
	}

	if name == "" && t.Kind() == reflect.Slice {
		return n.registered(t.Elem(), "")
	}
	return false
}

// isValueShaped reports whether t is a primitive or value-shaped parameter
// type, which always receives its zero value.
func isValueShaped(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Array, reflect.Struct:
		return true
	}
	return false
}
