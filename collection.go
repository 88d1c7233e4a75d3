package nasc

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// resolveAll materializes a slice request []T from every unnamed candidate
// of T: singletons first (cached, in registration order), then a fresh
// instance of each transient. Elements that fail to construct are left out.
// found is false when T has no registration at all.
func (n *Nasc) resolveAll(t reflect.Type, res *resolution) (reflect.Value, bool) {
	elem := t.Elem()

	singletons, transients, args := n.collectionCandidates(elem)
	if len(singletons)+len(transients) == 0 {
		return reflect.Value{}, false
	}

	out := reflect.MakeSlice(t, 0, len(singletons)+len(transients))

	// Held across the whole loop so concurrent collection requests never
	// build the same singleton twice.
	n.singletons.locked(res, func() {
		for _, candidate := range singletons {
			impl, ok := n.instantiate(elem, candidate, args)
			if !ok {
				continue
			}
			if v, ok := n.singleton(elem, slot{impl: impl}, impl, res); ok {
				out = reflect.Append(out, v)
			} else {
				n.logger.Debug("collection element skipped", zap.Stringer("type", elem), zap.Stringer("implementation", impl))
			}
		}
	})

	for _, candidate := range transients {
		impl, ok := n.instantiate(elem, candidate, args)
		if !ok {
			continue
		}
		if v, ok := n.build(elem, impl, registry.Transient, res); ok {
			out = reflect.Append(out, v)
		} else {
			n.logger.Debug("collection element skipped", zap.Stringer("type", elem), zap.Stringer("implementation", impl))
		}
	}

	return out, true
}

// collectionCandidates returns the closed candidates of elem, or its open
// candidates with the type arguments to substitute when no closed binding
// exists.
func (n *Nasc) collectionCandidates(elem reflect.Type) (singletons, transients []*registry.Implementation, args string) {
	key := registry.TypeKey(elem)
	singletons = n.registry.UnnamedCandidates(registry.Singleton, key)
	transients = n.registry.UnnamedCandidates(registry.Transient, key)
	if len(singletons)+len(transients) > 0 {
		return singletons, transients, ""
	}

	open, args, ok := registry.OpenKey(elem)
	if !ok {
		return nil, nil, ""
	}
	return n.registry.UnnamedCandidates(registry.Singleton, open),
		n.registry.UnnamedCandidates(registry.Transient, open),
		args
}
