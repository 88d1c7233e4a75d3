package nasc

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// slot addresses one singleton instance: either an unnamed candidate of an
// abstract type or a name under it.
type slot struct {
	impl *registry.Implementation
	name string
}

// singletonCache holds every singleton built by one engine. A single mutex
// guards both tables and is held across first construction, so each slot is
// constructed at most once.
//
// owner and holder record which goroutine holds mu and on behalf of which
// resolution, so a constructor calling back into the engine on the same
// goroutine joins that resolution instead of locking mu again.
type singletonCache struct {
	mu             sync.Mutex
	owner          atomic.Uint64
	holder         atomic.Pointer[resolution]
	instances      map[reflect.Type]map[*registry.Implementation]reflect.Value
	namedInstances map[reflect.Type]map[string]reflect.Value
}

// newSingletonCache creates a new singleton cache.
func newSingletonCache() *singletonCache {
	return &singletonCache{
		instances:      make(map[reflect.Type]map[*registry.Implementation]reflect.Value),
		namedInstances: make(map[reflect.Type]map[string]reflect.Value),
	}
}

// locked runs fn with the cache mutex held. Nested calls from the same
// resolution reuse the held lock instead of acquiring it again.
func (sc *singletonCache) locked(res *resolution, fn func()) {
	if res.locked {
		fn()
		return
	}

	sc.mu.Lock()
	res.locked = true
	sc.holder.Store(res)
	sc.owner.Store(goroutineID())
	defer func() {
		sc.owner.Store(0)
		sc.holder.Store(nil)
		res.locked = false
		sc.mu.Unlock()
	}()

	fn()
}

// current returns the resolution holding the lock when the caller runs on
// the goroutine that holds it. Only the holding goroutine ever stores its
// own id in owner, so a match cannot be stale.
func (sc *singletonCache) current() (*resolution, bool) {
	owner := sc.owner.Load()
	if owner == 0 || owner != goroutineID() {
		return nil, false
	}
	res := sc.holder.Load()
	return res, res != nil
}

// get must be called with sc.mu held.
func (sc *singletonCache) get(t reflect.Type, s slot) (reflect.Value, bool) {
	if s.name != "" {
		v, ok := sc.namedInstances[t][s.name]
		return v, ok
	}
	v, ok := sc.instances[t][s.impl]
	return v, ok
}

// put must be called with sc.mu held. An occupied slot is never overwritten.
func (sc *singletonCache) put(t reflect.Type, s slot, v reflect.Value) {
	if s.name != "" {
		if sc.namedInstances[t] == nil {
			sc.namedInstances[t] = make(map[string]reflect.Value)
		}
		if _, exists := sc.namedInstances[t][s.name]; !exists {
			sc.namedInstances[t][s.name] = v
		}
		return
	}

	if sc.instances[t] == nil {
		sc.instances[t] = make(map[*registry.Implementation]reflect.Value)
	}
	if _, exists := sc.instances[t][s.impl]; !exists {
		sc.instances[t][s.impl] = v
	}
}

// singleton returns the cached instance of slot s, constructing and
// publishing it under the lock on first use. Failed constructions are not
// cached.
func (n *Nasc) singleton(t reflect.Type, s slot, impl *registry.Implementation, res *resolution) (v reflect.Value, ok bool) {
	n.singletons.locked(res, func() {
		if v, ok = n.singletons.get(t, s); ok {
			return
		}

		v, ok = n.build(t, impl, registry.Singleton, res)
		if ok {
			n.singletons.put(t, s, v)
		}
	})
	return v, ok
}
