package nasc

import "github.com/toutaio/toutago-nasc-resolver/registry"

// Lifetime represents the lifecycle strategy for a bound dependency.
type Lifetime = registry.Lifetime

const (
	// LifetimeTransient creates a new instance on every resolution.
	LifetimeTransient = registry.Transient

	// LifetimeSingleton creates one instance per engine, lazily, and reuses it.
	LifetimeSingleton = registry.Singleton
)
