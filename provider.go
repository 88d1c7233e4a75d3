package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// ServiceProvider groups related registrations.
//
// Example:
//
//	type LoggingProvider struct{}
//
//	func (p *LoggingProvider) Register(reg *registry.Registry) error {
//	    return nasc.Singleton[Logger](reg, NewConsoleLogger)
//	}
type ServiceProvider interface {
	Register(reg *registry.Registry) error
}

// BootableProvider is an optional interface for providers that need a boot
// phase. Boot is called once the engine exists, after every provider has
// registered.
//
// Example:
//
//	func (p *DatabaseProvider) Boot(container *nasc.Nasc) error {
//	    db, ok := nasc.Resolve[Database](container)
//	    if !ok {
//	        return errors.New("database unavailable")
//	    }
//	    return db.Connect()
//	}
type BootableProvider interface {
	ServiceProvider
	Boot(container *Nasc) error
}

// DeferredProvider is an optional interface for providers that register
// conditionally.
type DeferredProvider interface {
	ServiceProvider
	ShouldRegister(reg *registry.Registry) bool
}

// NewWithProviders registers every provider into a fresh registry, creates
// the engine and boots the bootable providers in order. A provider type is
// registered at most once; deferred providers that decline are skipped.
func NewWithProviders(providers []ServiceProvider, options ...Option) (*Nasc, error) {
	reg := registry.New()

	registered := make([]ServiceProvider, 0, len(providers))
	seen := make(map[reflect.Type]bool, len(providers))

	for _, provider := range providers {
		if provider == nil {
			return nil, fmt.Errorf("provider cannot be nil")
		}

		if deferred, ok := provider.(DeferredProvider); ok && !deferred.ShouldRegister(reg) {
			continue
		}

		providerType := reflect.TypeOf(provider)
		if seen[providerType] {
			continue
		}
		seen[providerType] = true

		if err := provider.Register(reg); err != nil {
			return nil, fmt.Errorf("provider %v registration failed: %w", providerType, err)
		}
		registered = append(registered, provider)
	}

	container := New(reg, options...)

	for _, provider := range registered {
		if bootable, ok := provider.(BootableProvider); ok {
			if err := bootable.Boot(container); err != nil {
				return nil, fmt.Errorf("provider %T boot failed: %w", provider, err)
			}
		}
	}

	return container, nil
}
