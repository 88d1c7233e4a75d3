package nasc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// Test providers

type BasicProvider struct {
	registerCalled bool
}

func (p *BasicProvider) Register(reg *registry.Registry) error {
	p.registerCalled = true
	return Singleton[Logger](reg, &ConsoleLogger{})
}

type BootableTestProvider struct {
	registerCalled bool
	bootCalled     bool
	db             Database
}

func (p *BootableTestProvider) Register(reg *registry.Registry) error {
	p.registerCalled = true
	return Singleton[Database](reg, &MockDB{})
}

func (p *BootableTestProvider) Boot(container *Nasc) error {
	p.bootCalled = true
	db, ok := Resolve[Database](container)
	if !ok {
		return errors.New("database unavailable")
	}
	p.db = db
	return db.Connect()
}

type FailingProvider struct{}

func (p *FailingProvider) Register(*registry.Registry) error {
	return errors.New("registration failed")
}

type FailingBootProvider struct{}

func (p *FailingBootProvider) Register(*registry.Registry) error {
	return nil
}

func (p *FailingBootProvider) Boot(*Nasc) error {
	return errors.New("boot failed")
}

type DeferredTestProvider struct {
	shouldRegister bool
	registerCalled bool
}

func (p *DeferredTestProvider) ShouldRegister(*registry.Registry) bool {
	return p.shouldRegister
}

func (p *DeferredTestProvider) Register(*registry.Registry) error {
	p.registerCalled = true
	return nil
}

// DatabaseProvider only registers when a Logger binding already exists.
type DatabaseProvider struct{}

func (p *DatabaseProvider) ShouldRegister(reg *registry.Registry) bool {
	return reg.Has(registry.Singleton, registry.TypeKey(reflect.TypeFor[Logger]()))
}

func (p *DatabaseProvider) Register(reg *registry.Registry) error {
	return Singleton[*UserService](reg, NewUserService)
}

func TestNewWithProviders_Basic(t *testing.T) {
	provider := &BasicProvider{}

	container, err := NewWithProviders([]ServiceProvider{provider})
	require.NoError(t, err)

	assert.True(t, provider.registerCalled)
	_, ok := Resolve[Logger](container)
	assert.True(t, ok)
}

func TestNewWithProviders_Bootable(t *testing.T) {
	provider := &BootableTestProvider{}

	container, err := NewWithProviders([]ServiceProvider{provider})
	require.NoError(t, err)

	assert.True(t, provider.registerCalled)
	assert.True(t, provider.bootCalled)
	assert.Same(t, MustResolve[Database](container), provider.db)
}

func TestNewWithProviders_Errors(t *testing.T) {
	tests := []struct {
		name      string
		providers []ServiceProvider
		contains  string
	}{
		{"nil provider", []ServiceProvider{nil}, "provider cannot be nil"},
		{"failing registration", []ServiceProvider{&FailingProvider{}}, "registration failed"},
		{"failing boot", []ServiceProvider{&FailingBootProvider{}}, "boot failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container, err := NewWithProviders(tt.providers)
			require.Error(t, err)
			assert.Nil(t, container)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestNewWithProviders_DuplicateTypeSkipped(t *testing.T) {
	first := &BasicProvider{}
	second := &BasicProvider{}

	_, err := NewWithProviders([]ServiceProvider{first, second})
	require.NoError(t, err)

	assert.True(t, first.registerCalled)
	assert.False(t, second.registerCalled)
}

func TestNewWithProviders_Deferred(t *testing.T) {
	accepted := &DeferredTestProvider{shouldRegister: true}
	_, err := NewWithProviders([]ServiceProvider{accepted})
	require.NoError(t, err)
	assert.True(t, accepted.registerCalled)

	declined := &DeferredTestProvider{shouldRegister: false}
	_, err = NewWithProviders([]ServiceProvider{declined})
	require.NoError(t, err)
	assert.False(t, declined.registerCalled)
}

func TestNewWithProviders_DeferredSeesEarlierRegistrations(t *testing.T) {
	container, err := NewWithProviders([]ServiceProvider{&DatabaseProvider{}})
	require.NoError(t, err)
	_, ok := Resolve[*UserService](container)
	assert.False(t, ok)

	container, err = NewWithProviders([]ServiceProvider{
		&BasicProvider{},
		&BootableTestProvider{},
		&DatabaseProvider{},
	}, WithDebug())
	require.NoError(t, err)

	svc, ok := Resolve[*UserService](container)
	require.True(t, ok)
	assert.Same(t, MustResolve[Logger](container), svc.Logger)
}
