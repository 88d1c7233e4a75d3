package registry

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Logger interface {
	Log(msg string)
}

type ConsoleLogger struct {
	prefix string
}

func (l *ConsoleLogger) Log(string) {}

type FileLogger struct {
	path string
}

func (l *FileLogger) Log(string) {}

type Repository[T any] interface {
	Find() T
}

type SQLRepository[T any] struct{}

func (r *SQLRepository[T]) Find() T {
	var zero T
	return zero
}

type User struct{}

var loggerType = reflect.TypeFor[Logger]()

func newConsole() *ConsoleLogger { return &ConsoleLogger{} }
func newFile() *FileLogger       { return &FileLogger{} }

func TestLifetime_String(t *testing.T) {
	assert.Equal(t, "transient", Transient.String())
	assert.Equal(t, "singleton", Singleton.String())
	assert.Equal(t, "lifetime(7)", Lifetime(7).String())
}

func TestRegistry_UnnamedKeepsInsertionOrder(t *testing.T) {
	reg := New()
	console := MustImplementation(newConsole)
	file := MustImplementation(newFile)

	require.NoError(t, reg.AddTransient(loggerType, console))
	require.NoError(t, reg.AddTransient(loggerType, file))

	candidates := reg.UnnamedCandidates(Transient, TypeKey(loggerType))
	require.Len(t, candidates, 2)
	assert.Same(t, console, candidates[0])
	assert.Same(t, file, candidates[1])

	assert.Empty(t, reg.UnnamedCandidates(Singleton, TypeKey(loggerType)))
}

func TestRegistry_NamedAlsoAppendsUnnamed(t *testing.T) {
	reg := New()
	console := MustImplementation(newConsole)
	file := MustImplementation(newFile)

	require.NoError(t, reg.AddSingleton(loggerType, console))
	require.NoError(t, reg.AddNamedSingleton(loggerType, file, "audit"))

	named, ok := reg.NamedCandidate(Singleton, TypeKey(loggerType), "audit")
	require.True(t, ok)
	assert.Same(t, file, named)

	candidates := reg.UnnamedCandidates(Singleton, TypeKey(loggerType))
	assert.Equal(t, []*Implementation{console, file}, candidates)

	assert.True(t, reg.HasNamed(Singleton, TypeKey(loggerType)))
	assert.False(t, reg.HasNamed(Transient, TypeKey(loggerType)))

	_, ok = reg.NamedCandidate(Singleton, TypeKey(loggerType), "other")
	assert.False(t, ok)
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := New()
	require.NoError(t, reg.AddNamedTransient(loggerType, MustImplementation(newConsole), "main"))

	err := reg.AddNamedTransient(loggerType, MustImplementation(newFile), "main")
	var exists *BindingAlreadyExistsError
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "main", exists.Name)
	assert.Equal(t, loggerType, exists.Type)

	// The same name is free under the other lifetime.
	assert.NoError(t, reg.AddNamedSingleton(loggerType, MustImplementation(newFile), "main"))

	// The rejected binding was not appended.
	assert.Len(t, reg.UnnamedCandidates(Transient, TypeKey(loggerType)), 1)
}

func TestRegistry_InvalidBindings(t *testing.T) {
	reg := New()
	console := MustImplementation(newConsole)

	tests := []struct {
		name string
		add  func() error
	}{
		{"nil abstract", func() error { return reg.AddSingleton(nil, console) }},
		{"nil implementation", func() error { return reg.AddSingleton(loggerType, nil) }},
		{"empty singleton name", func() error { return reg.AddNamedSingleton(loggerType, console, "") }},
		{"empty transient name", func() error { return reg.AddNamedTransient(loggerType, console, "") }},
		{"not assignable", func() error {
			return reg.AddTransient(reflect.TypeFor[fmt.Stringer](), console)
		}},
		{"open implementation on closed type", func() error {
			family := MustGeneric(MustImplementation(&SQLRepository[User]{}))
			return reg.AddTransient(loggerType, family)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var invalid *InvalidBindingError
			assert.ErrorAs(t, tt.add(), &invalid)
		})
	}

	assert.False(t, reg.Has(Singleton, TypeKey(loggerType)))
	assert.False(t, reg.Has(Transient, TypeKey(loggerType)))
}

func TestRegistry_OpenBindingUsesOriginKey(t *testing.T) {
	reg := New()
	family := MustGeneric(MustImplementation(&SQLRepository[User]{}))

	require.NoError(t, reg.AddTransient(reflect.TypeFor[Repository[any]](), family))

	key, args, ok := OpenKey(reflect.TypeFor[Repository[User]]())
	require.True(t, ok)
	assert.True(t, key.IsOpen())
	assert.Contains(t, args, "User")

	assert.True(t, reg.Has(Transient, key))
	assert.False(t, reg.Has(Transient, TypeKey(reflect.TypeFor[Repository[User]]())))
	assert.Equal(t, []*Implementation{family}, reg.UnnamedCandidates(Transient, key))
}

func TestRegistry_CandidatesAreCopies(t *testing.T) {
	reg := New()
	require.NoError(t, reg.AddTransient(loggerType, MustImplementation(newConsole)))

	candidates := reg.UnnamedCandidates(Transient, TypeKey(loggerType))
	candidates[0] = nil

	assert.NotNil(t, reg.UnnamedCandidates(Transient, TypeKey(loggerType))[0])
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := New()
	key := TypeKey(loggerType)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, reg.AddNamedTransient(loggerType, MustImplementation(newConsole), fmt.Sprintf("l%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			_ = reg.UnnamedCandidates(Transient, key)
			_ = reg.Has(Transient, key)
		}()
	}
	wg.Wait()

	assert.Len(t, reg.UnnamedCandidates(Transient, key), 50)
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "registry.Logger", TypeKey(loggerType).String())
	assert.Equal(t, "<nil>", Key{}.String())

	key, _, ok := OpenKey(reflect.TypeFor[*SQLRepository[User]]())
	require.True(t, ok)
	assert.Equal(t, "*"+reflect.TypeFor[Logger]().PkgPath()+".SQLRepository[...]", key.String())
}

func TestOpenKey_NonGeneric(t *testing.T) {
	for _, typ := range []reflect.Type{
		loggerType,
		reflect.TypeFor[*ConsoleLogger](),
		reflect.TypeFor[[]Logger](),
		reflect.TypeFor[int](),
		nil,
	} {
		_, _, ok := OpenKey(typ)
		assert.False(t, ok, "%v", typ)
	}
}

func TestOpenKey_PointerStaysDistinct(t *testing.T) {
	value, argsV, ok := OpenKey(reflect.TypeFor[SQLRepository[User]]())
	require.True(t, ok)
	ptr, argsP, ok := OpenKey(reflect.TypeFor[*SQLRepository[User]]())
	require.True(t, ok)

	assert.NotEqual(t, value, ptr)
	assert.Equal(t, argsV, argsP)
}
