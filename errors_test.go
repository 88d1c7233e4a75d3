package nasc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	loggerType := reflect.TypeFor[Logger]()
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", &BindingNotFoundError{Type: loggerType}, "binding not found for type nasc.Logger"},
		{"named not found", &BindingNotFoundError{Type: loggerType, Name: "file"}, "named binding 'file' not found for type nasc.Logger"},
		{"resolution", &ResolutionError{Type: loggerType, Name: "file", Context: "implementation *nasc.FileLogger", Cause: cause},
			"failed to resolve nasc.Logger (name=file): implementation *nasc.FileLogger: boom"},
		{"resolution without type", &ResolutionError{}, "failed to resolve unknown"},
		{"cycle", &CircularDependencyError{Path: []string{"*a.A", "*a.B", "*a.A"}}, "circular dependency detected: *a.A -> *a.B -> *a.A"},
		{"empty cycle", &CircularDependencyError{}, "circular dependency detected"},
		{"missing", &MissingDependencyError{Type: loggerType, Index: 1}, "parameter 1: no instance of nasc.Logger"},
		{"missing named", &MissingDependencyError{Type: loggerType, Name: "file"}, "parameter 0: no instance of nasc.Logger named 'file'"},
		{"panic", &ConstructorPanicError{Value: "oops"}, "constructor panicked: oops"},
		{"unassignable", &UnassignableResultError{Result: reflect.TypeFor[*MockDB](), Target: loggerType},
			"constructed *nasc.MockDB is not assignable to nasc.Logger"},
		{"invalid binding", &InvalidBindingError{Reason: "nope"}, "invalid binding: nope"},
		{"already exists", &BindingAlreadyExistsError{Type: loggerType, Name: "file"}, "named binding 'file' for type nasc.Logger already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")

	assert.ErrorIs(t, &ResolutionError{Cause: cause}, cause)
	assert.ErrorIs(t, &ConstructorPanicError{Value: cause}, cause)
	assert.Nil(t, (&ConstructorPanicError{Value: 42}).Unwrap())
}
