package nasc

import "fmt"

// firstSuccess runs attempts in order and returns the result of the first
// one that neither fails nor panics. Failures are collected in order and
// never propagated; when every attempt fails the zero value is returned
// together with all collected errors.
func firstSuccess[T any](attempts []func() (T, error)) (T, []error) {
	var errs []error
	for i, try := range attempts {
		v, err := safely(try)
		if err == nil {
			return v, errs
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", i, err))
	}

	var zero T
	return zero, errs
}

// safely converts a panic raised by try into a ConstructorPanicError.
func safely[T any](try func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, &ConstructorPanicError{Value: r}
		}
	}()
	return try()
}
