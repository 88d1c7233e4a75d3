package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ErrNilResult is returned by Invoke when a constructor produced a nil value.
var ErrNilResult = errors.New("constructor returned nil")

// Param describes one constructor parameter.
type Param struct {
	// Type is the declared parameter type.
	Type reflect.Type

	// Name is the binding-name qualifier, empty for unnamed lookups.
	Name string

	// Optional marks a parameter whose absence does not fail the constructor.
	Optional bool

	// Skip marks a parameter that always receives its zero value.
	Skip bool
}

// Constructor is one way of building an implementation type.
// It is either a constructor function or a struct initializer.
type Constructor struct {
	// Params lists the parameters in declaration order.
	Params []Param

	// Out is the produced type.
	Out reflect.Type

	desc   string
	invoke func(args []reflect.Value) (reflect.Value, error)
}

// Invoke calls the constructor with already-resolved arguments, one per
// parameter. Errors returned by constructor functions are passed through.
// Panics are not recovered here.
func (c *Constructor) Invoke(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(c.Params) {
		return reflect.Value{}, fmt.Errorf("%s: expected %d arguments, got %d", c.desc, len(c.Params), len(args))
	}
	return c.invoke(args)
}

func (c *Constructor) String() string {
	return c.desc
}

// CtorSpec pairs a constructor function with per-parameter inject tags.
type CtorSpec struct {
	fn   interface{}
	tags []string
}

// Ctor qualifies the parameters of a constructor function, positionally,
// using the inject tag grammar:
//
//	registry.Ctor(NewReportService, "", "name=primary", "optional")
//
// Missing trailing tags mean plain injection.
func Ctor(fn interface{}, tags ...string) CtorSpec {
	return CtorSpec{fn: fn, tags: tags}
}

// Implementation is a concrete type bound to satisfy abstract types, along
// with the constructors able to build it. Open implementations (see Generic)
// carry no constructors of their own.
type Implementation struct {
	// Type is the produced concrete type, nil for open families.
	Type reflect.Type

	// Constructors in registration order.
	Constructors []*Constructor

	origin  string
	members map[string]*Implementation
}

// NewImplementation builds implementation metadata. Each argument is one of:
//   - a constructor function: func(deps...) T or func(deps...) (T, error)
//   - a CtorSpec created with Ctor
//   - a pointer to a struct, whose exported inject-tagged fields are injected
//     into a freshly allocated value
//
// All constructors must produce the same type.
func NewImplementation(ctors ...interface{}) (*Implementation, error) {
	if len(ctors) == 0 {
		return nil, &InvalidBindingError{Reason: "implementation needs at least one constructor"}
	}

	impl := &Implementation{}
	for i, c := range ctors {
		ctor, err := parseConstructor(c)
		if err != nil {
			return nil, &InvalidBindingError{Reason: fmt.Sprintf("constructor %d: %v", i, err)}
		}

		if impl.Type == nil {
			impl.Type = ctor.Out
		} else if impl.Type != ctor.Out {
			return nil, &InvalidBindingError{
				Reason: fmt.Sprintf("constructor %d produces %v, expected %v", i, ctor.Out, impl.Type),
			}
		}
		impl.Constructors = append(impl.Constructors, ctor)
	}

	return impl, nil
}

// MustImplementation is like NewImplementation but panics on error.
func MustImplementation(ctors ...interface{}) *Implementation {
	impl, err := NewImplementation(ctors...)
	if err != nil {
		panic(err)
	}
	return impl
}

// IsOpen reports whether the implementation is an open generic family.
func (i *Implementation) IsOpen() bool {
	return i.members != nil
}

func (i *Implementation) String() string {
	if i.IsOpen() {
		return i.origin + "[...]"
	}
	return i.Type.String()
}

func parseConstructor(c interface{}) (*Constructor, error) {
	switch v := c.(type) {
	case nil:
		return nil, fmt.Errorf("constructor cannot be nil")
	case CtorSpec:
		return parseFunc(v.fn, v.tags)
	case *CtorSpec:
		return parseFunc(v.fn, v.tags)
	}

	t := reflect.TypeOf(c)
	switch {
	case t.Kind() == reflect.Func:
		return parseFunc(c, nil)
	case t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct:
		return parseStruct(t), nil
	default:
		return nil, fmt.Errorf("expected a function or a pointer to struct, got %v", t)
	}
}

// parseFunc analyzes a constructor function and extracts metadata.
func parseFunc(fn interface{}, tags []string) (*Constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnValue.IsNil() {
		return nil, fmt.Errorf("constructor cannot be nil")
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("variadic constructors are not supported")
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, fmt.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}

	out := fnType.Out(0)
	if out == errorType {
		return nil, fmt.Errorf("constructor's first return value cannot be error")
	}

	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	if len(tags) > fnType.NumIn() {
		return nil, fmt.Errorf("%d parameter tags given for %d parameters", len(tags), fnType.NumIn())
	}

	params := make([]Param, fnType.NumIn())
	for i := range params {
		tag := ""
		if i < len(tags) {
			tag = tags[i]
		}
		params[i] = parseTag(tag).param(fnType.In(i))
	}

	return &Constructor{
		Params: params,
		Out:    out,
		desc:   describeFunc(fnType),
		invoke: func(args []reflect.Value) (reflect.Value, error) {
			results := fnValue.Call(args)

			if returnsError && !results[1].IsNil() {
				return reflect.Value{}, results[1].Interface().(error)
			}
			if isNil(results[0]) {
				return reflect.Value{}, ErrNilResult
			}
			return results[0], nil
		},
	}, nil
}

// parseStruct builds the initializer of a pointer-to-struct type.
func parseStruct(t reflect.Type) *Constructor {
	fields := defaultFields.get(t.Elem())

	params := make([]Param, len(fields))
	for i, f := range fields {
		params[i] = f.opts.param(f.typ)
	}

	return &Constructor{
		Params: params,
		Out:    t,
		desc:   "&" + t.Elem().String() + "{}",
		invoke: func(args []reflect.Value) (reflect.Value, error) {
			v := reflect.New(t.Elem())
			for i, f := range fields {
				if args[i].IsValid() {
					v.Elem().FieldByIndex(f.index).Set(args[i])
				}
			}
			return v, nil
		},
	}
}

func describeFunc(t reflect.Type) string {
	in := make([]string, t.NumIn())
	for i := range in {
		in[i] = t.In(i).String()
	}
	return fmt.Sprintf("func(%s) %v", strings.Join(in, ", "), t.Out(0))
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return !v.IsValid()
}
