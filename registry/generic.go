package registry

import (
	"fmt"
	"reflect"
	"strings"
)

// Key identifies an abstract type inside the registry tables. A closed key
// holds the exact type; an open key holds the origin of a generic type
// (package path and name without type arguments), e.g.
// "example.com/app.Repository" for Repository[User].
type Key struct {
	typ    reflect.Type
	origin string
}

// TypeKey returns the closed key of t.
func TypeKey(t reflect.Type) Key {
	return Key{typ: t}
}

// OpenKey returns the open key of an instantiated generic type together with
// the textual type-argument list of t. ok is false when t is not an
// instantiation of a generic type.
func OpenKey(t reflect.Type) (key Key, args string, ok bool) {
	origin, args, ok := splitGeneric(t)
	if !ok {
		return Key{}, "", false
	}
	return Key{origin: origin}, args, true
}

// IsOpen reports whether the key names a generic origin.
func (k Key) IsOpen() bool {
	return k.typ == nil && k.origin != ""
}

// Type returns the closed type, nil for open keys.
func (k Key) Type() reflect.Type {
	return k.typ
}

func (k Key) String() string {
	if k.typ != nil {
		return k.typ.String()
	}
	if k.origin != "" {
		return k.origin + "[...]"
	}
	return "<nil>"
}

// splitGeneric splits an instantiated generic type into its origin and
// type-argument list. Pointer indirections are kept in the origin so that
// Box[T] and *Box[T] stay distinct.
func splitGeneric(t reflect.Type) (origin, args string, ok bool) {
	if t == nil {
		return "", "", false
	}

	stars := 0
	for t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
		stars++
	}

	name := t.Name()
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", "", false
	}

	origin = strings.Repeat("*", stars) + t.PkgPath() + "." + name[:open]
	return origin, name[open+1 : len(name)-1], true
}

// Generic builds an open implementation family out of instantiations of one
// generic implementation type, e.g.
//
//	registry.Generic(
//	    registry.MustImplementation(NewSQLRepository[User]),
//	    registry.MustImplementation(NewSQLRepository[Order]),
//	)
//
// When a request for an open binding arrives, the member whose type
// arguments equal the request's is constructed.
func Generic(members ...*Implementation) (*Implementation, error) {
	if len(members) == 0 {
		return nil, &InvalidBindingError{Reason: "generic family needs at least one instantiation"}
	}

	family := &Implementation{
		members: make(map[string]*Implementation, len(members)),
	}

	for _, m := range members {
		if m == nil {
			return nil, &InvalidBindingError{Reason: "generic instantiation cannot be nil"}
		}
		if m.IsOpen() {
			return nil, &InvalidBindingError{Reason: "generic families cannot be nested"}
		}

		origin, args, ok := splitGeneric(m.Type)
		if !ok {
			return nil, &InvalidBindingError{
				Reason: fmt.Sprintf("%v is not an instantiation of a generic type", m.Type),
			}
		}

		if family.origin == "" {
			family.origin = origin
		} else if family.origin != origin {
			return nil, &InvalidBindingError{
				Reason: fmt.Sprintf("generic family mixes %s and %s", family.origin, origin),
			}
		}

		if _, exists := family.members[args]; exists {
			return nil, &InvalidBindingError{
				Reason: fmt.Sprintf("duplicate instantiation %v in generic family", m.Type),
			}
		}
		family.members[args] = m
	}

	return family, nil
}

// MustGeneric is like Generic but panics on error.
func MustGeneric(members ...*Implementation) *Implementation {
	family, err := Generic(members...)
	if err != nil {
		panic(err)
	}
	return family
}

// Instantiate substitutes the type arguments of a request into an open
// family and returns the matching instantiation. Closed implementations
// return themselves.
func (i *Implementation) Instantiate(args string) (*Implementation, bool) {
	if !i.IsOpen() {
		return i, true
	}
	m, ok := i.members[args]
	return m, ok
}
