package nasc

import (
	"fmt"
	"reflect"

	"github.com/toutaio/toutago-nasc-resolver/registry"
)

// AutoWire fills the inject-tagged exported fields of an existing struct.
// It is meant for values the engine does not construct, such as handlers
// created by a framework.
//
// Supported tag options:
//   - `inject:""` - basic injection
//   - `inject:"optional"` - left untouched when absent
//   - `inject:"name=foo"` - uses named binding
//   - `inject:"-"` - never injected
//
// Primitive and struct-valued fields are never injected either.
//
// Example:
//
//	type Handler struct {
//	    Logger  Logger `inject:""`
//	    Cache   Cache  `inject:"optional"`
//	    FileLog Logger `inject:"name=file"`
//	}
//
//	handler := &Handler{}
//	err := container.AutoWire(handler)
//
// Unlike resolution, AutoWire reports a missing required field as an error.
func (n *Nasc) AutoWire(instance interface{}) error {
	if instance == nil {
		return fmt.Errorf("cannot auto-wire nil instance")
	}

	value := reflect.ValueOf(instance)
	if value.Kind() != reflect.Ptr || value.IsNil() {
		return fmt.Errorf("AutoWire requires a non-nil pointer to struct, got %T", instance)
	}

	elem := value.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("AutoWire requires a pointer to struct, got pointer to %v", elem.Kind())
	}

	for i, field := range registry.InjectableFields(elem.Type()) {
		if field.Param.Skip || isValueShaped(field.Param.Type) {
			continue
		}

		v, ok := n.resolve(field.Param.Type, field.Param.Name, n.begin())
		if !ok || !v.Type().AssignableTo(field.Param.Type) {
			if field.Param.Optional {
				continue
			}
			return fmt.Errorf("failed to inject field %s: %w", field.Name,
				&MissingDependencyError{Type: field.Param.Type, Name: field.Param.Name, Index: i})
		}

		elem.FieldByIndex(field.Index).Set(v)
	}

	return nil
}
