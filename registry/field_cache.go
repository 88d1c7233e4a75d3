package registry

import (
	"reflect"
	"sync"
)

// fieldCache caches the injectable fields of struct types so repeated
// initializer registrations of the same type skip the field scan.
type fieldCache struct {
	mu     sync.RWMutex
	fields map[reflect.Type][]fieldInfo
}

// fieldInfo stores metadata about an injectable struct field.
type fieldInfo struct {
	index []int
	name  string
	typ   reflect.Type
	opts  tagOptions
}

func newFieldCache() *fieldCache {
	return &fieldCache{
		fields: make(map[reflect.Type][]fieldInfo),
	}
}

// defaultFields backs NewImplementation, which has no registry at hand.
var defaultFields = newFieldCache()

// get retrieves or computes the injectable fields of a struct type.
// Only exported fields carrying an inject tag are returned.
func (fc *fieldCache) get(typ reflect.Type) []fieldInfo {
	fc.mu.RLock()
	fields, exists := fc.fields[typ]
	fc.mu.RUnlock()

	if exists {
		return fields
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Double-check after acquiring write lock
	if fields, exists = fc.fields[typ]; exists {
		return fields
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tag, hasTag := field.Tag.Lookup(TagKey)
		if !hasTag || !field.IsExported() {
			continue
		}

		fields = append(fields, fieldInfo{
			index: field.Index,
			name:  field.Name,
			typ:   field.Type,
			opts:  parseTag(tag),
		})
	}

	fc.fields[typ] = fields
	return fields
}

// Field is an injectable struct field.
type Field struct {
	Index []int
	Name  string
	Param Param
}

// InjectableFields returns the exported fields of struct type t that carry
// an inject tag, in declaration order.
func InjectableFields(t reflect.Type) []Field {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	cached := defaultFields.get(t)
	fields := make([]Field, len(cached))
	for i, f := range cached {
		fields[i] = Field{Index: f.index, Name: f.name, Param: f.opts.param(f.typ)}
	}
	return fields
}
