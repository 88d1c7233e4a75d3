package registry

import (
	"reflect"
	"strings"
)

// TagKey is the struct tag read by struct initializers.
const TagKey = "inject"

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip     bool   // Pass the zero value, never resolve
	optional bool   // Absent dependency is acceptable
	name     string // Named binding to use
}

// parseTag parses an inject tag.
// Supported formats:
//   - `inject:""` - basic injection
//   - `inject:"-"` - never injected, zero value is used
//   - `inject:"optional"` - optional injection
//   - `inject:"name=foo"` - named binding
//   - `inject:"optional,name=foo"` - combined options
func parseTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "" {
		return opts
	}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)

		if part == "optional" {
			opts.optional = true
		} else if strings.HasPrefix(part, "name=") {
			opts.name = strings.TrimPrefix(part, "name=")
		}
	}

	return opts
}

func (o tagOptions) param(t reflect.Type) Param {
	return Param{Type: t, Name: o.name, Optional: o.optional, Skip: o.skip}
}
