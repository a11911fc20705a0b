package filter

import (
	"sort"
	"strings"
)

// Field is one filterable dimension of the open-file listing.
type Field struct {
	Name   string
	Column string
	// Values enumerates the legal filter values for this field, keyed
	// by value with a short description. Nil means unrestricted.
	Values map[string]string
}

// Registry is the closed set of filterable fields, fixed at start.
type Registry struct {
	fields map[string]Field
}

// NewRegistry builds a registry from the given fields.
func NewRegistry(fields ...Field) Registry {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return Registry{fields: m}
}

// Default returns the registry matching the fstat-style snapshot
// columns.
func Default() Registry {
	return NewRegistry(
		Field{Name: "user", Column: "USER"},
		Field{Name: "process", Column: "CMD"},
		Field{Name: "descriptor", Column: "FD"},
		Field{Name: "mount", Column: "MOUNT"},
		Field{Name: "mode", Column: "R/W", Values: map[string]string{
			"r":  "open read-only",
			"w":  "open write-only",
			"rw": "open read-write",
		}},
	)
}

// Lookup resolves a field by name.
func (r Registry) Lookup(name string) (Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Names returns all field names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe renders the available fields for help text and error
// messages, one field per line, accepted values in sorted order.
func (r Registry) Describe() string {
	var b strings.Builder
	for i, name := range r.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		f := r.fields[name]
		b.WriteString(name)
		if len(f.Values) > 0 {
			b.WriteString(" (one of: ")
			b.WriteString(strings.Join(f.AcceptedValues(), ", "))
			b.WriteString(")")
		}
	}
	return b.String()
}

// AcceptedValues returns the field's legal values in sorted order, or
// nil when unrestricted.
func (f Field) AcceptedValues() []string {
	if len(f.Values) == 0 {
		return nil
	}
	values := make([]string, 0, len(f.Values))
	for v := range f.Values {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
