package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmkro/check-open-files/pkg/snapshot"
)

var (
	// ErrMalformedFilter means the filter text is not "key:value".
	ErrMalformedFilter = errors.New("malformed filter")
	// ErrUnknownKey means the key is not a registered field.
	ErrUnknownKey = errors.New("unknown filter key")
	// ErrInvalidValue means the value is outside the field's
	// accepted-value enumeration.
	ErrInvalidValue = errors.New("invalid filter value")
)

// Expression is a validated key:value predicate.
type Expression struct {
	Field Field
	Value string
}

// Parse validates raw filter text against the registry. Empty text is
// vacuously valid and yields a nil expression (count everything).
// Splits on the first ":" so values may themselves contain colons.
func Parse(raw string, reg Registry) (*Expression, error) {
	if raw == "" {
		return nil, nil
	}

	key, value, found := strings.Cut(raw, ":")
	if !found || key == "" || value == "" {
		return nil, fmt.Errorf("%w: %q is not key:value", ErrMalformedFilter, raw)
	}

	field, ok := reg.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q; available fields:\n%s", ErrUnknownKey, key, reg.Describe())
	}

	if field.Values != nil {
		if _, ok := field.Values[value]; !ok {
			return nil, fmt.Errorf("%w: %q for field %q; accepted values: %s",
				ErrInvalidValue, value, key, strings.Join(field.AcceptedValues(), ", "))
		}
	}

	return &Expression{Field: field, Value: value}, nil
}

// Match returns the records the expression selects. Matching is exact,
// case-sensitive string equality on the field's source column. A nil
// expression selects every record.
func Match(records []snapshot.Record, expr *Expression) []snapshot.Record {
	if expr == nil {
		return records
	}
	var matched []snapshot.Record
	for _, rec := range records {
		if rec[expr.Field.Column] == expr.Value {
			matched = append(matched, rec)
		}
	}
	return matched
}

// Count returns how many records match the expression.
func Count(records []snapshot.Record, expr *Expression) int {
	return len(Match(records, expr))
}
