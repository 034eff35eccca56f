// Package patch provides optional fields for partial updates. A Field tells
// apart a key that was omitted, a key sent as null, and a key with a value.
package patch

import (
	"encoding/json"
	"strings"
)

// Field is an optional JSON field.
type Field[T any] struct {
	Set   bool // key present in the payload
	Null  bool // key present with a null value
	Value T
}

// Of returns a Field holding v.
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Null returns a Field explicitly set to null.
func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

// HasValue reports whether the field was sent with a non-null value.
func (f Field[T]) HasValue() bool { return f.Set && !f.Null }

// UnmarshalJSON is only invoked when the key is present, null included.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// MarshalJSON writes the value, or null when unset or null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// NonEmpty reports whether a string field carries a value other than blanks.
func NonEmpty(f Field[string]) bool { return f.HasValue() && strings.TrimSpace(f.Value) != "" }
