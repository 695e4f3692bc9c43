package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type defines the contract for setting validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// StringType validates non-empty strings.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if s == "" {
		return fmt.Errorf("expected non-empty string")
	}
	return nil
}

// IntType validates integers, accepting whole floats produced by JSON decoding.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elem Type
}

func (t *SliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// MapType validates string-keyed maps of a specific value type.
// YAML decoding may produce map[string]any or map[any]any; both are accepted.
type MapType struct {
	elem Type
}

func (t *MapType) Name() string { return "{" + t.elem.Name() + "}" }

func (t *MapType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return fmt.Errorf("expected map, got %T", value)
	}
	iter := rv.MapRange()
	for iter.Next() {
		key, ok := iter.Key().Interface().(string)
		if !ok {
			return fmt.Errorf("expected string key, got %T", iter.Key().Interface())
		}
		if err := t.elem.Validate(iter.Value().Interface()); err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
	}
	return nil
}

// EnumType accepts one of a fixed set of strings.
type EnumType struct {
	values []string
}

func (t *EnumType) Name() string { return strings.Join(t.values, "|") }

func (t *EnumType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	for _, v := range t.values {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("expected one of %s, got %q", t.Name(), s)
}

// String creates a non-empty string validator.
func String() Type { return &StringType{} }

// Int creates an integer validator.
func Int() Type { return &IntType{} }

// Bool creates a boolean validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice validator for elements of the given type.
func Slice(elem Type) Type { return &SliceType{elem: elem} }

// Map creates a validator for string-keyed maps of the given value type.
func Map(elem Type) Type { return &MapType{elem: elem} }

// OneOf creates an enumeration validator.
func OneOf(values ...string) Type { return &EnumType{values: values} }
