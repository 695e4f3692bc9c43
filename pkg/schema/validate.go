package schema

import "sort"

// Field describes one settings key.
type Field struct {
	Type     Type
	Required bool
}

// Required marks a key that must be present.
func Required(t Type) Field { return Field{Type: t, Required: true} }

// Optional marks a key that may be omitted.
func Optional(t Type) Field { return Field{Type: t} }

// Schema maps settings keys to their fields.
type Schema map[string]Field

// Validate checks settings against the schema.
// Missing required keys, unknown keys and type mismatches are all reported at once.
// A nil schema accepts any settings.
func Validate(s Schema, settings map[string]any) error {
	if s == nil {
		return nil
	}

	var errs []error

	for _, key := range sortedKeys(s) {
		field := s[key]
		value, ok := settings[key]
		if !ok {
			if field.Required {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := field.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}

	unknown := make([]string, 0)
	for key := range settings {
		if _, ok := s[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs = append(errs, &ValidationError{Key: key, Reason: "not defined in schema"})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
