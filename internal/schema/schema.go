package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNull    = "null"
)

// Schema is the subset of JSON schema used to describe remote field limits.
type Schema struct {
	Type      []string `yaml:"type,omitempty" json:"type,omitempty"`
	Enum      []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	MinLength int      `yaml:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength int      `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	AnyOf     []Schema `yaml:"anyOf,omitempty" json:"anyOf,omitempty"`
}

// Error reports why a value did not fit a schema.
type Error struct {
	Value  any
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("value %s %s", describe(e.Value), e.Reason)
}

// Sanitize coerces value into the schema. Strings longer than MaxLength are
// clamped to MaxLength runes ending in an ellipsis.
func Sanitize(value any, s Schema) (any, error) {
	return apply(value, s, true)
}

// Validate checks value against the schema without clamping.
func Validate(value any, s Schema) error {
	_, err := apply(value, s, false)
	return err
}

func apply(value any, s Schema, clamp bool) (any, error) {
	if len(s.AnyOf) > 0 {
		for _, alternative := range s.AnyOf {
			if result, err := apply(value, alternative, clamp); err == nil {
				return result, nil
			}
		}
		return nil, &Error{Value: value, Reason: "does not match any of the allowed schemas"}
	}

	if len(s.Type) > 0 && !hasType(value, s.Type) {
		converted, ok := coerce(value, s.Type)
		if !ok {
			return nil, &Error{Value: value, Reason: "does not match any of the allowed types"}
		}
		value = converted
	}

	text, ok := value.(string)
	if !ok {
		return value, nil
	}

	if len(s.Enum) > 0 && !contains(s.Enum, text) {
		return nil, &Error{Value: value, Reason: "is not in the list of allowed values"}
	}
	length := utf8.RuneCountInString(text)
	if s.MinLength > 0 && length < s.MinLength {
		return nil, &Error{Value: value, Reason: fmt.Sprintf("is shorter than %d characters", s.MinLength)}
	}
	if s.MaxLength > 0 && length > s.MaxLength {
		if !clamp {
			return nil, &Error{Value: value, Reason: fmt.Sprintf("is longer than %d characters", s.MaxLength)}
		}
		runes := []rune(text)
		return string(runes[:s.MaxLength-1]) + "…", nil
	}
	return text, nil
}

func hasType(value any, types []string) bool {
	for _, name := range types {
		switch name {
		case TypeString:
			if _, ok := value.(string); ok {
				return true
			}
		case TypeInteger:
			if _, ok := value.(int); ok {
				return true
			}
		case TypeNull:
			if value == nil {
				return true
			}
		}
	}
	return false
}

// coerce tries each listed type in order and returns the first successful
// conversion.
func coerce(value any, types []string) (any, bool) {
	for _, name := range types {
		switch name {
		case TypeString:
			if value == nil {
				continue
			}
			return fmt.Sprint(value), true
		case TypeInteger:
			if converted, ok := toInt(value); ok {
				return converted, true
			}
		}
	}
	return nil, false
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}

func describe(value any) string {
	if value == nil {
		return "null"
	}
	return fmt.Sprintf("%q", fmt.Sprint(value))
}
