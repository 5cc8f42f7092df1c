// Package variable implements the sketch parameter registry.
//
// A sketch declares its tunable parameters with var(). The registry keeps the
// declarations of the current generation and consults the previous generation
// to carry values over when a declaration keeps the same shape.
package variable

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownType is returned when a declaration names a type that does not exist.
	ErrUnknownType = errors.New("unknown variable type")

	// ErrUnknownVariable is returned when Set or Press names an undeclared variable.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrTypeMismatch is returned when a value cannot be stored in a variable of the declared type.
	ErrTypeMismatch = errors.New("value does not match variable type")
)

// Type is the declared type of a sketch variable.
type Type int

const (
	Number Type = iota
	Text
	Boolean
	Button
)

var typeNames = map[Type]string{
	Number:  "NUMBER",
	Text:    "TEXT",
	Boolean: "BOOLEAN",
	Button:  "BUTTON",
}

// String returns the script-visible name of the type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType converts a script-visible type name (case-insensitive) to a Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

// Decl is a single var() declaration as written in the script.
// Value, when non-nil, replaces Default as the initial value. A carried-over
// value still wins over it.
type Decl struct {
	Name    string
	Type    Type
	Default any
	Min     float64
	Max     float64
	Value   any
}

// Variable is a resolved declaration.
type Variable struct {
	Name    string
	Type    Type
	Default any
	Min     float64
	Max     float64
	Value   any
}

// Compatible reports whether the value of old may be carried into a
// variable declared as next. The check is structural: the types must match
// and a number must still fit inside the new bounds.
func Compatible(old, next Variable) bool {
	if old.Type != next.Type {
		return false
	}
	if old.Type == Number {
		v, ok := old.Value.(float64)
		if !ok {
			return false
		}
		return v >= next.Min && v <= next.Max
	}
	return true
}

// coerce converts v into the Go representation used for type t.
// Numbers are float64, text and buttons are strings, booleans are bool.
func coerce(t Type, v any) (any, error) {
	switch t {
	case Number:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case bool:
			if n {
				return 1.0, nil
			}
			return 0.0, nil
		}
	case Text, Button:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Boolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case float64:
			return b != 0, nil
		case int:
			return b != 0, nil
		case string:
			switch strings.ToLower(b) {
			case "true", "yes", "on", "1":
				return true, nil
			case "false", "no", "off", "0", "":
				return false, nil
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return nil, fmt.Errorf("%w: %v (%T) for %s", ErrTypeMismatch, v, v, t)
}

// zero returns the default used when a declaration gives no default.
func zero(t Type) any {
	switch t {
	case Number:
		return 0.0
	case Boolean:
		return false
	default:
		return ""
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
