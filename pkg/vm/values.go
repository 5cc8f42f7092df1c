package vm

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// normalize converts host numeric types to float64 so that scripts only
// ever see one number type.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case float32:
		return float64(n)
	case []float64:
		arr := make([]any, len(n))
		for i, f := range n {
			arr[i] = f
		}
		return arr
	case []string:
		arr := make([]any, len(n))
		for i, s := range n {
			arr[i] = s
		}
		return arr
	}
	return v
}

// ToNumber returns v as a float64 when v is a number.
func ToNumber(v any) (float64, bool) {
	switch n := normalize(v).(type) {
	case float64:
		return n, true
	}
	return 0, false
}

// ToString formats a value the way print and string concatenation show it.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case float64:
		return formatNumber(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(val))
		for i, el := range val {
			parts[i] = ToString(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if n, ok := ToNumber(v); ok {
		return formatNumber(n)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case math.Abs(f) >= 1e21:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToBool converts a value to its truth value.
// 0, "", false, nil and empty arrays are false.
func ToBool(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	}
	if n, ok := ToNumber(v); ok {
		return n != 0
	}
	return true
}

// TypeName returns the script-facing name of a value's type.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case float64, int, int64, float32:
		return "number"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// valuesEqual implements == for script values.
func valuesEqual(a, b any) bool {
	switch l := a.(type) {
	case nil:
		return b == nil
	case float64:
		r, ok := b.(float64)
		return ok && l == r
	case string:
		r, ok := b.(string)
		return ok && l == r
	case bool:
		r, ok := b.(bool)
		return ok && l == r
	case []any:
		r, ok := b.([]any)
		if !ok || len(l) != len(r) {
			return false
		}
		for i := range l {
			if !valuesEqual(l[i], r[i]) {
				return false
			}
		}
		return true
	}
	if b == nil || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
