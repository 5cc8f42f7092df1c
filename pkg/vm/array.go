package vm

import (
	"fmt"
	"math"
)

// Arrays are plain []any values. Element writes are visible through every
// variable that holds the same array until a write grows it.

// elementIndex resolves an index value against an array of length n.
// Negative indices count from the end.
func elementIndex(v any, n int) (int, error) {
	f, ok := ToNumber(v)
	if !ok || f != math.Trunc(f) {
		return 0, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("array index must be an integer, got %s", ToString(v)))
	}
	i := int(f)
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0, NewIndexOutOfRangeError(int(f), n)
	}
	return i, nil
}

// setElement stores value at index, growing the array with zeros as needed.
// It returns the array to store back into the variable.
func setElement(arr []any, index int, value any) []any {
	if index >= len(arr) {
		grown := make([]any, index+1)
		copy(grown, arr)
		for i := len(arr); i < len(grown); i++ {
			grown[i] = 0.0
		}
		arr = grown
	}
	arr[index] = value
	return arr
}

// getElement reads an element from an array or a character from a string.
func getElement(container any, index any) (any, error) {
	switch c := container.(type) {
	case []any:
		i, err := elementIndex(index, len(c))
		if err != nil {
			return nil, err
		}
		if i >= len(c) {
			return nil, NewIndexOutOfRangeError(i, len(c))
		}
		return c[i], nil
	case string:
		runes := []rune(c)
		i, err := elementIndex(index, len(runes))
		if err != nil {
			return nil, err
		}
		if i >= len(runes) {
			return nil, NewIndexOutOfRangeError(i, len(runes))
		}
		return string(runes[i]), nil
	}
	return nil, NewRuntimeError(ErrorInvalidOperation, fmt.Sprintf("cannot index a %s", TypeName(container)))
}

// concatArrays returns a new array holding a then b.
func concatArrays(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
