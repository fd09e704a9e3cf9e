package plan

import (
	"fmt"
	"math"
	"reflect"
)

// integer converts a decoded numeric value to int64.
// Floats are accepted only when they hold an integral value.
func integer(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return clampUint(uint64(v))
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return clampUint(v)
	case float32:
		return integralFloat(float64(v))
	case float64:
		return integralFloat(v)
	default:
		return 0, false
	}
}

func clampUint(v uint64) (int64, bool) {
	if v > math.MaxInt64 {
		return math.MaxInt64, true
	}

	return int64(v), true
}

func integralFloat(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}

	if v >= math.MaxInt64 {
		return math.MaxInt64, true
	}

	if v <= math.MinInt64 {
		return math.MinInt64, true
	}

	return int64(v), true
}

// mapping returns value as a string-keyed map.
// Decoders hand back map[string]any for JSON and most YAML, map[any]any for YAML with non-string keys.
func mapping(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))

		for key, val := range v {
			s, ok := key.(string)
			if !ok {
				return nil, false
			}

			out[s] = val
		}

		return out, true
	default:
		return nil, false
	}
}

// list returns value as a slice of untyped elements.
func list(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}

		return out, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case map[any]any:
		if m, ok := mapping(v); ok {
			return cloneMap(m)
		}

		out := make(map[any]any, len(v))
		for k, val := range v {
			out[k] = cloneValue(val)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = cloneValue(val)
		}

		return out
	default:
		return v
	}
}

func describe(value any) string {
	if value == nil {
		return "null"
	}

	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	}

	if _, ok := integer(value); ok {
		return "integer"
	}

	if _, ok := mapping(value); ok {
		return "mapping"
	}

	if _, ok := list(value); ok {
		return "list"
	}

	return reflect.TypeOf(value).String()
}

func field(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

func index(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}
