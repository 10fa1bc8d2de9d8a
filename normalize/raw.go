package normalize

import (
	"encoding/json"
	"fmt"
)

// Accessors for untyped provider records. Every accessor tolerates absent
// keys, nil values, and wrong shapes, returning zero values instead of
// panicking: normalization is fail-open by contract.

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return ""
	}
}

func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func sliceOf(v any) []any {
	s, _ := v.([]any)
	return s
}

func boolOf(v any) bool {
	b, _ := v.(bool)
	return b
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// putExtra sets key only when the value carries information. Keeping absent
// fields out of extra keeps metadata comparison stable across providers that
// omit versus null a field.
func putExtra(extra map[string]any, key string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case string:
		if t == "" {
			return
		}
	case []any:
		if len(t) == 0 {
			return
		}
	case map[string]any:
		if len(t) == 0 {
			return
		}
	}
	extra[key] = v
}
