package llm

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number reads a numeric field from a decoded JSON object. Numeric strings are accepted.
func Number(obj map[string]any, key string) (float64, bool) {
	switch v := obj[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// Int reads a numeric field truncated to an int, or def when absent or not numeric.
func Int(obj map[string]any, key string, def int) int {
	f, ok := Number(obj, key)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return int(f)
}

// String reads a string field, trimmed; non-strings yield "".
func String(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// Strings reads the non-empty string items of an array field.
// Non-array values and non-string items are ignored.
func Strings(obj map[string]any, key string) []string {
	items, _ := obj[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
