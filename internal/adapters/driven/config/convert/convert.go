// Package convert reads typed settings out of the untyped values a decoded
// TOML file or a test's map holds. Each function reports false when the
// value cannot be read as the requested type; callers fall back to zero.
package convert

import "time"

func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// Int accepts int, int64 (TOML) and float64 (JSON). Fractions are truncated.
func Int(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Float widens integers, so "temperature = 1" reads as 1.0.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Duration accepts a time.Duration or a string such as "45s". Bare numbers
// are rejected because their unit is ambiguous.
func Duration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		return parsed, err == nil
	}
	return 0, false
}

// StringSlice accepts []string, or []any with non-string elements dropped.
func StringSlice(v any) ([]string, bool) {
	switch items := v.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// Lookup reads key through get and converts it; a missing key or failed
// conversion yields the zero value.
func Lookup[T any](get func(string) (any, bool), key string, conv func(any) (T, bool)) T {
	var zero T
	v, ok := get(key)
	if !ok {
		return zero
	}
	if out, ok := conv(v); ok {
		return out
	}
	return zero
}
