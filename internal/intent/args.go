package intent

import (
	"fmt"
	"time"
)

// Param extraction helpers. Intent params arrive as JSON-decoded
// map[string]interface{} values, so numbers are float64 and objects are
// map[string]interface{} regardless of what the caller intended.

func getString(m map[string]interface{}, key, def string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getBool(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	v, _ := m[key].(map[string]interface{})
	return v
}

// getNumber returns the value as float64 and whether a numeric value was
// present. Both float64 (JSON) and int (in-process callers) are accepted.
func getNumber(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func getInt(m map[string]interface{}, key string, def int64) int64 {
	if v, ok := getNumber(m, key); ok {
		return int64(v)
	}
	return def
}

// toStringSlice converts a JSON array value into []string, skipping
// non-string members. Returns nil for absent or non-array values.
func toStringSlice(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		if s, ok := v.([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// dateFormats accepted for caller-supplied dates, tried in order
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// parseDate parses a caller-supplied date value. time.Time passes through
// for in-process callers; strings are tried against the accepted formats.
func parseDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, d); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", d)
	}
	return time.Time{}, fmt.Errorf("date must be a string, got %T", v)
}
