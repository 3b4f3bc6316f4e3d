package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Record is a raw key-value document as read from storage or a request body.
// Accessors never fail; a missing or mistyped field yields the documented default.
type Record map[string]any

// AsRecord accepts a decoded JSON value and returns it as a Record.
func AsRecord(v any) (Record, error) {
	switch m := v.(type) {
	case Record:
		if m == nil {
			return nil, fmt.Errorf("%w: record is null", ErrInvalidInput)
		}
		return m, nil
	case map[string]any:
		if m == nil {
			return nil, fmt.Errorf("%w: record is null", ErrInvalidInput)
		}
		return Record(m), nil
	default:
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrInvalidInput, v)
	}
}

// String returns the field when it is a string.
func (r Record) String(key string) (string, bool) {
	s, ok := r[key].(string)
	return s, ok
}

// StringOr returns the string field or def when it is missing or not a string.
func (r Record) StringOr(key, def string) string {
	if s, ok := r.String(key); ok {
		return s
	}
	return def
}

// Category reads a categorical field: UnknownCategory when the field is missing
// or not a string, NoCategory when it is null or empty.
func (r Record) Category(key string) string {
	v, ok := r[key]
	if !ok {
		return UnknownCategory
	}
	switch c := v.(type) {
	case nil:
		return NoCategory
	case string:
		return c
	}
	return UnknownCategory
}

// ListLen returns the number of entries of a list field, 0 when missing or not a list.
func (r Record) ListLen(key string) int {
	switch l := r[key].(type) {
	case []any:
		return len(l)
	case []string:
		return len(l)
	default:
		return 0
	}
}

// Truthy reports whether the field is present and non-empty.
func (r Record) Truthy(key string) bool {
	return truthy(r[key])
}

// Map returns a nested object field.
func (r Record) Map(key string) (map[string]any, bool) {
	m, ok := r[key].(map[string]any)
	return m, ok && m != nil
}

// Time returns a timestamp field. It reports false when the field is missing,
// and an error when it is present but cannot be read as a time.
func (r Record) Time(key string) (time.Time, bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return time.Time{}, false, nil
	}
	t, err := ParseTime(v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", key, err)
	}
	return t, true, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime reads the timestamp shapes found in exported documents: time values,
// ISO-8601 strings, epoch milliseconds and extended-JSON {"$date": ...} wrappers.
func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", t)
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized time %q", t.String())
		}
		return time.UnixMilli(ms).UTC(), nil
	case map[string]any:
		if d, ok := t["$date"]; ok {
			return ParseTime(d)
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time value %T", v)
}

// Number returns v as a float64 when it holds a JSON number.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if n, ok := Number(v); ok {
		return n != 0
	}
	return true
}
