package adapter

import (
	"encoding/json"
	"strconv"
	"strings"
)

// fields is a decoded JSON object read through ordered alias lists: every
// accessor takes candidate keys in priority order and returns the first
// non-empty value, or the zero value when none is present.
type fields map[string]any

func asFields(v any) fields {
	m, _ := v.(map[string]any)
	return fields(m)
}

// lookup returns the first present, non-empty value among keys.
func (f fields) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		v, ok := f[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
		case []any:
			if len(t) == 0 {
				continue
			}
		case map[string]any:
			if len(t) == 0 {
				continue
			}
		case bool:
			if !t {
				continue
			}
		}
		return v, true
	}
	return nil, false
}

// str returns the first alias that renders as non-empty text.
func (f fields) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := f.lookup(k); ok {
			if s := textOf(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// obj returns the first alias holding a JSON object.
func (f fields) obj(keys ...string) fields {
	for _, k := range keys {
		if m, ok := f[k].(map[string]any); ok {
			return fields(m)
		}
	}
	return nil
}

// list returns the first alias holding a non-empty JSON array.
func (f fields) list(keys ...string) []any {
	for _, k := range keys {
		if l, ok := f[k].([]any); ok && len(l) > 0 {
			return l
		}
	}
	return nil
}

// textOf renders scalars, joins arrays and names objects.
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := textOf(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return fields(t).str("name", "descriptor", "text", "city", "value")
	}
	return ""
}

// objects returns the JSON objects contained in a decoded array.
func objects(v any) []fields {
	l, _ := v.([]any)
	out := make([]fields, 0, len(l))
	for _, e := range l {
		if m, ok := e.(map[string]any); ok {
			out = append(out, fields(m))
		}
	}
	return out
}
