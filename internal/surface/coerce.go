package surface

import (
	"fmt"
	"sort"
	"strings"
)

// The helpers below turn loosely-typed decoded content into typed fields.
// Each falls back to a fixed default on a type mismatch instead of failing:
//
//	asString      non-string        -> ""
//	asBool        non-bool          -> (false, false)
//	asMap         non-object        -> nil
//	asStringList  non-array         -> (nil, false); non-string elements dropped
//	splitList     string            -> comma-split, trimmed, empties dropped
//	              array             -> string elements trimmed
//	              anything else     -> nil
//	asStringMap   non-object        -> nil; scalar values formatted, others dropped
//	asInt         non-number        -> (0, false)

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asStringList(v any) ([]string, bool) {
	raw, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

func splitList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []any:
		for _, elem := range t {
			if s, ok := elem.(string); ok {
				parts = append(parts, s)
			}
		}
	default:
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func asStringMap(v any) map[string]string {
	m := asMap(v)
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		switch t := val.(type) {
		case string:
			out[k] = t
		case bool, float64, int, int64:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	default:
		return 0, false
	}
}

// sortedKeys returns the keys of m in lexical order so accumulated entries
// come out deterministically.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
