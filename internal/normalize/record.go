package normalize

import "strings"

// Record is one loosely-typed catalog entry as decoded from JSON or read from a row.
type Record map[string]any

// wrapperKeys name the nested objects some sources put the real payload under.
var wrapperKeys = []string{"manga", "item", "attributes", "data"}

// unwrap flattens one level of wrapping. Inner keys win; outer keys stay visible
// so ids that live beside the wrapper are still found.
func unwrap(rec Record) Record {
	for _, k := range wrapperKeys {
		inner, ok := asMap(rec[k])
		if !ok {
			continue
		}
		out := make(Record, len(rec)+len(inner))
		for key, v := range rec {
			if key != k {
				out[key] = v
			}
		}
		for key, v := range inner {
			out[key] = v
		}
		return out
	}
	return rec
}

// FirstNonEmpty returns the value of the first path that resolves to something usable:
// not nil and, for strings, not blank after trimming. Paths are dotted ("cover.url").
func FirstNonEmpty(rec Record, paths ...string) (any, bool) {
	for _, p := range paths {
		v, ok := lookup(rec, p)
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func lookup(rec Record, path string) (any, bool) {
	var cur any = map[string]any(rec)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, m != nil
	case Record:
		return m, m != nil
	}
	return nil, false
}
