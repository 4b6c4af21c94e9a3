package normalize

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// nameKeys are tried, in order, when a scalar is expected but an object arrives
// (e.g. tags shaped as {"name": "Magic"} or {"name": {"en": "Magic"}}).
var nameKeys = []string{"name", "title", "label", "value"}

func toString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return toString(float64(x))
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case bool:
		return strconv.FormatBool(x), true
	case []any:
		parts := toStrings(x)
		return strings.Join(parts, ", "), len(parts) > 0
	case []string:
		parts := toStrings(x)
		return strings.Join(parts, ", "), len(parts) > 0
	}
	if m, ok := asMap(v); ok {
		return pickName(m)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return toString(s.String())
	}
	return "", false
}

// pickName resolves an object to a display string: a known name key first,
// then an English entry of a language map, then the first usable entry by key order.
func pickName(m map[string]any) (string, bool) {
	for _, k := range nameKeys {
		if inner, ok := m[k]; ok {
			if s, ok := toString(inner); ok {
				return s, true
			}
		}
	}
	if s, ok := toString(m["en"]); ok {
		return s, true
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := toString(m[k]); ok {
			return s, true
		}
	}
	return "", false
}

// toStrings accepts a native slice, a JSON array embedded in a string, or a
// comma separated string. Blank elements are dropped.
func toStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(x))
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(x))
		for _, el := range x {
			if s, ok := toString(el); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(x)
		if strings.HasPrefix(s, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(s), &arr); err == nil {
				return toStrings(arr)
			}
		}
		return splitList(s)
	}
	if s, ok := toString(v); ok {
		return []string{s}
	}
	return []string{}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		if st, ok := v.(fmt.Stringer); ok {
			return toFloat(st.String())
		}
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"2006",
}

// toTime parses the date shapes seen in catalog payloads. A whole number up
// to 9999 is a bare year; larger numbers are unix seconds, or milliseconds
// when too large to be seconds.
func toTime(v any) (time.Time, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), true
			}
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return time.Time{}, false
		}
	}
	f, ok := toFloat(v)
	if !ok || f <= 0 {
		return time.Time{}, false
	}
	if f <= 9999 && f == math.Trunc(f) {
		return time.Date(int(f), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	if f > 1e12 {
		return time.UnixMilli(int64(f)).UTC(), true
	}
	return time.Unix(int64(f), 0).UTC(), true
}
