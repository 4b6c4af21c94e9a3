package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

// compactRef matches "bucket:path" and "bucket/path" storage references.
var compactRef = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_.-]*)[:/](.+)$`)

// ResolveCover turns the cover shapes sources send into an absolute URL.
// base expands compact storage references; without it they stay unresolved.
func ResolveCover(v any, base string) *string {
	switch x := v.(type) {
	case string:
		return resolveCoverString(x, base)
	case map[string]any:
		return resolveCoverObject(x, base)
	case Record:
		return resolveCoverObject(x, base)
	}
	return nil
}

func resolveCoverString(s, base string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if isAbsoluteURL(s) {
		return &s
	}
	if strings.Contains(s, "://") || strings.HasPrefix(strings.ToLower(s), "data:") {
		return nil
	}
	m := compactRef.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return expand(base, m[1], m[2])
}

func resolveCoverObject(obj map[string]any, base string) *string {
	rec := Record(obj)
	if v, ok := FirstNonEmpty(rec, "url", "href"); ok {
		if s, ok := v.(string); ok {
			if u := resolveCoverString(s, base); u != nil {
				return u
			}
		}
	}
	p, ok := FirstNonEmpty(rec, "path", "key")
	if !ok {
		return nil
	}
	path, ok := p.(string)
	if !ok {
		return nil
	}
	if b, ok := FirstNonEmpty(rec, "bucket"); ok {
		if bucket, ok := b.(string); ok {
			return expand(base, strings.TrimSpace(bucket), path)
		}
	}
	return resolveCoverString(path, base)
}

func expand(base, bucket, path string) *string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if base == "" || bucket == "" || path == "" {
		return nil
	}
	u := base + "/" + bucket + "/" + path
	return &u
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
