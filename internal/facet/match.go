package facet

import (
	"strings"

	"mangashelf/pkg/models"
)

// MatchTri applies a tri-state map to an item's values. Any excluded value
// rejects the item outright. With no includes the item passes; otherwise strict
// mode needs every include present and any mode needs at least one.
func MatchTri(flags TriMap, values []string, strict bool) bool {
	include, exclude := flags.Split()
	for _, v := range values {
		if exclude.Has(v) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	present := NewSet(values...)
	if strict {
		for v := range include {
			if !present.Has(v) {
				return false
			}
		}
		return true
	}
	for v := range include {
		if present.Has(v) {
			return true
		}
	}
	return false
}

// MatchOne is the multi-select test for single-valued item fields.
func MatchOne(set Set, value string) bool {
	return len(set) == 0 || set.Has(value)
}

// MatchAny is the multi-select test for list-valued item fields.
func MatchAny(set Set, values []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, v := range values {
		if set.Has(v) {
			return true
		}
	}
	return false
}

// InRange reports whether v lies within r. Both bounds are inclusive.
func InRange(v float64, r Range) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// MatchSearch is a case-insensitive substring test over title and author.
func MatchSearch(query string, it models.Item) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Title+" "+it.Author), q)
}

// Matches reports whether it satisfies every constraint in s.
func (s State) Matches(it models.Item) bool {
	return MatchTri(s.CategoryFlags, it.Categories, s.CategoryStrict) &&
		MatchTri(s.TagFlags, it.Tags, s.TagStrict) &&
		MatchOne(s.Kind, string(it.Kind)) &&
		MatchOne(s.AgeRating, string(it.AgeRating)) &&
		MatchOne(s.TitleStatus, string(it.TitleStatus)) &&
		MatchOne(s.TranslationStatus, string(it.TranslationStatus)) &&
		MatchAny(s.ReleaseFormat, it.ReleaseFormats) &&
		MatchAny(s.OtherFlags, it.OtherFlags) &&
		MatchAny(s.UserListFlags, it.UserListFlags) &&
		InRange(float64(it.ReleaseYear), s.ReleaseYear) &&
		InRange(float64(it.ChapterCount), s.ChapterCount) &&
		InRange(it.Rating, s.Rating) &&
		MatchSearch(s.SearchText, it)
}

// Filter returns the items matching s in their original order. The input is
// not modified.
func Filter(items []models.Item, s State) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		if s.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
