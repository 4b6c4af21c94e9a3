// Package facet holds the browsing filter state and the matchers that apply it.
//
// State is a value: every transition (Apply) returns a new State and leaves its
// input untouched, so a state can be snapshotted, compared and replayed freely.
package facet

import (
	"sort"

	"github.com/goccy/go-json"

	"mangashelf/internal/ranker"
)

// Flag is the per-value tri-state. Neutral values are never stored.
type Flag int8

const (
	Neutral Flag = iota
	Include
	Exclude
)

func (f Flag) String() string {
	switch f {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	default:
		return "neutral"
	}
}

func (f Flag) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

func (f *Flag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "include":
		*f = Include
	case "exclude":
		*f = Exclude
	default:
		*f = Neutral
	}
	return nil
}

// next advances neutral -> include -> exclude -> neutral.
func (f Flag) next() Flag {
	switch f {
	case Neutral:
		return Include
	case Include:
		return Exclude
	default:
		return Neutral
	}
}

// TriMap maps a facet value to Include or Exclude. Its size is the number of
// active constraints.
type TriMap map[string]Flag

func (m TriMap) clone() TriMap {
	out := make(TriMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Split partitions the map into its include and exclude sets.
func (m TriMap) Split() (include, exclude Set) {
	include, exclude = Set{}, Set{}
	for k, v := range m {
		switch v {
		case Include:
			include[k] = struct{}{}
		case Exclude:
			exclude[k] = struct{}{}
		}
	}
	return include, exclude
}

// Set is an accepted-values set; empty means unconstrained.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s Set) clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Values returns the members in sorted order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s Set) MarshalJSON() ([]byte, error) { return json.Marshal(s.Values()) }

func (s *Set) UnmarshalJSON(b []byte) error {
	var values []string
	if err := json.Unmarshal(b, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// Range is an inclusive interval; a nil bound is open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// Bounds builds a Range from optional values.
func Bounds(min, max *float64) Range { return Range{Min: min, Max: max} }

// Float returns a pointer to v, for building ranges in literals.
func Float(v float64) *float64 { return &v }

// State is everything the user has asked of the result list.
type State struct {
	CategoryFlags  TriMap `json:"category_flags"`
	TagFlags       TriMap `json:"tag_flags"`
	CategoryStrict bool   `json:"category_strict"`
	TagStrict      bool   `json:"tag_strict"`

	Kind              Set `json:"kind"`
	AgeRating         Set `json:"age_rating"`
	TitleStatus       Set `json:"title_status"`
	TranslationStatus Set `json:"translation_status"`
	ReleaseFormat     Set `json:"release_format"`
	OtherFlags        Set `json:"other_flags"`
	UserListFlags     Set `json:"user_list_flags"`

	ReleaseYear  Range `json:"release_year"`
	ChapterCount Range `json:"chapter_count"`
	Rating       Range `json:"rating"`

	SearchText string         `json:"search_text"`
	SortKey    ranker.SortKey `json:"sort_key"`
}

// Initial is the all-empty state. It matches every item.
func Initial() State {
	return State{
		CategoryFlags:     TriMap{},
		TagFlags:          TriMap{},
		Kind:              Set{},
		AgeRating:         Set{},
		TitleStatus:       Set{},
		TranslationStatus: Set{},
		ReleaseFormat:     Set{},
		OtherFlags:        Set{},
		UserListFlags:     Set{},
		SortKey:           ranker.Popularity,
	}
}

// Tri returns the flag of value in the given tri-state field.
func (s State) Tri(field TriField, value string) Flag {
	return s.triMap(field)[value]
}

func (s State) triMap(field TriField) TriMap {
	switch field {
	case Categories:
		return s.CategoryFlags
	case Tags:
		return s.TagFlags
	}
	panic("facet: unknown tri-state field " + string(field))
}

func (s State) strict(field TriField) bool {
	switch field {
	case Categories:
		return s.CategoryStrict
	case Tags:
		return s.TagStrict
	}
	panic("facet: unknown tri-state field " + string(field))
}

func (s State) multi(field MultiField) Set {
	switch field {
	case KindField:
		return s.Kind
	case AgeRatingField:
		return s.AgeRating
	case TitleStatusField:
		return s.TitleStatus
	case TranslationStatusField:
		return s.TranslationStatus
	case ReleaseFormatField:
		return s.ReleaseFormat
	case OtherFlagsField:
		return s.OtherFlags
	case UserListFlagsField:
		return s.UserListFlags
	}
	panic("facet: unknown multi-select field " + string(field))
}

func (s State) rangeOf(field RangeField) Range {
	switch field {
	case ReleaseYearField:
		return s.ReleaseYear
	case ChapterCountField:
		return s.ChapterCount
	case RatingField:
		return s.Rating
	}
	panic("facet: unknown range field " + string(field))
}
