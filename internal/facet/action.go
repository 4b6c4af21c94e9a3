package facet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"mangashelf/internal/ranker"
)

type ActionType string

const (
	TypeCycleTri    ActionType = "cycle_tri"
	TypeClearTri    ActionType = "clear_tri"
	TypeSetStrict   ActionType = "set_strict"
	TypeToggleMulti ActionType = "toggle_multi"
	TypeSetRange    ActionType = "set_range"
	TypeSetSearch   ActionType = "set_search"
	TypeSetSort     ActionType = "set_sort"
	TypeReset       ActionType = "reset"
)

// TriField names a tri-state map.
type TriField string

const (
	Categories TriField = "categories"
	Tags       TriField = "tags"
)

// MultiField names a multi-select set.
type MultiField string

const (
	KindField              MultiField = "kind"
	AgeRatingField         MultiField = "age_rating"
	TitleStatusField       MultiField = "title_status"
	TranslationStatusField MultiField = "translation_status"
	ReleaseFormatField     MultiField = "release_format"
	OtherFlagsField        MultiField = "other_flags"
	UserListFlagsField     MultiField = "user_list_flags"
)

// RangeField names a numeric range.
type RangeField string

const (
	ReleaseYearField  RangeField = "release_year"
	ChapterCountField RangeField = "chapter_count"
	RatingField       RangeField = "rating"
)

var (
	triFields   = []TriField{Categories, Tags}
	multiFields = []MultiField{
		KindField, AgeRatingField, TitleStatusField, TranslationStatusField,
		ReleaseFormatField, OtherFlagsField, UserListFlagsField,
	}
	rangeFields = []RangeField{ReleaseYearField, ChapterCountField, RatingField}
)

func IsTriField(f string) bool   { return contains(triFields, TriField(f)) }
func IsMultiField(f string) bool { return contains(multiFields, MultiField(f)) }
func IsRangeField(f string) bool { return contains(rangeFields, RangeField(f)) }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// Bound is one side of a set_range edit. The zero value leaves the bound as
// it is; Present with a nil Value clears it.
type Bound struct {
	Present bool
	Value   *float64
}

func Keep() Bound        { return Bound{} }
func Clear() Bound       { return Bound{Present: true} }
func To(v float64) Bound { return Bound{Present: true, Value: &v} }

func (b Bound) apply(cur *float64) *float64 {
	if !b.Present {
		return cur
	}
	if b.Value == nil {
		return nil
	}
	v := *b.Value
	return &v
}

// Action is a single state transition. Which fields are read depends on Type.
type Action struct {
	Type   ActionType
	Field  string
	Value  string
	Strict bool
	Min    Bound
	Max    Bound
	Text   string
	Sort   ranker.SortKey
}

func CycleTri(field TriField, value string) Action {
	return Action{Type: TypeCycleTri, Field: string(field), Value: value}
}

func ClearTri(field TriField) Action {
	return Action{Type: TypeClearTri, Field: string(field)}
}

func SetStrict(field TriField, strict bool) Action {
	return Action{Type: TypeSetStrict, Field: string(field), Strict: strict}
}

func ToggleMulti(field MultiField, value string) Action {
	return Action{Type: TypeToggleMulti, Field: string(field), Value: value}
}

func SetRange(field RangeField, lo, hi Bound) Action {
	return Action{Type: TypeSetRange, Field: string(field), Min: lo, Max: hi}
}

func SetSearch(text string) Action { return Action{Type: TypeSetSearch, Text: text} }

func SetSort(key ranker.SortKey) Action { return Action{Type: TypeSetSort, Sort: key} }

func Reset() Action { return Action{Type: TypeReset} }

var ErrInvalidAction = errors.New("invalid action")

// Validate reports whether Apply would accept a. Transports call it before
// dispatching decoded input.
func (a Action) Validate() error {
	switch a.Type {
	case TypeCycleTri, TypeClearTri, TypeSetStrict:
		if !IsTriField(a.Field) {
			return fmt.Errorf("%w: %s on unknown field %q", ErrInvalidAction, a.Type, a.Field)
		}
		if a.Type == TypeCycleTri && strings.TrimSpace(a.Value) == "" {
			return fmt.Errorf("%w: cycle_tri needs a value", ErrInvalidAction)
		}
	case TypeToggleMulti:
		if !IsMultiField(a.Field) {
			return fmt.Errorf("%w: toggle_multi on unknown field %q", ErrInvalidAction, a.Field)
		}
		if strings.TrimSpace(a.Value) == "" {
			return fmt.Errorf("%w: toggle_multi needs a value", ErrInvalidAction)
		}
	case TypeSetRange:
		if !IsRangeField(a.Field) {
			return fmt.Errorf("%w: set_range on unknown field %q", ErrInvalidAction, a.Field)
		}
	case TypeSetSort:
		if !a.Sort.Valid() {
			return fmt.Errorf("%w: unknown sort key %q", ErrInvalidAction, a.Sort)
		}
	case TypeSetSearch, TypeReset:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
	}
	return nil
}

type actionJSON struct {
	Type   ActionType     `json:"type"`
	Field  string         `json:"field,omitempty"`
	Value  string         `json:"value,omitempty"`
	Strict bool           `json:"strict,omitempty"`
	Text   string         `json:"text,omitempty"`
	Sort   ranker.SortKey `json:"sort,omitempty"`
}

func (a Action) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": a.Type}
	if a.Field != "" {
		out["field"] = a.Field
	}
	switch a.Type {
	case TypeCycleTri, TypeToggleMulti:
		out["value"] = a.Value
	case TypeSetStrict:
		out["strict"] = a.Strict
	case TypeSetRange:
		if a.Min.Present {
			out["min"] = a.Min.Value
		}
		if a.Max.Present {
			out["max"] = a.Max.Value
		}
	case TypeSetSearch:
		out["text"] = a.Text
	case TypeSetSort:
		out["sort"] = a.Sort
	}
	return json.Marshal(out)
}

// UnmarshalJSON distinguishes an omitted range bound from an explicit null.
func (a *Action) UnmarshalJSON(b []byte) error {
	var base actionJSON
	if err := json.Unmarshal(b, &base); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	lo, err := boundFrom(raw, "min")
	if err != nil {
		return err
	}
	hi, err := boundFrom(raw, "max")
	if err != nil {
		return err
	}
	*a = Action{
		Type:   base.Type,
		Field:  base.Field,
		Value:  base.Value,
		Strict: base.Strict,
		Text:   base.Text,
		Sort:   base.Sort,
		Min:    lo,
		Max:    hi,
	}
	return nil
}

func boundFrom(raw map[string]any, key string) (Bound, error) {
	v, ok := raw[key]
	if !ok {
		return Keep(), nil
	}
	switch x := v.(type) {
	case nil:
		return Clear(), nil
	case float64:
		return To(x), nil
	}
	return Bound{}, fmt.Errorf("%w: %s must be a number or null", ErrInvalidAction, key)
}

// Apply returns the state that results from a. The input state is never
// modified: maps touched by the transition are copied first. Fields outside
// the schema panic; use Validate on untrusted input.
func Apply(s State, a Action) State {
	next := s
	switch a.Type {
	case TypeCycleTri:
		field := TriField(a.Field)
		m := s.triMap(field).clone()
		if f := m[a.Value].next(); f == Neutral {
			delete(m, a.Value)
		} else {
			m[a.Value] = f
		}
		next.setTri(field, m)
	case TypeClearTri:
		field := TriField(a.Field)
		s.triMap(field)
		next.setTri(field, TriMap{})
	case TypeSetStrict:
		field := TriField(a.Field)
		s.strict(field)
		if field == Categories {
			next.CategoryStrict = a.Strict
		} else {
			next.TagStrict = a.Strict
		}
	case TypeToggleMulti:
		field := MultiField(a.Field)
		set := s.multi(field).clone()
		if set.Has(a.Value) {
			delete(set, a.Value)
		} else {
			set[a.Value] = struct{}{}
		}
		next.setMulti(field, set)
	case TypeSetRange:
		field := RangeField(a.Field)
		cur := s.rangeOf(field)
		next.setRange(field, Range{Min: a.Min.apply(cur.Min), Max: a.Max.apply(cur.Max)})
	case TypeSetSearch:
		next.SearchText = a.Text
	case TypeSetSort:
		next.SortKey = a.Sort
	case TypeReset:
		return Initial()
	default:
		panic("facet: unknown action type " + string(a.Type))
	}
	return next
}

func (s *State) setTri(field TriField, m TriMap) {
	if field == Categories {
		s.CategoryFlags = m
	} else {
		s.TagFlags = m
	}
}

func (s *State) setMulti(field MultiField, set Set) {
	switch field {
	case KindField:
		s.Kind = set
	case AgeRatingField:
		s.AgeRating = set
	case TitleStatusField:
		s.TitleStatus = set
	case TranslationStatusField:
		s.TranslationStatus = set
	case ReleaseFormatField:
		s.ReleaseFormat = set
	case OtherFlagsField:
		s.OtherFlags = set
	case UserListFlagsField:
		s.UserListFlags = set
	}
}

func (s *State) setRange(field RangeField, r Range) {
	switch field {
	case ReleaseYearField:
		s.ReleaseYear = r
	case ChapterCountField:
		s.ChapterCount = r
	case RatingField:
		s.Rating = r
	}
}
