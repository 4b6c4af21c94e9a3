package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mangashelf/internal/facet"
	"mangashelf/internal/paginate"
	"mangashelf/internal/ranker"
)

// filters mirrors the facet controls as command-line flags.
type filters struct {
	withCategories    []string
	withoutCategories []string
	allCategories     bool
	withTags          []string
	withoutTags       []string
	allTags           bool

	multi map[facet.MultiField]*[]string
	bound map[facet.RangeField]map[facet.Side]*string

	search string
	sort   string
	page   int
}

func newFilters() *filters {
	f := &filters{
		multi: make(map[facet.MultiField]*[]string),
		bound: make(map[facet.RangeField]map[facet.Side]*string),
	}
	for _, m := range multiFields {
		f.multi[m] = new([]string)
	}
	for _, r := range rangeFields {
		f.bound[r] = map[facet.Side]*string{facet.SideMin: new(string), facet.SideMax: new(string)}
	}
	return f
}

// Flag order is fixed so the same flags always yield the same actions.
var (
	multiFields = []facet.MultiField{
		facet.KindField, facet.AgeRatingField, facet.TitleStatusField, facet.TranslationStatusField,
		facet.ReleaseFormatField, facet.OtherFlagsField, facet.UserListFlagsField,
	}
	rangeFields = []facet.RangeField{facet.ReleaseYearField, facet.ChapterCountField, facet.RatingField}
)

var multiFlags = map[facet.MultiField]string{
	facet.KindField:              "kind",
	facet.AgeRatingField:         "age",
	facet.TitleStatusField:       "status",
	facet.TranslationStatusField: "translation",
	facet.ReleaseFormatField:     "release-format",
	facet.OtherFlagsField:        "flag",
	facet.UserListFlagsField:     "list",
}

var rangeFlags = map[facet.RangeField]string{
	facet.ReleaseYearField:  "year",
	facet.ChapterCountField: "chapters",
	facet.RatingField:       "rating",
}

func (f *filters) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringSliceVar(&f.withCategories, "category", nil, "require a category (repeatable)")
	fl.StringSliceVar(&f.withoutCategories, "no-category", nil, "exclude a category (repeatable)")
	fl.BoolVar(&f.allCategories, "all-categories", false, "require every --category instead of any")
	fl.StringSliceVar(&f.withTags, "tag", nil, "require a tag (repeatable)")
	fl.StringSliceVar(&f.withoutTags, "no-tag", nil, "exclude a tag (repeatable)")
	fl.BoolVar(&f.allTags, "all-tags", false, "require every --tag instead of any")
	for field, name := range multiFlags {
		fl.StringSliceVar(f.multi[field], name, nil, fmt.Sprintf("match any of these %s values", field))
	}
	for field, name := range rangeFlags {
		fl.StringVar(f.bound[field][facet.SideMin], name+"-min", "", "lower bound for "+string(field))
		fl.StringVar(f.bound[field][facet.SideMax], name+"-max", "", "upper bound for "+string(field))
	}
	fl.StringVarP(&f.search, "search", "s", "", "substring of title or author")
	fl.StringVar(&f.sort, "sort", string(ranker.Popularity), "sort key: "+joinKeys())
	fl.IntVarP(&f.page, "page", "p", 1, "page to show")
}

func joinKeys() string {
	keys := make([]string, len(ranker.Keys))
	for i, k := range ranker.Keys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}

// actions turns the flags into the facet actions that produce the same
// state from the initial one. An exclusion is two cycles: include, then
// exclude.
func (f *filters) actions() ([]facet.Action, error) {
	var out []facet.Action
	tri := func(field facet.TriField, with, without []string, strict bool) {
		with, without = dedupe(with), dedupe(without)
		for _, v := range with {
			out = append(out, facet.CycleTri(field, v))
		}
		for _, v := range without {
			out = append(out, facet.CycleTri(field, v), facet.CycleTri(field, v))
		}
		if strict {
			out = append(out, facet.SetStrict(field, true))
		}
	}
	if v, ok := overlap(f.withCategories, f.withoutCategories); ok {
		return nil, fmt.Errorf("--category and --no-category both name %q", v)
	}
	if v, ok := overlap(f.withTags, f.withoutTags); ok {
		return nil, fmt.Errorf("--tag and --no-tag both name %q", v)
	}
	tri(facet.Categories, f.withCategories, f.withoutCategories, f.allCategories)
	tri(facet.Tags, f.withTags, f.withoutTags, f.allTags)

	for _, field := range multiFields {
		for _, v := range dedupe(*f.multi[field]) {
			out = append(out, facet.ToggleMulti(field, v))
		}
	}

	draft := facet.NewRangeDraft()
	for _, field := range rangeFields {
		for _, side := range []facet.Side{facet.SideMin, facet.SideMax} {
			text := *f.bound[field][side]
			if text == "" {
				continue
			}
			a, ok := draft.Input(field, side, text)
			if !ok {
				return nil, fmt.Errorf("--%s-%s: %q is not a number", rangeFlags[field], side, text)
			}
			out = append(out, a)
		}
	}

	if s := strings.TrimSpace(f.search); s != "" {
		out = append(out, facet.SetSearch(s))
	}
	key := ranker.SortKey(f.sort)
	if !key.Valid() {
		return nil, fmt.Errorf("--sort: unknown key %q (want one of %s)", f.sort, joinKeys())
	}
	if key != ranker.Popularity {
		out = append(out, facet.SetSort(key))
	}
	for _, a := range out {
		if err := a.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// dedupe drops repeated values; applying one twice would undo or flip it.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0:0]
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func overlap(a, b []string) (string, bool) {
	in := make(map[string]bool, len(a))
	for _, v := range a {
		in[strings.TrimSpace(v)] = true
	}
	for _, v := range b {
		if v = strings.TrimSpace(v); v != "" && in[v] {
			return v, true
		}
	}
	return "", false
}

func (f *filters) pageOp() (paginate.Op, int) {
	return paginate.OpSelect, f.page
}
