// Package ranker orders catalog items by one of a fixed set of sort keys.
package ranker

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mangashelf/pkg/models"
)

type SortKey string

const (
	Popularity   SortKey = "popularity"
	Rating       SortKey = "rating"
	Views        SortKey = "views"
	ChapterCount SortKey = "chapter_count"
	ReleaseYear  SortKey = "release_year"
	Recency      SortKey = "recency"
	NameAsc      SortKey = "name_asc"
	NameDesc     SortKey = "name_desc"
)

// Keys lists every sort key, default first.
var Keys = []SortKey{Popularity, Rating, Views, ChapterCount, ReleaseYear, Recency, NameAsc, NameDesc}

// Valid reports whether k is a known key. The empty key is not valid; it
// sorts as Popularity.
func (k SortKey) Valid() bool { return slices.Contains(Keys, k) }

// Ranker sorts with a fixed collation locale for the name keys.
type Ranker struct {
	tag language.Tag
}

// New returns a Ranker for locale (a BCP 47 tag). Unparsable tags fall back
// to English.
func New(locale string) *Ranker {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Ranker{tag: tag}
}

// Collator returns a fresh collator for the ranker's locale. Collators keep
// internal buffers and must not be shared between goroutines.
func (r *Ranker) Collator() *collate.Collator {
	return collate.New(r.tag)
}

// Sort returns a sorted copy of items. Items with equal keys keep their
// relative order.
func (r *Ranker) Sort(items []models.Item, key SortKey) []models.Item {
	out := slices.Clone(items)
	col := r.Collator()
	slices.SortStableFunc(out, func(a, b models.Item) int {
		return Compare(a, b, key, col)
	})
	return out
}

var english = New("en")

// Sort orders items with the English collation.
func Sort(items []models.Item, key SortKey) []models.Item {
	return english.Sort(items, key)
}

// Compare orders a before b for key. Numeric keys and recency are descending.
// col is only consulted for the name keys; nil compares bytewise.
func Compare(a, b models.Item, key SortKey, col *collate.Collator) int {
	switch key {
	case Rating:
		return cmp.Compare(b.Rating, a.Rating)
	case Views:
		return cmp.Compare(b.ViewCount, a.ViewCount)
	case ChapterCount:
		return cmp.Compare(b.ChapterCount, a.ChapterCount)
	case ReleaseYear:
		return cmp.Compare(b.ReleaseYear, a.ReleaseYear)
	case Recency:
		return b.AddedAt.Compare(a.AddedAt)
	case NameAsc:
		return compareNames(a.Title, b.Title, col)
	case NameDesc:
		return compareNames(b.Title, a.Title, col)
	default:
		return cmp.Compare(b.PopularityScore, a.PopularityScore)
	}
}

func compareNames(a, b string, col *collate.Collator) int {
	if col == nil {
		return cmp.Compare(a, b)
	}
	return col.CompareString(a, b)
}
