// Package normalize maps loosely-typed catalog records into models.Item.
//
// Every external source is mapped into this structure first; nothing downstream
// looks at raw records. Each logical field is resolved through an ordered list of
// candidate paths (fieldPaths), so supporting a new source shape means adding a
// path, not a branch.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"mangashelf/pkg/models"
)

const (
	PlaceholderTitle  = "Untitled"
	PlaceholderAuthor = "Unknown author"
)

type field string

const (
	fID                field = "id"
	fTitle             field = "title"
	fAuthor            field = "author"
	fKind              field = "kind"
	fCategories        field = "categories"
	fTags              field = "tags"
	fReleaseYear       field = "releaseYear"
	fReleaseDate       field = "releaseDate"
	fCreatedAt         field = "createdAt"
	fChapterCount      field = "chapterCount"
	fRating            field = "rating"
	fAgeRating         field = "ageRating"
	fTitleStatus       field = "titleStatus"
	fTranslationStatus field = "translationStatus"
	fReleaseFormats    field = "releaseFormats"
	fOtherFlags        field = "otherFlags"
	fUserListFlags     field = "userListFlags"
	fViewCount         field = "viewCount"
	fPopularity        field = "popularity"
	fAddedAt           field = "addedAt"
	fCover             field = "cover"
)

// fieldPaths lists, per logical field, where known sources keep it.
var fieldPaths = map[field][]string{
	fID:                {"id", "_id", "slug", "manga_id", "uuid"},
	fTitle:             {"title", "name", "title_en", "eng_name", "main_name", "rus_name"},
	fAuthor:            {"author", "authors", "creator", "author_name", "artist"},
	fKind:              {"kind", "type", "manga_type", "comic_type"},
	fCategories:        {"categories", "genres", "genre"},
	fTags:              {"tags", "tag_list", "keywords"},
	fReleaseYear:       {"release_year", "releaseYear", "year", "issue_year"},
	fReleaseDate:       {"release_date", "releaseDate", "released_at", "published_at"},
	fCreatedAt:         {"created_at", "createdAt", "created"},
	fChapterCount:      {"chapters_count", "chapterCount", "chapter_count", "total_chapters", "chapters"},
	fRating:            {"rating", "score", "average_rating", "avg_rating"},
	fAgeRating:         {"age_rating", "ageRating", "age_limit", "content_rating", "contentRating"},
	fTitleStatus:       {"title_status", "titleStatus", "status", "state"},
	fTranslationStatus: {"translation_status", "translationStatus", "translate_status"},
	fReleaseFormats:    {"release_formats", "releaseFormats", "formats", "format"},
	fOtherFlags:        {"other_flags", "otherFlags", "flags"},
	fUserListFlags:     {"user_list_flags", "userListFlags", "lists", "bookmarks"},
	fViewCount:         {"views", "view_count", "viewCount", "total_views"},
	fPopularity:        {"popularity", "popularity_score", "popularityScore", "rank_score"},
	fAddedAt:           {"added_at", "addedAt", "created_at", "createdAt"},
	fCover:             {"cover", "cover_image", "coverImage", "cover_url", "image", "image_url", "poster"},
}

// Normalizer holds the few knobs normalization depends on.
type Normalizer struct {
	// CoverBaseURL expands compact "bucket:path" cover references.
	CoverBaseURL string
	// Now stamps items without a usable date. Defaults to time.Now.
	Now func() time.Time
}

// New returns a Normalizer expanding covers against coverBase.
func New(coverBase string) *Normalizer {
	return &Normalizer{CoverBaseURL: coverBase, Now: time.Now}
}

func (n *Normalizer) now() time.Time {
	if n == nil || n.Now == nil {
		return time.Now().UTC()
	}
	return n.Now().UTC()
}

func (n *Normalizer) resolve(rec Record, f field) (any, bool) {
	return FirstNonEmpty(rec, fieldPaths[f]...)
}

// NormalizeAll maps records in order.
func (n *Normalizer) NormalizeAll(records []Record) []models.Item {
	out := make([]models.Item, 0, len(records))
	for _, r := range records {
		out = append(out, n.Normalize(r))
	}
	return out
}

// Normalize never fails: missing or malformed fields fall back to defaults so a
// damaged record still yields a usable item.
func (n *Normalizer) Normalize(raw Record) models.Item {
	rec := unwrap(raw)
	if rec == nil {
		rec = Record{}
	}
	now := n.now()

	it := models.Item{
		Title:             PlaceholderTitle,
		Author:            PlaceholderAuthor,
		Kind:              models.KindManga,
		Categories:        []string{},
		Tags:              []string{},
		ReleaseYear:       now.Year(),
		AgeRating:         models.Age12,
		TitleStatus:       models.TitleOngoing,
		TranslationStatus: models.TranslationOngoing,
		ReleaseFormats:    []string{models.FormatWeb},
		OtherFlags:        []string{},
		UserListFlags:     []string{},
		AddedAt:           now,
	}

	if v, ok := n.resolve(rec, fTitle); ok {
		if s, ok := toString(v); ok {
			it.Title = s
		}
	}
	if v, ok := n.resolve(rec, fAuthor); ok {
		if s, ok := toString(v); ok {
			it.Author = s
		}
	}
	it.ID = slugify(it.Title)
	if v, ok := n.resolve(rec, fID); ok {
		if s, ok := toString(v); ok {
			it.ID = s
		}
	}

	if v, ok := n.resolve(rec, fKind); ok {
		it.Kind = kindOf(v)
	}
	if v, ok := n.resolve(rec, fCategories); ok {
		it.Categories = toStrings(v)
	}
	if v, ok := n.resolve(rec, fTags); ok {
		it.Tags = toStrings(v)
	}

	it.ReleaseYear = n.releaseYear(rec, now)

	if v, ok := n.resolve(rec, fChapterCount); ok {
		if c, ok := toInt(v); ok {
			it.ChapterCount = nonNegative(c)
		}
	}
	if v, ok := n.resolve(rec, fRating); ok {
		if r, ok := toFloat(v); ok {
			it.Rating = scaleRating(r)
		}
	}

	if v, ok := n.resolve(rec, fAgeRating); ok {
		it.AgeRating = ageRatingOf(v)
	}
	if v, ok := n.resolve(rec, fTitleStatus); ok {
		it.TitleStatus = titleStatusOf(v)
	}
	if v, ok := n.resolve(rec, fTranslationStatus); ok {
		it.TranslationStatus = translationStatusOf(v)
	}

	if v, ok := n.resolve(rec, fReleaseFormats); ok {
		if formats := lowerAll(toStrings(v)); len(formats) > 0 {
			it.ReleaseFormats = formats
		}
	}
	if v, ok := n.resolve(rec, fOtherFlags); ok {
		it.OtherFlags = toStrings(v)
	}
	if v, ok := n.resolve(rec, fUserListFlags); ok {
		it.UserListFlags = toStrings(v)
	}

	if v, ok := n.resolve(rec, fViewCount); ok {
		if c, ok := toInt(v); ok {
			it.ViewCount = nonNegative(c)
		}
	}
	it.PopularityScore = it.ViewCount
	if v, ok := n.resolve(rec, fPopularity); ok {
		if c, ok := toInt(v); ok {
			it.PopularityScore = nonNegative(c)
		}
	}

	if v, ok := n.resolve(rec, fAddedAt); ok {
		if t, ok := toTime(v); ok {
			it.AddedAt = t
		}
	}
	if v, ok := n.resolve(rec, fCover); ok {
		it.CoverImage = ResolveCover(v, n.CoverBaseURL)
	}

	return it
}

// releaseYear walks explicit year -> release date -> creation date -> current year.
func (n *Normalizer) releaseYear(rec Record, now time.Time) int {
	if v, ok := n.resolve(rec, fReleaseYear); ok {
		if y, ok := toInt(v); ok && y > 0 {
			return y
		}
	}
	for _, f := range []field{fReleaseDate, fCreatedAt} {
		if v, ok := n.resolve(rec, f); ok {
			if t, ok := toTime(v); ok {
				return t.Year()
			}
		}
	}
	return now.Year()
}

// scaleRating clamps to [0,10]. Values on a five point scale are doubled; a
// genuine 5/10 is indistinguishable from 5/5 and becomes 10.
func scaleRating(r float64) float64 {
	if r <= 0 {
		return 0
	}
	if r <= 5 {
		r *= 2
	}
	if r > 10 {
		return 10
	}
	return r
}

func lowerAll(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToLower(s)
	}
	return in
}

// slugify lowercases, keeps letters and digits, and joins the rest with dashes.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	prevDash := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var defaultNormalizer = &Normalizer{}

// Normalize maps a record with no cover base and the wall clock.
func Normalize(raw Record) models.Item {
	return defaultNormalizer.Normalize(raw)
}
