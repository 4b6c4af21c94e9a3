package models

import "time"

// Item is the canonical, fully-typed catalog entry the browsing engine works on.
//
// Every external record is mapped into this structure exactly once per fetch
// (see internal/normalize). Downstream code never re-validates these fields.
type Item struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Author            string            `json:"author"`
	Kind              Kind              `json:"kind"`
	Categories        []string          `json:"categories"`
	Tags              []string          `json:"tags"`
	ReleaseYear       int               `json:"release_year"`
	ChapterCount      int               `json:"chapter_count"`
	Rating            float64           `json:"rating"` // 0..10
	AgeRating         AgeRating         `json:"age_rating"`
	TitleStatus       TitleStatus       `json:"title_status"`
	TranslationStatus TranslationStatus `json:"translation_status"`
	ReleaseFormats    []string          `json:"release_formats"`
	OtherFlags        []string          `json:"other_flags"`
	UserListFlags     []string          `json:"user_list_flags"`
	ViewCount         int               `json:"view_count"`
	PopularityScore   int               `json:"popularity_score"`
	AddedAt           time.Time         `json:"added_at"`
	CoverImage        *string           `json:"cover_image"`
}

// WithUserLists returns a copy of the item carrying the given library lists.
func (it Item) WithUserLists(lists []string) Item {
	it.UserListFlags = append([]string(nil), lists...)
	return it
}

// Kind is the release format of a title.
type Kind string

const (
	KindManga  Kind = "manga"
	KindManhwa Kind = "manhwa"
	KindManhua Kind = "manhua"
)

var Kinds = []Kind{KindManga, KindManhwa, KindManhua}

// AgeRating is the audience restriction of a title.
type AgeRating string

const (
	AgeAll  AgeRating = "0+"
	Age12   AgeRating = "12+"
	Age16   AgeRating = "16+"
	Age18   AgeRating = "18+"
)

var AgeRatings = []AgeRating{AgeAll, Age12, Age16, Age18}

// TitleStatus is the publication state of the original work.
type TitleStatus string

const (
	TitleOngoing   TitleStatus = "ongoing"
	TitleCompleted TitleStatus = "completed"
	TitleHiatus    TitleStatus = "hiatus"
	TitleCancelled TitleStatus = "cancelled"
)

var TitleStatuses = []TitleStatus{TitleOngoing, TitleCompleted, TitleHiatus, TitleCancelled}

// TranslationStatus is the state of the translation effort.
type TranslationStatus string

const (
	TranslationOngoing   TranslationStatus = "ongoing"
	TranslationCompleted TranslationStatus = "completed"
	TranslationFrozen    TranslationStatus = "frozen"
	TranslationAbandoned TranslationStatus = "abandoned"
)

var TranslationStatuses = []TranslationStatus{
	TranslationOngoing, TranslationCompleted, TranslationFrozen, TranslationAbandoned,
}
