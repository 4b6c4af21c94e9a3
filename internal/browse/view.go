package browse

import (
	"mangashelf/internal/facet"
	"mangashelf/internal/ranker"
	"mangashelf/pkg/models"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// View is what a presentation layer renders for one page of results. Seq
// grows with every change to the session; a view with a lower Seq than one
// already shown is stale.
type View struct {
	Items      []models.Item `json:"items"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	Status     Status        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Seq        uint64        `json:"seq"`
}

// Facets carries the vocabularies for every facet control plus the current
// state, including the text held in range inputs.
type Facets struct {
	Categories          []string                                   `json:"categories"`
	Tags                []string                                   `json:"tags"`
	Kinds               []models.Kind                              `json:"kinds"`
	AgeRatings          []models.AgeRating                         `json:"age_ratings"`
	TitleStatuses       []models.TitleStatus                       `json:"title_statuses"`
	TranslationStatuses []models.TranslationStatus                 `json:"translation_statuses"`
	ReleaseFormats      []string                                   `json:"release_formats"`
	UserLists           []string                                   `json:"user_lists"`
	SortKeys            []ranker.SortKey                           `json:"sort_keys"`
	RangeText           map[facet.RangeField]map[facet.Side]string `json:"range_text"`
	State               facet.State                                `json:"state"`
}
