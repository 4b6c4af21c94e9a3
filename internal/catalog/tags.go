package catalog

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mangashelf/pkg/models"
)

// DiscoverTags returns the union of every item's tags, sorted for locale.
// The result is empty when no item carries a tag.
func DiscoverTags(items []models.Item, locale string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, it := range items {
		for _, t := range it.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	collate.New(tag).SortStrings(out)
	return out
}

// TagVocabulary is DiscoverTags with the fixed fallback list substituted for
// an empty result.
func TagVocabulary(items []models.Item, locale string) []string {
	if tags := DiscoverTags(items, locale); len(tags) > 0 {
		return tags
	}
	return append([]string(nil), models.FallbackTags...)
}
