package normalize

import (
	"strings"

	"mangashelf/pkg/models"
)

func key(v any) string {
	s, _ := toString(v)
	return strings.ToLower(strings.TrimSpace(s))
}

func kindOf(v any) models.Kind {
	switch key(v) {
	case "manhwa", "korean", "kr", "webtoon":
		return models.KindManhwa
	case "manhua", "chinese", "cn", "zh":
		return models.KindManhua
	default:
		return models.KindManga
	}
}

// ageRatingOf maps content ratings to the four audience buckets. Anything
// unrecognized lands on 12+.
func ageRatingOf(v any) models.AgeRating {
	switch key(v) {
	case "0", "0+", "all", "g", "safe", "everyone", "kids":
		return models.AgeAll
	case "16", "16+", "mature", "suggestive", "r", "teen+":
		return models.Age16
	case "18", "18+", "adult", "nsfw", "erotica", "pornographic", "r18", "r-18", "hentai":
		return models.Age18
	default:
		return models.Age12
	}
}

func titleStatusOf(v any) models.TitleStatus {
	switch key(v) {
	case "completed", "finished", "end", "ended", "complete", "done":
		return models.TitleCompleted
	case "hiatus", "paused", "on hold", "on_hold":
		return models.TitleHiatus
	case "cancelled", "canceled", "discontinued", "dropped":
		return models.TitleCancelled
	default:
		// "ongoing", "publishing", "running" and everything else
		return models.TitleOngoing
	}
}

func translationStatusOf(v any) models.TranslationStatus {
	switch key(v) {
	case "completed", "finished", "done", "complete":
		return models.TranslationCompleted
	case "frozen", "paused", "on hold", "on_hold", "hiatus":
		return models.TranslationFrozen
	case "abandoned", "dropped", "cancelled", "canceled":
		return models.TranslationAbandoned
	default:
		return models.TranslationOngoing
	}
}
