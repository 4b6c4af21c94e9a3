package normalize

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/pkg/models"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return &Normalizer{
		CoverBaseURL: "https://cdn.example.com",
		Now:          func() time.Time { return fixedNow },
	}
}

func decode(t *testing.T, s string) Record {
	t.Helper()
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(s), &rec))
	return rec
}

func TestNormalizeEmptyRecordUsesDefaults(t *testing.T) {
	n := testNormalizer()
	for _, rec := range []Record{{}, nil} {
		it := n.Normalize(rec)

		assert.Equal(t, "untitled", it.ID)
		assert.Equal(t, PlaceholderTitle, it.Title)
		assert.Equal(t, PlaceholderAuthor, it.Author)
		assert.Equal(t, models.KindManga, it.Kind)
		assert.Equal(t, []string{}, it.Categories)
		assert.Equal(t, []string{}, it.Tags)
		assert.Equal(t, 2024, it.ReleaseYear)
		assert.Zero(t, it.ChapterCount)
		assert.Zero(t, it.Rating)
		assert.Equal(t, models.Age12, it.AgeRating)
		assert.Equal(t, models.TitleOngoing, it.TitleStatus)
		assert.Equal(t, models.TranslationOngoing, it.TranslationStatus)
		assert.Equal(t, []string{"web"}, it.ReleaseFormats)
		assert.NotNil(t, it.OtherFlags)
		assert.NotNil(t, it.UserListFlags)
		assert.Equal(t, fixedNow, it.AddedAt)
		assert.Nil(t, it.CoverImage)
	}
}

func TestNormalizeRoundTripScenario(t *testing.T) {
	it := testNormalizer().Normalize(decode(t, `{"release_year":2020,"rating":4.5,"chapters_count":"12"}`))

	assert.Equal(t, 2020, it.ReleaseYear)
	assert.Equal(t, 9.0, it.Rating)
	assert.Equal(t, 12, it.ChapterCount)
}

func TestNormalizeAlternateNamesAndWrapper(t *testing.T) {
	rec := decode(t, `{
		"id": 42,
		"manga": {
			"name": "  Solo Leveling ",
			"creator": "Chugong",
			"type": "Manhwa",
			"genres": "[\"Action\", \"Fantasy\"]",
			"tag_list": "Dungeons, Reincarnation ,",
			"score": "8,7",
			"age_limit": "18",
			"state": "finished",
			"translate_status": "frozen",
			"views": 1500,
			"formats": ["Web", "Color"],
			"flags": ["licensed"],
			"created_at": "2019-06-01T10:00:00Z"
		}
	}`)

	it := testNormalizer().Normalize(rec)

	assert.Equal(t, "42", it.ID)
	assert.Equal(t, "Solo Leveling", it.Title)
	assert.Equal(t, "Chugong", it.Author)
	assert.Equal(t, models.KindManhwa, it.Kind)
	assert.Equal(t, []string{"Action", "Fantasy"}, it.Categories)
	assert.Equal(t, []string{"Dungeons", "Reincarnation"}, it.Tags)
	assert.InDelta(t, 8.7, it.Rating, 1e-9)
	assert.Equal(t, models.Age18, it.AgeRating)
	assert.Equal(t, models.TitleCompleted, it.TitleStatus)
	assert.Equal(t, models.TranslationFrozen, it.TranslationStatus)
	assert.Equal(t, 1500, it.ViewCount)
	assert.Equal(t, 1500, it.PopularityScore, "popularity falls back to views")
	assert.Equal(t, []string{"web", "color"}, it.ReleaseFormats)
	assert.Equal(t, []string{"licensed"}, it.OtherFlags)
	assert.Equal(t, 2019, it.ReleaseYear, "creation date backs the year")
	assert.Equal(t, time.Date(2019, 6, 1, 10, 0, 0, 0, time.UTC), it.AddedAt)
}

func TestNormalizeBlankStringsFallThrough(t *testing.T) {
	it := testNormalizer().Normalize(Record{
		"title":  "   ",
		"name":   "Berserk",
		"author": "",
		"artist": "Miura",
	})
	assert.Equal(t, "Berserk", it.Title)
	assert.Equal(t, "Miura", it.Author)
	assert.Equal(t, "berserk", it.ID)
}

func TestNormalizeReleaseYearChain(t *testing.T) {
	n := testNormalizer()

	cases := []struct {
		name string
		rec  Record
		want int
	}{
		{"explicit year", Record{"year": "2011", "release_date": "2001-01-01"}, 2011},
		{"release date", Record{"release_date": "2005-07-09"}, 2005},
		{"unparsable year falls to date", Record{"year": "soon", "release_date": "2003-01-02"}, 2003},
		{"creation date", Record{"created_at": "2016-02-02 10:11:12"}, 2016},
		{"unix millis", Record{"created_at": float64(1262304000000)}, 2010},
		{"numeric year as date", Record{"release_date": float64(2019)}, 2019},
		{"unix seconds", Record{"release_date": float64(1262304000)}, 2010},
		{"current year", Record{"release_date": "not a date"}, 2024},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.rec).ReleaseYear)
		})
	}
}

func TestScaleRating(t *testing.T) {
	assert.Equal(t, 0.0, scaleRating(-3))
	assert.Equal(t, 0.0, scaleRating(0))
	assert.Equal(t, 10.0, scaleRating(5), "five is read as a five point score")
	assert.Equal(t, 7.5, scaleRating(7.5))
	assert.Equal(t, 10.0, scaleRating(42))
}

func TestNormalizePopularityOverridesViews(t *testing.T) {
	it := Normalize(Record{"views": 10, "popularity": 99, "chapters": -4})
	assert.Equal(t, 10, it.ViewCount)
	assert.Equal(t, 99, it.PopularityScore)
	assert.Zero(t, it.ChapterCount)
}

func TestNormalizeAllKeepsOrder(t *testing.T) {
	items := testNormalizer().NormalizeAll([]Record{{"id": "b"}, {"id": "a"}, {"id": "c"}})
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestNormalizeTagObjectsAndLanguageMaps(t *testing.T) {
	rec := decode(t, `{
		"attributes": {
			"title": {"ja": "ワンピース", "en": "One Piece"},
			"tags": [{"attributes": {"name": {"en": "Pirates"}}}, {"name": "Adventure"}, 7, null]
		}
	}`)
	it := testNormalizer().Normalize(rec)
	assert.Equal(t, "One Piece", it.Title)
	assert.Equal(t, []string{"Pirates", "Adventure", "7"}, it.Tags)
}
