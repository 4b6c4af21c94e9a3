package facet

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/normalize"
	"mangashelf/internal/ranker"
	"mangashelf/pkg/models"
)

func catalog() []models.Item {
	return []models.Item{
		{ID: "1", Title: "Frieren", Author: "Yamada", Kind: models.KindManga, Categories: []string{"Fantasy", "Drama"}, Tags: []string{"Magic"}, ChapterCount: 120, Rating: 9.1, ReleaseYear: 2020, ReleaseFormats: []string{"web", "print"}},
		{ID: "2", Title: "Solo Leveling", Author: "Chugong", Kind: models.KindManhwa, Categories: []string{"Action", "Fantasy"}, Tags: []string{"Dungeons"}, ChapterCount: 200, Rating: 8.4, ReleaseYear: 2018, ReleaseFormats: []string{"web", "color"}},
		{ID: "3", Title: "Mo Dao Zu Shi", Author: "Mo Xiang Tong Xiu", Kind: models.KindManhua, Categories: []string{"Action"}, Tags: []string{"Cultivation", "Magic"}, ChapterCount: 201, Rating: 7.0, ReleaseYear: 2016, ReleaseFormats: []string{"web"}},
		{ID: "4", Title: "Untitled", Author: "Unknown author", Categories: []string{}, Tags: []string{}, ReleaseFormats: []string{"web"}},
	}
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestInitialStateMatchesEverything(t *testing.T) {
	items := catalog()
	assert.Equal(t, items, Filter(items, Initial()))
}

func TestZeroStateMatchesEverything(t *testing.T) {
	items := catalog()
	assert.Equal(t, ids(items), ids(Filter(items, State{})))
}

func TestExclusionTakesPrecedence(t *testing.T) {
	s := Apply(Initial(), CycleTri(Tags, "Cultivation"))
	s = Apply(s, CycleTri(Tags, "Magic"))
	s = Apply(s, CycleTri(Tags, "Magic"))
	require.Equal(t, Exclude, s.Tri(Tags, "Magic"))
	require.Equal(t, Include, s.Tri(Tags, "Cultivation"))

	assert.Empty(t, ids(Filter(catalog(), s)), "item 3 carries an included tag but also the excluded one")
}

func TestMatchTriStrictAndAny(t *testing.T) {
	flags := TriMap{"A": Include, "B": Include}

	assert.True(t, MatchTri(flags, []string{"A"}, false))
	assert.False(t, MatchTri(flags, []string{"A"}, true))
	assert.True(t, MatchTri(flags, []string{"A", "B"}, false))
	assert.True(t, MatchTri(flags, []string{"B", "C", "A"}, true))
}

func TestMatchTriEmptyValues(t *testing.T) {
	assert.False(t, MatchTri(TriMap{"A": Include}, nil, false))
	assert.False(t, MatchTri(TriMap{"A": Include}, nil, true))
	assert.True(t, MatchTri(TriMap{"A": Exclude}, nil, true))
	assert.True(t, MatchTri(TriMap{}, nil, true))
}

func TestStrictCategoriesThroughState(t *testing.T) {
	s := Apply(Initial(), CycleTri(Categories, "Action"))
	s = Apply(s, CycleTri(Categories, "Fantasy"))
	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(catalog(), s)))

	s = Apply(s, SetStrict(Categories, true))
	assert.Equal(t, []string{"2"}, ids(Filter(catalog(), s)))
}

func TestRangeIsInclusive(t *testing.T) {
	r := Range{Max: Float(200)}
	assert.True(t, InRange(200, r))
	assert.False(t, InRange(201, r))
	assert.True(t, InRange(3, Range{Min: Float(3)}))
	assert.False(t, InRange(2.99, Range{Min: Float(3)}))
	assert.True(t, InRange(-1e9, Range{}))

	s := Apply(Initial(), SetRange(ChapterCountField, Keep(), To(200)))
	assert.Equal(t, []string{"1", "2", "4"}, ids(Filter(catalog(), s)))
}

func TestNormalizedRatingAgainstRange(t *testing.T) {
	it := normalize.Normalize(normalize.Record{"release_year": 2020.0, "rating": 4.5, "chapters_count": "12"})
	items := []models.Item{it}

	pass := Apply(Initial(), SetRange(RatingField, To(8), Keep()))
	fail := Apply(Initial(), SetRange(RatingField, To(9.5), Keep()))
	assert.Len(t, Filter(items, pass), 1)
	assert.Empty(t, Filter(items, fail))
}

func TestCycleTriReturnsToNeutral(t *testing.T) {
	s := Initial()
	for range 3 {
		s = Apply(s, CycleTri(Tags, "Magic"))
	}
	_, present := s.TagFlags["Magic"]
	assert.False(t, present)
	assert.Empty(t, s.TagFlags)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	before := Apply(Initial(), CycleTri(Categories, "Drama"))
	before = Apply(before, ToggleMulti(KindField, "manhwa"))
	before = Apply(before, SetRange(RatingField, To(5), To(9)))
	snapshot, err := json.Marshal(before)
	require.NoError(t, err)

	after := Apply(before, CycleTri(Categories, "Drama"))
	after = Apply(after, ToggleMulti(KindField, "manhwa"))
	after = Apply(after, SetRange(RatingField, Clear(), Keep()))
	after = Apply(after, ClearTri(Categories))

	again, err := json.Marshal(before)
	require.NoError(t, err)
	assert.JSONEq(t, string(snapshot), string(again))
	assert.Equal(t, Include, before.Tri(Categories, "Drama"))
	assert.Empty(t, after.Kind)
	assert.Nil(t, after.Rating.Min)
	assert.Equal(t, 9.0, *after.Rating.Max)
}

func TestSetRangeMerges(t *testing.T) {
	s := Apply(Initial(), SetRange(ReleaseYearField, To(2000), To(2010)))
	s = Apply(s, SetRange(ReleaseYearField, Keep(), To(2015)))
	assert.Equal(t, 2000.0, *s.ReleaseYear.Min, "omitted bound is kept")
	assert.Equal(t, 2015.0, *s.ReleaseYear.Max)

	s = Apply(s, SetRange(ReleaseYearField, Clear(), Keep()))
	assert.Nil(t, s.ReleaseYear.Min)
	assert.Equal(t, 2015.0, *s.ReleaseYear.Max)
}

func TestToggleMulti(t *testing.T) {
	s := Apply(Initial(), ToggleMulti(KindField, "manhwa"))
	s = Apply(s, ToggleMulti(KindField, "manhua"))
	assert.Equal(t, []string{"2", "3"}, ids(Filter(catalog(), s)))

	s = Apply(s, ToggleMulti(KindField, "manhwa"))
	assert.Equal(t, []string{"3"}, ids(Filter(catalog(), s)))
}

func TestReleaseFormatMatchesAnyOfTheItemsFormats(t *testing.T) {
	s := Apply(Initial(), ToggleMulti(ReleaseFormatField, "color"))
	assert.Equal(t, []string{"2"}, ids(Filter(catalog(), s)))
}

func TestSearchAndSortAndReset(t *testing.T) {
	s := Apply(Initial(), SetSearch("  CHUGONG "))
	s = Apply(s, SetSort(ranker.Rating))
	assert.Equal(t, []string{"2"}, ids(Filter(catalog(), s)))
	assert.Equal(t, ranker.Rating, s.SortKey)

	s = Apply(s, SetSearch("   "))
	assert.Len(t, Filter(catalog(), s), 4)

	s = Apply(s, CycleTri(Tags, "Magic"))
	assert.Equal(t, Initial(), Apply(s, Reset()))
}

func TestUnknownVocabularyValueOnlyAffectsCarriers(t *testing.T) {
	s := Apply(Initial(), CycleTri(Tags, "Not A Real Tag"))
	s = Apply(s, CycleTri(Tags, "Not A Real Tag"))
	assert.Len(t, Filter(catalog(), s), 4)
}

func TestApplyUnknownFieldPanics(t *testing.T) {
	assert.Panics(t, func() { Apply(Initial(), Action{Type: TypeCycleTri, Field: "genres", Value: "x"}) })
	assert.Panics(t, func() { Apply(Initial(), Action{Type: TypeToggleMulti, Field: "tags", Value: "x"}) })
	assert.Panics(t, func() { Apply(Initial(), Action{Type: TypeSetRange, Field: "views"}) })
	assert.Panics(t, func() { Apply(Initial(), Action{Type: "explode"}) })
}

func TestValidate(t *testing.T) {
	valid := []Action{
		CycleTri(Tags, "Magic"),
		ClearTri(Categories),
		SetStrict(Tags, true),
		ToggleMulti(UserListFlagsField, models.ListReading),
		SetRange(RatingField, To(1), Clear()),
		SetSearch(""),
		SetSort(ranker.NameDesc),
		Reset(),
	}
	for _, a := range valid {
		assert.NoError(t, a.Validate(), a.Type)
	}

	invalid := []Action{
		{Type: TypeCycleTri, Field: "genres", Value: "x"},
		{Type: TypeCycleTri, Field: "tags", Value: " "},
		{Type: TypeToggleMulti, Field: "kind"},
		{Type: TypeSetRange, Field: "views"},
		{Type: TypeSetSort, Sort: "random"},
		{Type: "explode"},
	}
	for _, a := range invalid {
		assert.ErrorIs(t, a.Validate(), ErrInvalidAction, a.Type)
	}
}

func TestActionJSONKeepsOmittedAndNullBoundsApart(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"type":"set_range","field":"rating","min":null}`), &a))
	assert.Equal(t, Clear(), a.Min)
	assert.Equal(t, Keep(), a.Max)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"set_range","field":"rating","max":7.5}`), &a))
	assert.Equal(t, Keep(), a.Min)
	assert.Equal(t, 7.5, *a.Max.Value)

	err := a.UnmarshalJSON([]byte(`{"type":"set_range","field":"rating","min":"high"}`))
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestActionJSONEncodesOnlyRelevantFields(t *testing.T) {
	b, err := json.Marshal(SetRange(RatingField, Clear(), Keep()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"set_range","field":"rating","min":null}`, string(b))

	b, err = json.Marshal(CycleTri(Tags, "Magic"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"cycle_tri","field":"tags","value":"Magic"}`, string(b))
}

func TestStateJSON(t *testing.T) {
	s := Apply(Initial(), CycleTri(Tags, "Magic"))
	s = Apply(s, ToggleMulti(KindField, "manhua"))
	s = Apply(s, ToggleMulti(KindField, "manga"))

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.Equal(t, map[string]any{"Magic": "include"}, doc["tag_flags"])
	assert.Equal(t, []any{"manga", "manhua"}, doc["kind"])
	assert.Equal(t, "popularity", doc["sort_key"])

	var back State
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s, back)
}
