package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/browse"
	"mangashelf/internal/catalog"
	"mangashelf/internal/facet"
	"mangashelf/internal/normalize"
	"mangashelf/internal/ranker"
	"mangashelf/pkg/models"
)

func parse(t *testing.T, args ...string) *filters {
	t.Helper()
	f := newFilters()
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return f
}

func TestFiltersToState(t *testing.T) {
	f := parse(t,
		"--tag", "Magic", "--no-tag", "Gore", "--all-tags",
		"--category", "Action,Drama",
		"--kind", "manhwa",
		"--chapters-min", "100", "--rating-max", "8,5",
		"--search", "  solo ",
		"--sort", "name_desc",
	)
	actions, err := f.actions()
	require.NoError(t, err)

	s := facet.Initial()
	for _, a := range actions {
		s = facet.Apply(s, a)
	}
	assert.Equal(t, facet.Include, s.Tri(facet.Tags, "Magic"))
	assert.Equal(t, facet.Exclude, s.Tri(facet.Tags, "Gore"))
	assert.True(t, s.TagStrict)
	assert.False(t, s.CategoryStrict)
	assert.Equal(t, facet.Include, s.Tri(facet.Categories, "Drama"))
	assert.True(t, s.Kind.Has("manhwa"))
	assert.Equal(t, 100.0, *s.ChapterCount.Min)
	assert.Nil(t, s.ChapterCount.Max)
	assert.Equal(t, 8.5, *s.Rating.Max)
	assert.Equal(t, "solo", s.SearchText)
	assert.Equal(t, ranker.NameDesc, s.SortKey)
}

func TestFiltersDefaultsAreInitialState(t *testing.T) {
	actions, err := parse(t).actions()
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestFiltersRejectBadInput(t *testing.T) {
	_, err := parse(t, "--year-min", "199x").actions()
	assert.ErrorContains(t, err, "--year-min")

	_, err = parse(t, "--sort", "random").actions()
	assert.ErrorContains(t, err, "--sort")
}

func TestFiltersApplyRepeatedValuesOnce(t *testing.T) {
	f := parse(t, "--tag", "Magic", "--tag", "Magic", "--no-category", "Gore,Gore", "--kind", "manhwa", "--kind", "manhwa")
	actions, err := f.actions()
	require.NoError(t, err)

	s := facet.Initial()
	for _, a := range actions {
		s = facet.Apply(s, a)
	}
	assert.Equal(t, facet.Include, s.Tri(facet.Tags, "Magic"))
	assert.Equal(t, facet.Exclude, s.Tri(facet.Categories, "Gore"))
	assert.True(t, s.Kind.Has("manhwa"))
}

func TestFiltersRejectIncludedAndExcludedValue(t *testing.T) {
	_, err := parse(t, "--tag", "Magic", "--no-tag", "Magic").actions()
	assert.ErrorContains(t, err, "--no-tag")

	_, err = parse(t, "--category", "Drama", "--no-category", "Action,Drama").actions()
	assert.ErrorContains(t, err, `"Drama"`)
}

func TestPrintView(t *testing.T) {
	var buf bytes.Buffer
	v := browse.View{
		Items:      []models.Item{{Title: "Frieren", Author: "Yamada", Kind: models.KindManga, ReleaseYear: 2020, ChapterCount: 120, Rating: 9.1, Tags: []string{"Magic"}}},
		Total:      30,
		TotalPages: 2,
		Page:       1,
		Status:     browse.StatusReady,
	}
	require.NoError(t, printView(&buf, v))
	assert.Contains(t, buf.String(), "Frieren")
	assert.Contains(t, buf.String(), "page 1 of 2 (30 titles)")

	buf.Reset()
	require.NoError(t, printView(&buf, browse.View{Status: browse.StatusReady, Page: 1, TotalPages: 1}))
	assert.Equal(t, "no titles match\n", buf.String())

	err := printView(&buf, browse.View{Status: browse.StatusFailed, Error: "timeout"})
	assert.ErrorContains(t, err, "timeout")
}

func TestWSURL(t *testing.T) {
	u, err := wsURL("http://localhost:8080/", "/sessions/x/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/sessions/x/ws", u)

	u, err = wsURL("https://shelf.example", "/sessions/x/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://shelf.example/sessions/x/ws", u)

	_, err = wsURL("ftp://x", "/")
	assert.Error(t, err)
}

func TestBrowseCommandFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":[
		{"id":"1","title":"Berserk","tags":["Dark"],"rating":9.4},
		{"id":"2","title":"Yotsuba","tags":["Slice of life"],"rating":8.9}
	]}`), 0o600))
	t.Setenv("MANGASHELF_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"browse", "--file", path, "--tag", "Dark", "--json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), `"Berserk"`)
	assert.NotContains(t, out.String(), `"Yotsuba"`)
}

func TestWriteCSVRoundTrips(t *testing.T) {
	items := []models.Item{{
		ID: "b1", Title: "Berserk", Author: "Kentaro Miura", Kind: models.KindManga,
		Categories: []string{"Action", "Drama"}, Tags: []string{"Dark"},
		ReleaseYear: 1989, ChapterCount: 374, Rating: 9.4,
		AgeRating: models.Age18, TitleStatus: models.TitleOngoing, TranslationStatus: models.TranslationOngoing,
		ReleaseFormats: []string{"print"},
	}}
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, items))

	records, err := catalog.ReadCSV(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, records, 1)

	back := normalize.Normalize(records[0])
	assert.Equal(t, "b1", back.ID)
	assert.Equal(t, []string{"Action", "Drama"}, back.Categories)
	assert.Equal(t, 374, back.ChapterCount)
	assert.Equal(t, 9.4, back.Rating)
	assert.Equal(t, 1989, back.ReleaseYear)
	assert.Equal(t, models.Age18, back.AgeRating)
}

func TestExportCommandFiltersByReleaseFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":[
		{"id":"1","title":"Solo Leveling","release_formats":["web","color"]},
		{"id":"2","title":"Berserk","release_formats":["print"]}
	]}`), 0o600))
	t.Setenv("MANGASHELF_CONFIG", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"export", "--file", path, "--format", "json", "--release-format", "color"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), `"Solo Leveling"`)
	assert.NotContains(t, out.String(), `"Berserk"`)
	assert.Contains(t, out.String(), `"total": 1`)
}
