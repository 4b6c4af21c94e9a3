package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/normalize"
	"mangashelf/pkg/database"
)

func TestSaveRecordsRoundTripsThroughDBSource(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	n := normalize.New("https://cdn.example.com")

	records := []normalize.Record{
		{"id": "one-piece", "title": "One Piece", "genres": []any{"Adventure"}, "tags": []any{"Pirates"}, "rating": 4.5},
		{"manga": map[string]any{"name": "Vinland Saga", "creator": "Yukimura", "chapters": "210", "cover": "covers:vs.jpg"}},
	}
	saved, err := SaveRecords(ctx, db, "test", n, records)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	// Re-import updates in place.
	records[0]["title"] = "One Piece (Colored)"
	_, err = SaveRecords(ctx, db, "test", n, records[:1])
	require.NoError(t, err)

	got, err := NewDBSource(db).FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	items := n.NormalizeAll(got)
	assert.Equal(t, "one-piece", items[0].ID)
	assert.Equal(t, "One Piece (Colored)", items[0].Title)
	assert.Equal(t, []string{"Pirates"}, items[0].Tags)
	assert.Equal(t, 9.0, items[0].Rating)

	assert.Equal(t, "vinland-saga", items[1].ID)
	assert.Equal(t, "Yukimura", items[1].Author)
	assert.Equal(t, 210, items[1].ChapterCount)
	if assert.NotNil(t, items[1].CoverImage) {
		assert.Equal(t, "https://cdn.example.com/covers/vs.jpg", *items[1].CoverImage)
	}
	assert.False(t, items[1].AddedAt.IsZero())
}

func TestImport(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer db.Close()

	src := stubSource{name: "stub", records: []normalize.Record{{"title": "A"}, {"title": "B"}}}
	n, err := Import(context.Background(), db, src, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var source string
	require.NoError(t, db.QueryRow(`SELECT source FROM manga WHERE id = 'a'`).Scan(&source))
	assert.Equal(t, "stub", source)
}
