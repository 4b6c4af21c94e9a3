package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/goccy/go-json"

	"mangashelf/internal/normalize"
)

// SaveRecords upserts raw records into the manga table. Records are keyed by
// their normalized id, so re-importing a source updates rows in place. The raw
// record is stored verbatim next to the normalized columns.
func SaveRecords(ctx context.Context, db *sql.DB, source string, n *normalize.Normalizer, records []normalize.Record) (int, error) {
	if n == nil {
		n = normalize.New("")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO manga (id, title, author, genres, status, total_chapters, cover_url, payload, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  title = excluded.title,
		  author = excluded.author,
		  genres = excluded.genres,
		  status = excluded.status,
		  total_chapters = excluded.total_chapters,
		  cover_url = excluded.cover_url,
		  payload = excluded.payload,
		  source = excluded.source
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, rec := range records {
		it := n.Normalize(rec)

		genresJSON, err := json.Marshal(it.Categories)
		if err != nil {
			return saved, fmt.Errorf("marshal genres for %s: %w", it.ID, err)
		}
		payload, err := json.Marshal(rec)
		if err != nil {
			return saved, fmt.Errorf("marshal payload for %s: %w", it.ID, err)
		}
		var cover any
		if it.CoverImage != nil {
			cover = *it.CoverImage
		}

		if _, err := stmt.ExecContext(
			ctx,
			it.ID,
			it.Title,
			it.Author,
			string(genresJSON),
			string(it.TitleStatus),
			it.ChapterCount,
			cover,
			string(payload),
			source,
		); err != nil {
			return saved, fmt.Errorf("exec upsert for %s: %w", it.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return saved, nil
}

// Import fetches src and mirrors it into db.
func Import(ctx context.Context, db *sql.DB, src Source, n *normalize.Normalizer) (int, error) {
	records, err := Fetch(ctx, src)
	if err != nil {
		return 0, err
	}
	return SaveRecords(ctx, db, src.Name(), n, records)
}
