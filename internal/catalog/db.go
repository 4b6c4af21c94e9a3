package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"mangashelf/internal/normalize"
)

// DBSource reads the catalog mirrored into the local manga table.
type DBSource struct {
	DB *sql.DB
}

func NewDBSource(db *sql.DB) *DBSource {
	return &DBSource{DB: db}
}

func (s *DBSource) Name() string { return "sqlite" }

// FetchAll returns one record per row in import order. The stored payload is
// the base; columns only fill keys the payload does not have.
func (s *DBSource) FetchAll(ctx context.Context) ([]normalize.Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, author, genres, status, total_chapters, cover_url, payload, imported_at
		FROM manga
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("source sqlite: query: %w", err)
	}
	defer rows.Close()

	out := make([]normalize.Record, 0)
	for rows.Next() {
		var (
			id, title   string
			author      sql.NullString
			genresJSON  string
			status      sql.NullString
			chapters    sql.NullInt64
			coverURL    sql.NullString
			payloadJSON string
			importedAt  time.Time
		)
		if err := rows.Scan(
			&id, &title, &author, &genresJSON, &status, &chapters, &coverURL, &payloadJSON, &importedAt,
		); err != nil {
			return nil, fmt.Errorf("source sqlite: scan: %w", err)
		}

		rec := normalize.Record{}
		_ = json.Unmarshal([]byte(payloadJSON), &rec)
		if rec == nil {
			rec = normalize.Record{}
		}

		fill(rec, "id", id)
		fill(rec, "title", title)
		if author.Valid {
			fill(rec, "author", author.String)
		}
		var genres []any
		if json.Unmarshal([]byte(genresJSON), &genres) == nil && len(genres) > 0 {
			fill(rec, "genres", genres)
		}
		if status.Valid {
			fill(rec, "status", status.String)
		}
		if chapters.Valid {
			fill(rec, "chapters_count", float64(chapters.Int64))
		}
		if coverURL.Valid && coverURL.String != "" {
			fill(rec, "cover_url", coverURL.String)
		}
		fill(rec, "added_at", importedAt.UTC().Format(time.RFC3339))

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source sqlite: rows: %w", err)
	}
	return out, nil
}

func fill(rec normalize.Record, key string, v any) {
	if _, ok := rec[key]; !ok {
		rec[key] = v
	}
}
