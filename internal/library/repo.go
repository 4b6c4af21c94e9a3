package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mangashelf/pkg/models"
)

var ErrNotFound = errors.New("library entry not found")

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Upsert files a title under a list, replacing any previous list.
func (r *Repo) Upsert(ctx context.Context, e models.LibraryEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_library (user_id, manga_id, list, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, manga_id) DO UPDATE SET
			list = excluded.list,
			updated_at = CURRENT_TIMESTAMP
	`, e.UserID, e.MangaID, e.List)
	if err != nil {
		return fmt.Errorf("upsert library entry: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, userID, mangaID string) error {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM user_library
		WHERE user_id = ? AND manga_id = ?
	`, userID, mangaID)
	if err != nil {
		return fmt.Errorf("delete library entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, userID, mangaID string) (*models.LibraryEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT user_id, manga_id, list, updated_at
		FROM user_library
		WHERE user_id = ? AND manga_id = ?
	`, userID, mangaID)

	var e models.LibraryEntry
	if err := row.Scan(&e.UserID, &e.MangaID, &e.List, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get library entry: %w", err)
	}
	return &e, nil
}

// List pages through a user's entries, newest first. An empty list name
// means every list.
func (r *Repo) List(ctx context.Context, userID, list string, limit, offset int) ([]models.LibraryEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	where := `WHERE user_id = ?`
	args := []any{userID}
	if list != "" {
		where += ` AND list = ?`
		args = append(args, list)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_library `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count library: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, manga_id, list, updated_at
		FROM user_library `+where+`
		ORDER BY updated_at DESC, manga_id
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	out := make([]models.LibraryEntry, 0, limit)
	for rows.Next() {
		var e models.LibraryEntry
		if err := rows.Scan(&e.UserID, &e.MangaID, &e.List, &e.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan library row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return out, total, nil
}

// Lists maps every title in the user's library to the lists it is on, the
// shape browsing sessions overlay onto items as user list flags.
func (r *Repo) Lists(ctx context.Context, userID string) (map[string][]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT manga_id, list FROM user_library WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("library lists: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var mangaID, list string
		if err := rows.Scan(&mangaID, &list); err != nil {
			return nil, fmt.Errorf("scan library list: %w", err)
		}
		out[mangaID] = append(out[mangaID], list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
