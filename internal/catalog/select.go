package catalog

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var ErrNoSource = errors.New("no catalog source configured")

// Select picks where sessions load from. A URL wins over a file; with
// neither, the imported sqlite table is used when db is non-nil. Files ending
// in .csv are read as spreadsheets, anything else as JSON.
func Select(url, file string, timeout time.Duration, db *sql.DB) (Source, error) {
	switch {
	case url != "":
		return NewHTTPSource(url, timeout), nil
	case strings.EqualFold(filepath.Ext(file), ".csv"):
		return NewCSVSource(file), nil
	case file != "":
		return NewFileSource(file), nil
	case db != nil:
		return NewDBSource(db), nil
	}
	return nil, ErrNoSource
}
