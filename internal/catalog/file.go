package catalog

import (
	"context"
	"fmt"
	"os"

	"mangashelf/internal/normalize"
)

// FileSource reads the catalog from a JSON file in any of the payload shapes
// DecodePayload accepts.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return "file" }

func (s *FileSource) FetchAll(ctx context.Context) ([]normalize.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("source file: %w", err)
	}
	records, err := DecodePayload(b)
	if err != nil {
		return nil, fmt.Errorf("source file %s: %w", s.Path, err)
	}
	return records, nil
}
