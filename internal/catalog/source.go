// Package catalog fetches raw catalog records from the places they live: an
// HTTP endpoint, a JSON file or the local SQLite mirror.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mangashelf/internal/logging"
	"mangashelf/internal/metrics"
	"mangashelf/internal/normalize"
)

// Source is implemented by everything that can produce the raw catalog.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]normalize.Record, error)
}

var (
	// ErrRejected is returned when the payload is an {"ok": false} envelope.
	ErrRejected = errors.New("catalog rejected the request")
	// ErrUnexpectedShape is returned for JSON that carries no record list.
	ErrUnexpectedShape = errors.New("unexpected catalog payload")
)

// DecodePayload accepts a bare array, an object with the array under "data"
// or "rows", or an {"ok": false, "message": ...} failure envelope.
// Non-object array elements become empty records.
func DecodePayload(b []byte) ([]normalize.Record, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return toRecords(v), nil
	case map[string]any:
		if ok, present := v["ok"].(bool); present && !ok {
			msg, _ := v["message"].(string)
			if strings.TrimSpace(msg) == "" {
				return nil, ErrRejected
			}
			return nil, fmt.Errorf("%w: %s", ErrRejected, strings.TrimSpace(msg))
		}
		for _, key := range []string{"data", "rows"} {
			if arr, ok := v[key].([]any); ok {
				return toRecords(arr), nil
			}
		}
	}
	return nil, ErrUnexpectedShape
}

func toRecords(arr []any) []normalize.Record {
	out := make([]normalize.Record, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		out = append(out, normalize.Record(m))
	}
	return out
}

// Fetch runs src once, logging and recording the outcome.
func Fetch(ctx context.Context, src Source) ([]normalize.Record, error) {
	log := logging.Component("catalog")
	start := time.Now()

	records, err := src.FetchAll(ctx)
	elapsed := time.Since(start)
	metrics.RecordFetch(src.Name(), elapsed, len(records), err)
	if err != nil {
		log.Warn().Err(err).Str("source", src.Name()).Dur("elapsed", elapsed).Msg("fetch failed")
		return nil, err
	}
	log.Info().Str("source", src.Name()).Int("records", len(records)).Dur("elapsed", elapsed).Msg("fetched catalog")
	return records, nil
}

// MultiSource concatenates several sources in order. A failing source is
// logged and skipped; the fetch fails only when every source fails.
type MultiSource struct {
	Sources []Source
}

func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{Sources: sources}
}

func (m *MultiSource) Name() string {
	names := make([]string, len(m.Sources))
	for i, s := range m.Sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (m *MultiSource) FetchAll(ctx context.Context) ([]normalize.Record, error) {
	log := logging.Component("catalog")
	var (
		all  []normalize.Record
		errs []error
	)
	for _, src := range m.Sources {
		records, err := src.FetchAll(ctx)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("source skipped")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		all = append(all, records...)
	}
	if len(m.Sources) > 0 && len(errs) == len(m.Sources) {
		return nil, errors.Join(errs...)
	}
	if all == nil {
		all = []normalize.Record{}
	}
	return all, nil
}
