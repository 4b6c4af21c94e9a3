package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"mangashelf/internal/normalize"
)

// maxBody caps the catalog response read into memory.
const maxBody = 64 << 20

// HTTPSource GETs the catalog from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Header http.Header
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Header: http.Header{"Accept": []string{"application/json"}},
	}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) FetchAll(ctx context.Context) ([]normalize.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("source http: build request: %w", err)
	}
	for k, vs := range s.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source http: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("source http: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("source http: status %d: %s", resp.StatusCode, errorText(body))
	}

	records, err := DecodePayload(body)
	if err != nil {
		return nil, fmt.Errorf("source http: %w", err)
	}
	return records, nil
}

// errorText pulls a message out of an error body, falling back to the raw
// text trimmed to a readable length.
func errorText(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
