package browse

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
	"mangashelf/internal/metrics"
)

// Registry holds the open sessions of a server process.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	// OnClose, when set, is called after a session is removed.
	OnClose func(id string)
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open creates a session, registers it and loads it from src. The session is
// returned even when the load fails; it is then in the failed state and err
// carries the cause.
func (r *Registry) Open(ctx context.Context, src catalog.Source, opts Options) (*Session, error) {
	s := NewSession(uuid.NewString(), opts)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	err := s.Load(ctx, src)
	metrics.RecordSessionOpened(string(s.Status()))
	logging.Component("browse").Info().
		Str("session", s.ID).
		Str("status", string(s.Status())).
		Int("items", s.View().Total).
		Msg("session opened")
	return s, err
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Close removes a session. It reports false when id is unknown.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	metrics.RecordSessionClosed()
	if r.OnClose != nil {
		r.OnClose(id)
	}
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions created before now-maxAge and returns how many it
// closed.
func (r *Registry) Sweep(now time.Time, maxAge time.Duration) int {
	r.mu.RLock()
	var expired []string
	for id, s := range r.sessions {
		if now.Sub(s.CreatedAt) > maxAge {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if r.Close(id) {
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 || maxAge <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Sweep(now, maxAge); n > 0 {
				logging.Component("browse").Info().Int("closed", n).Msg("expired sessions swept")
			}
		}
	}
}
