package browse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryOpenGetClose(t *testing.T) {
	r := NewRegistry()
	var closed []string
	r.OnClose = func(id string) { closed = append(closed, id) }

	s, err := r.Open(context.Background(), &stubSource{records: bigCatalog(5)}, Options{})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	assert.True(t, r.Close(s.ID))
	assert.False(t, r.Close(s.ID))
	assert.Equal(t, []string{s.ID}, closed)
	assert.Zero(t, r.Len())
}

func TestRegistryKeepsFailedSessions(t *testing.T) {
	r := NewRegistry()
	s, err := r.Open(context.Background(), &stubSource{err: errors.New("offline")}, Options{})
	require.Error(t, err)
	require.NotNil(t, s)

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got.Status())
}

func TestRegistrySweep(t *testing.T) {
	r := NewRegistry()
	old, _ := r.Open(context.Background(), &stubSource{}, Options{})
	fresh, _ := r.Open(context.Background(), &stubSource{}, Options{})
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	assert.Equal(t, 1, r.Sweep(time.Now(), time.Hour))
	_, ok := r.Get(old.ID)
	assert.False(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestRegistryRunStopsWithContext(t *testing.T) {
	r := NewRegistry()
	s, _ := r.Open(context.Background(), &stubSource{}, Options{})
	s.CreatedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond, time.Minute)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
