package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(0)
	s := store.Create()
	require.NotEmpty(t, s.ID)

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	store.Delete(s.ID)
	_, err = store.Get(s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStoreSweepDropsIdleSessions(t *testing.T) {
	store := NewStore(time.Minute)
	stale := store.Create()
	stale.mu.Lock()
	stale.UpdatedAt = time.Now().Add(-2 * time.Minute)
	stale.mu.Unlock()
	fresh := store.Create()

	require.Equal(t, 1, store.Sweep())
	_, err := store.Get(stale.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(fresh.ID)
	require.NoError(t, err)
}

func TestStoreSweepDisabled(t *testing.T) {
	store := NewStore(0)
	s := store.Create()
	s.mu.Lock()
	s.UpdatedAt = time.Now().Add(-time.Hour)
	s.mu.Unlock()
	require.Zero(t, store.Sweep())
}
