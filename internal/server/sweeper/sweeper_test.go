package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu    sync.Mutex
	calls []time.Time
	n     int64
	err   error
}

func (f *fakeStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return f.n, f.err
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestSweepOnce_PassesNow(t *testing.T) {
	store := &fakeStore{n: 3}
	s := NewSweeper(store, time.Hour, logging.Nop{})
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, []time.Time{fixed}, store.calls)
}

func TestSweepOnce_Error(t *testing.T) {
	boom := errors.New("boom")
	s := NewSweeper(&fakeStore{err: boom}, time.Hour, logging.Nop{})

	_, err := s.SweepOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_SweepsImmediatelyAndOnTick(t *testing.T) {
	store := &fakeStore{}
	s := NewSweeper(store, 20*time.Millisecond, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return store.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after context cancel")
	}
}

func TestRun_KeepsGoingAfterFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	s := NewSweeper(store, 10*time.Millisecond, logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	assert.Eventually(t, func() bool { return store.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestSweepOnce_TokenStore(t *testing.T) {
	db, rm := repotest.NewSQLite(t)
	ctx := context.Background()

	dir := services.NewDirectory(db, rm, logging.Nop{})
	user, err := dir.FindOrCreate(ctx, &models.Identifiers{Identifier: "https://id.example/alice"})
	require.NoError(t, err)

	tokens := services.NewTokenStore(db, rm, auth.NewCodec([]byte("k")), logging.Nop{})
	_, err = tokens.Issue(ctx, user, auth.Fingerprint("ua"), time.Minute)
	require.NoError(t, err)
	_, err = tokens.Issue(ctx, user, auth.Fingerprint("ua"), time.Hour)
	require.NoError(t, err)

	s := NewSweeper(tokens, time.Hour, logging.Nop{})
	s.now = func() time.Time { return time.Now().Add(30 * time.Minute) }

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
