package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"challan-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testChallan() *reconcile.Challan {
	n := "DC-300"
	return &reconcile.Challan{
		Number: &n,
		Lines:  []reconcile.ChallanLine{{Description: "Tee", Size: "M", ExpectedQty: 2}},
	}
}

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore(Config{})

	id, err := s.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	st, err := s.Status(id)
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, st.ChallanNumber)
	assert.False(t, st.HasChallan)
	assert.Zero(t, st.Stickers)

	require.NoError(t, s.SetChallan(id, testChallan()))
	n, err := s.AppendStickers(id, reconcile.Sticker{Style: "Tee", CodeSize: "M"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	st, err = s.Status(id)
	require.NoError(t, err)
	assert.Equal(t, "DC-300", st.ChallanNumber)
	assert.Equal(t, 1, st.Lines)
	assert.Equal(t, 1, st.Stickers)

	require.NoError(t, s.Reset(id))
	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Nil(t, snap.Challan)
	assert.Empty(t, snap.Stickers)

	require.NoError(t, s.Delete(id))
	_, err = s.Snapshot(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)
}

func TestStore_UnknownSession(t *testing.T) {
	s := NewStore(Config{})
	assert.ErrorIs(t, s.SetChallan("nope", testChallan()), ErrNotFound)
	_, err := s.AppendStickers("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Status("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Reset("nope"), ErrNotFound)
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := NewStore(Config{})
	id, _ := s.Create()

	in := testChallan()
	require.NoError(t, s.SetChallan(id, in))
	in.Lines[0].ExpectedQty = 99

	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Challan.Lines[0].ExpectedQty)

	snap.Challan.Lines[0].Description = "changed"
	again, _ := s.Snapshot(id)
	assert.Equal(t, "Tee", again.Challan.Lines[0].Description)
}

func TestStore_Limits(t *testing.T) {
	s := NewStore(Config{MaxSessions: 1, MaxStickers: 2})

	id, err := s.Create()
	require.NoError(t, err)
	_, err = s.Create()
	assert.ErrorIs(t, err, ErrLimitReached)

	_, err = s.AppendStickers(id, reconcile.Sticker{Style: "A"}, reconcile.Sticker{Style: "B"})
	require.NoError(t, err)
	_, err = s.AppendStickers(id, reconcile.Sticker{Style: "C"})
	assert.ErrorIs(t, err, ErrLimitReached)

	snap, _ := s.Snapshot(id)
	assert.Len(t, snap.Stickers, 2)
}

func TestStore_Remaining(t *testing.T) {
	s := NewStore(Config{MaxStickers: 3})
	id, err := s.Create()
	require.NoError(t, err)

	left, err := s.Remaining(id)
	require.NoError(t, err)
	assert.Equal(t, 3, left)

	_, err = s.AppendStickers(id, reconcile.Sticker{Style: "A"}, reconcile.Sticker{Style: "B"})
	require.NoError(t, err)
	left, err = s.Remaining(id)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	_, err = s.Remaining("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	unbounded := NewStore(Config{})
	id, err = unbounded.Create()
	require.NoError(t, err)
	left, err = unbounded.Remaining(id)
	require.NoError(t, err)
	assert.Equal(t, -1, left)
}

func TestStore_RemovedEntryRejectsWrites(t *testing.T) {
	s := NewStore(Config{IdleMinutes: 1})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	deleted, _ := s.Create()
	expired, _ := s.Create()

	// entries a writer looked up just before they were removed
	held := map[string]*entry{}
	for _, id := range []string{deleted, expired} {
		e, err := s.get(id)
		require.NoError(t, err)
		held[id] = e
	}

	require.NoError(t, s.Delete(deleted))
	now = now.Add(2 * time.Minute)
	require.Equal(t, 1, s.Expire())

	for id, e := range held {
		assert.True(t, e.removed, id)

		// put the stale entry back so the lookup itself succeeds
		s.mu.Lock()
		s.sessions[id] = e
		s.mu.Unlock()

		_, err := s.AppendStickers(id, reconcile.Sticker{Style: "A"})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.SetChallan(id, &reconcile.Challan{}), ErrNotFound)
		_, err = s.Snapshot(id)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, e.stickers)
	}
}

func TestStore_Expire(t *testing.T) {
	s := NewStore(Config{IdleMinutes: 10})
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	stale, _ := s.Create()
	now = now.Add(8 * time.Minute)
	fresh, _ := s.Create()
	now = now.Add(5 * time.Minute)

	assert.Equal(t, 1, s.Expire())
	_, err := s.Status(stale)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Status(fresh)
	assert.NoError(t, err)

	s.cfg.IdleMinutes = 0
	assert.Zero(t, s.Expire())
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore(Config{})
	ids := make([]string, 4)
	for i := range ids {
		ids[i], _ = s.Create()
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		for w := 0; w < 10; w++ {
			wg.Add(1)
			go func(id string, w int) {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					_, _ = s.AppendStickers(id, reconcile.Sticker{Style: fmt.Sprintf("w%d", w), CodeSize: "M"})
					_, _ = s.Snapshot(id)
				}
			}(id, w)
		}
	}
	wg.Wait()

	for _, id := range ids {
		st, err := s.Status(id)
		require.NoError(t, err)
		assert.Equal(t, 250, st.Stickers)
	}
}

func TestStore_RunJanitorStops(t *testing.T) {
	s := NewStore(Config{IdleMinutes: 1})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, time.Millisecond, zap.NewNop())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
