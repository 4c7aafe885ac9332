package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/store"
)

func newManager(t *testing.T) (*Manager, store.Repository) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return NewManager(repo), repo
}

var key = Key{UserID: "anon_1", SessionID: "tab-1"}

func TestDoPersistsState(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	err := m.Do(ctx, key, func(st *State) error {
		st.Chat.Initialize([]domain.Turn{domain.AssistantTurn("hi"), domain.UserTurn("yo")}, time.Now())
		st.SelectImage(domain.SampleImages[0])
		return nil
	})
	require.NoError(t, err)

	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.True(t, st.Chat.Initialized)
	require.Equal(t, 1, st.Chat.Revealed())
	require.Equal(t, 2, st.Chat.Len())
	require.True(t, st.HasImage())
	require.Equal(t, "images/knee_sample_1.png", st.SelectedImagePath)

	other, err := m.View(ctx, Key{UserID: "anon_1", SessionID: "tab-2"})
	require.NoError(t, err)
	require.False(t, other.Chat.Initialized, "sessions are isolated")
}

func TestDoDiscardsOnError(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := m.Do(ctx, key, func(st *State) error {
		st.PredictionDone = true
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.False(t, st.PredictionDone)
}

func TestDoSerializesSameKey(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Do(ctx, key, func(st *State) error {
				st.Chat.Append(domain.UserTurn("msg"))
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 20, st.Chat.Len())
}

func TestReset(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Do(ctx, key, func(st *State) error {
		st.TherapyStarted = true
		return nil
	}))
	require.NoError(t, m.Reset(ctx, key))

	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.False(t, st.TherapyStarted)
}

func TestCorruptRecordStartsOver(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSession(ctx, &domain.SessionRecord{
		UserID: key.UserID, SessionID: key.SessionID, StateJSON: `{"chat": 12}`,
	}))
	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.False(t, st.Chat.Initialized)
}

func TestLoadClampsRevealedCount(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSession(ctx, &domain.SessionRecord{
		UserID: key.UserID, SessionID: key.SessionID,
		StateJSON: `{"chat": {"turns": [{"role": "assistant", "content": "a"}], "revealed_count": 7, "initialized": true}}`,
	}))
	st, err := m.View(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 1, st.Chat.Revealed())
}

func TestSelectCaseHidesPreviousRun(t *testing.T) {
	st := NewState()
	st.SelectCase("Case 1")
	st.TherapyStarted = true

	st.SelectCase("Case 1")
	require.True(t, st.TherapyStarted)

	st.SelectCase("Case 2")
	require.False(t, st.TherapyStarted)
	require.Equal(t, "Case 2", st.SelectedCase)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, repo.UpsertSession(ctx, &domain.SessionRecord{
		UserID: "u", SessionID: "stale", StateJSON: `{}`, CreatedAt: old, UpdatedAt: old,
	}))
	require.NoError(t, m.Do(ctx, Key{UserID: "u", SessionID: "fresh"}, func(st *State) error {
		st.SelectedCase = "Case 1"
		return nil
	}))

	var cleaned []Key
	n := m.Sweep(ctx, time.Hour, func(k Key) { cleaned = append(cleaned, k) })
	require.Equal(t, 1, n)
	require.Equal(t, []Key{{UserID: "u", SessionID: "stale"}}, cleaned)

	rec, err := repo.GetSession(ctx, "u", "fresh")
	require.NoError(t, err)
	require.NotNil(t, rec)

	require.Zero(t, m.Sweep(ctx, time.Hour, nil))
}

func TestLocksReleasedAfterUse(t *testing.T) {
	m, repo := newManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		k := Key{UserID: "anon_1", SessionID: fmt.Sprintf("tab-%d", i)}
		wg.Add(2)
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				err := m.Do(ctx, k, func(st *State) error {
					st.Chat.Append(domain.UserTurn("msg"))
					return nil
				})
				require.NoError(t, err)
			}()
		}
	}
	wg.Wait()
	require.Zero(t, m.lockCount())

	for i := 0; i < 50; i++ {
		require.NoError(t, m.Reset(ctx, Key{UserID: "anon_1", SessionID: fmt.Sprintf("tab-%d", i)}))
	}
	require.Zero(t, m.lockCount())

	old := time.Now().Add(-3 * time.Hour)
	require.NoError(t, repo.UpsertSession(ctx, &domain.SessionRecord{
		UserID: "u", SessionID: "stale", StateJSON: `{}`, CreatedAt: old, UpdatedAt: old,
	}))
	require.Equal(t, 1, m.Sweep(ctx, time.Hour, nil))
	require.Zero(t, m.lockCount())
}
