package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return NewStore(db)
}

func TestMigrate_Idempotent(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, Migrate(context.Background(), st.db))

	var n int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_GameLifecycle(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	id, err := st.StartGame(ctx, "sess-a", 4, 10)
	require.NoError(t, err)
	require.NoError(t, st.RecordObservation(ctx, id, 1, "0123", 1, 1, 720))
	require.NoError(t, st.RecordObservation(ctx, id, 2, "1045", 0, 2, 60))
	require.NoError(t, st.RecordObservation(ctx, id, 2, "1045", 0, 2, 60))
	require.NoError(t, st.FinishGame(ctx, id, StatusSolved, "5310"))
	// Already closed: ignored.
	require.NoError(t, st.FinishGame(ctx, id, StatusAbandoned, ""))

	games, err := st.Games(ctx, "sess-a", 0)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, StatusSolved, games[0].Status)
	assert.Equal(t, 2, games[0].Rounds)
	assert.Equal(t, "5310", games[0].Answer)
	assert.NotEmpty(t, games[0].FinishedAt)

	var obs int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(1) FROM observations WHERE game_id=?`, id).Scan(&obs))
	assert.Equal(t, 2, obs)

	other, err := st.Games(ctx, "sess-b", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_Stats(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	empty, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, empty)

	play := func(rounds int, status string) {
		id, err := st.StartGame(ctx, "s", 4, 10)
		require.NoError(t, err)
		for r := 1; r <= rounds; r++ {
			require.NoError(t, st.RecordObservation(ctx, id, r, "0123", 0, 0, 1))
		}
		require.NoError(t, st.FinishGame(ctx, id, status, ""))
	}
	play(4, StatusSolved)
	play(6, StatusSolved)
	play(2, StatusInconsistent)
	_, err = st.StartGame(ctx, "s", 4, 10) // still playing, excluded
	require.NoError(t, err)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Games)
	assert.Equal(t, 2, stats.Solved)
	assert.Equal(t, 1, stats.Inconsistent)
	assert.InDelta(t, 5.0, stats.AverageRounds, 1e-9)
	assert.Equal(t, 6, stats.MaxRounds)
}
