package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/bubbleboard/internal/database"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/theme"
)

func newTestService(t *testing.T) (*BoardService, *sql.DB, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := &BoardService{
		Boards: repository.NewBoardRepo(db),
		Tasks:  repository.NewTaskRepo(db),
		Theme:  theme.Default(),
	}
	return svc, db, ctx
}

func TestEnsureBoardIdempotent(t *testing.T) {
	t.Parallel()
	svc, _, ctx := newTestService(t)

	a, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)
	b, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)

	boards, err := svc.Boards.List(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
}

func TestAddFeedAndRadiusMapping(t *testing.T) {
	t.Parallel()
	svc, _, ctx := newTestService(t)
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)

	_, err = svc.Add(ctx, board.ID, "water plants", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, board.ID, "tax return", 5)
	require.NoError(t, err)
	_, err = svc.Add(ctx, board.ID, "   ", 3)
	require.Error(t, err, "empty titles are rejected")

	feed, err := svc.Feed(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, 30.0, feed[0].Radius)
	require.Equal(t, 120.0, feed[1].Radius)
	require.NotEmpty(t, feed[0].Color)

	// Weight outside the range clamps rather than overflowing the radius.
	task, err := svc.Add(ctx, board.ID, "huge", 99)
	require.NoError(t, err)
	require.Equal(t, maxWeight, task.Weight)
}

func TestToggleCompleteRoundTrip(t *testing.T) {
	t.Parallel()
	svc, _, ctx := newTestService(t)
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)

	task, err := svc.Add(ctx, board.ID, "call dentist", 2)
	require.NoError(t, err)

	require.NoError(t, svc.ToggleComplete(ctx, task.ID))
	got, err := svc.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)

	// Completed tasks stay in the feed (muted); the canvas filters them.
	feed, err := svc.Feed(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.True(t, feed[0].Completed)
	require.NotEqual(t, task.Color, feed[0].Color)

	require.NoError(t, svc.ToggleComplete(ctx, task.ID))
	got, err = svc.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	require.False(t, got.Completed)
	require.Nil(t, got.CompletedAt)
}

func TestDeleteAndRestore(t *testing.T) {
	t.Parallel()
	svc, _, ctx := newTestService(t)
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)

	task, err := svc.Add(ctx, board.ID, "old chore", 2)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, task.ID))
	feed, err := svc.Feed(ctx, board.ID)
	require.NoError(t, err)
	require.Empty(t, feed, "soft-deleted tasks leave the feed")

	deleted, err := svc.Deleted(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	require.NoError(t, svc.Restore(ctx, task.ID))
	feed, err = svc.Feed(ctx, board.ID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.False(t, feed[0].Completed)
}

func TestSearchRanksByDistance(t *testing.T) {
	t.Parallel()
	svc, _, ctx := newTestService(t)
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)

	for _, title := range []string{"water plants", "tax return", "call dentist"} {
		_, err := svc.Add(ctx, board.ID, title, 2)
		require.NoError(t, err)
	}

	res, err := svc.Search(ctx, board.ID, "plants")
	require.NoError(t, err)
	require.NotEmpty(t, res)
	require.Equal(t, "water plants", res[0].Task.Title)
	require.Zero(t, res[0].Score)

	// Typo still finds the word.
	res, err = svc.Search(ctx, board.ID, "dentst")
	require.NoError(t, err)
	require.NotEmpty(t, res)
	require.Equal(t, "call dentist", res[0].Task.Title)

	res, err = svc.Search(ctx, board.ID, "zzzzzzzz")
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()
	svc, db, ctx := newTestService(t)
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)
	_, err = svc.Add(ctx, board.ID, "anything", 1)
	require.NoError(t, err)

	maint := &MaintenanceService{DB: db, Tasks: svc.Tasks}
	require.NoError(t, maint.Reset(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&count))
	require.Zero(t, count)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM boards").Scan(&count))
	require.Zero(t, count)
}
