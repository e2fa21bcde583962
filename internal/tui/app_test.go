package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/bubbleboard/internal/config"
	"github.com/jask/bubbleboard/internal/database"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/service"
	"github.com/jask/bubbleboard/internal/theme"
)

func newTestApp(t *testing.T) (*App, context.Context) {
	t.Helper()

	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := &service.BoardService{
		Boards: repository.NewBoardRepo(db),
		Tasks:  repository.NewTaskRepo(db),
		Theme:  theme.Default(),
	}
	board, err := svc.EnsureBoard(ctx, "default")
	require.NoError(t, err)

	cfg, err := config.Load()
	require.NoError(t, err)

	maint := &service.MaintenanceService{DB: db, Tasks: svc.Tasks}
	return New(ctx, cfg, theme.Default(), board, svc, maint), ctx
}

// run feeds a message through Update and returns the resulting message from
// any command, recursively settling batches.
func run(t *testing.T, a *App, msg tea.Msg) {
	t.Helper()
	model, cmd := a.Update(msg)
	require.Same(t, a, model)
	settle(t, a, cmd)
}

func settle(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	switch m := msg.(type) {
	case tea.BatchMsg:
		for _, c := range m {
			settle(t, a, c)
		}
	case tickMsg:
		// don't follow the frame loop in tests
	default:
		if msg == nil {
			return
		}
		run(t, a, msg)
	}
}

func TestAddTaskFlowRendersBubble(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	a, _ := newTestApp(t)

	run(t, a, tea.WindowSizeMsg{Width: 100, Height: 40})
	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	require.Equal(t, modalAdd, a.modal)

	for _, r := range "water plants" {
		run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	run(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modalNone, a.modal)

	// Let the bubble fly in.
	now := time.Now()
	for i := 0; i < 400; i++ {
		now = now.Add(16 * time.Millisecond)
		a.frame = a.cv.Tick(now)
	}

	view := a.View()
	require.Contains(t, view, "water plants")
	require.Contains(t, view, "default")
}

func TestCompletedViewToggle(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	a, _ := newTestApp(t)

	run(t, a, tea.WindowSizeMsg{Width: 80, Height: 30})
	require.False(t, a.cv.ShowCompleted())

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.True(t, a.cv.ShowCompleted())
	require.Contains(t, a.View(), "completed")

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.False(t, a.cv.ShowCompleted())
}

func TestSearchModalFindsTask(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	a, ctx := newTestApp(t)
	run(t, a, tea.WindowSizeMsg{Width: 80, Height: 30})

	_, err := a.svc.Add(ctx, a.board.ID, "call dentist", 2)
	require.NoError(t, err)
	settle(t, a, a.loadTasks())

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	require.Equal(t, modalSearch, a.modal)
	for _, r := range "dentist" {
		run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	require.NotEmpty(t, a.searchResults)
	require.Equal(t, "call dentist", a.searchResults[0].Task.Title)

	run(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, modalEdit, a.modal)
	require.Equal(t, a.searchResults[0].Task.ID, a.cv.Selected())
}

func TestShowCompletedStartsFromConfig(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("BUBBLEBOARD_UI_SHOW_COMPLETED", "true")
	a, _ := newTestApp(t)
	require.True(t, a.cv.ShowCompleted())
}

func TestWipeBoardAssignsBoardInUpdate(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	a, ctx := newTestApp(t)
	run(t, a, tea.WindowSizeMsg{Width: 80, Height: 30})

	_, err := a.svc.Add(ctx, a.board.ID, "wash the car", 2)
	require.NoError(t, err)
	settle(t, a, a.loadTasks())

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'X'}})
	require.Equal(t, modalConfirmWipe, a.modal)
	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})

	require.Equal(t, modalNone, a.modal)
	require.Equal(t, "board wiped", a.status)
	require.NotEmpty(t, a.board.ID, "the fresh board lands on the model")

	tasks, err := a.svc.Feed(ctx, a.board.ID)
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestDeletedViewRestoresTask(t *testing.T) {
	t.Setenv("BUBBLEBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	a, ctx := newTestApp(t)
	run(t, a, tea.WindowSizeMsg{Width: 80, Height: 30})

	task, err := a.svc.Add(ctx, a.board.ID, "old chore", 2)
	require.NoError(t, err)
	require.NoError(t, a.svc.Delete(ctx, task.ID))
	settle(t, a, a.loadTasks())

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'D'}})
	require.Equal(t, modalDeleted, a.modal)
	require.Len(t, a.deleted, 1)
	require.Contains(t, a.View(), "old chore")

	run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	require.Equal(t, modalNone, a.modal)

	tasks, err := a.svc.Feed(ctx, a.board.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1, "restored task is live again")
}

func TestGridRunsGroupColors(t *testing.T) {
	t.Parallel()
	g := newCellGrid(6, 2)
	g.text(0, 0, "ab", "#ff0000")
	g.text(2, 0, "cd", "#ff0000")
	out := g.String()
	require.Contains(t, out, "abcd")
	require.Equal(t, 2, strings.Count(out, "\n")+1, "two rows")
}
