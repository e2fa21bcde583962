// Package service holds the application actions behind the canvas intents:
// everything the UI asks for lands here, mutates sqlite, and flows back out as
// a fresh task list.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/bubbleboard/internal/canvas"
	"github.com/jask/bubbleboard/internal/database/repository"
	"github.com/jask/bubbleboard/internal/theme"
)

const (
	minWeight = 1
	maxWeight = 5
)

// BoardService owns task CRUD for one board and converts rows into canvas
// tasks. The canvas never sees the database.
type BoardService struct {
	Boards *repository.BoardRepo
	Tasks  *repository.TaskRepo
	Theme  theme.Theme

	// Radius mapping for task weight; zero values fall back to 30..120.
	MinRadius float64
	MaxRadius float64
}

func (s *BoardService) radiusRange() (float64, float64) {
	lo, hi := s.MinRadius, s.MaxRadius
	if lo <= 0 {
		lo = 30
	}
	if hi <= lo {
		hi = 120
	}
	return lo, hi
}

// Radius maps a task weight onto the bubble radius range.
func (s *BoardService) Radius(weight int) float64 {
	if weight < minWeight {
		weight = minWeight
	}
	if weight > maxWeight {
		weight = maxWeight
	}
	lo, hi := s.radiusRange()
	return lo + (hi-lo)*float64(weight-minWeight)/float64(maxWeight-minWeight)
}

// EnsureBoard returns the named board, creating it when missing.
func (s *BoardService) EnsureBoard(ctx context.Context, name string) (repository.Board, error) {
	b, err := s.Boards.GetByName(ctx, name)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return repository.Board{}, fmt.Errorf("get board %q: %w", name, err)
	}
	b = repository.Board{
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("board:"+name)).String(),
		Name: name,
	}
	if err := s.Boards.Upsert(ctx, b); err != nil {
		return repository.Board{}, fmt.Errorf("create board %q: %w", name, err)
	}
	return b, nil
}

// Feed returns the board's live tasks as canvas tasks: active tasks plus
// completed ones (the canvas applies its own completed filter), soft-deleted
// rows excluded.
func (s *BoardService) Feed(ctx context.Context, boardID string) ([]canvas.Task, error) {
	rows, err := s.Tasks.List(ctx, repository.TaskFilters{BoardID: boardID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	out := make([]canvas.Task, 0, len(rows))
	for i, t := range rows {
		color := t.Color
		if color == "" {
			color = s.Theme.BubbleColor(i)
		}
		if t.Completed {
			color = s.Theme.Muted(color)
		}
		out = append(out, canvas.Task{
			ID:        t.ID,
			Title:     t.Title,
			Radius:    s.Radius(t.Weight),
			Color:     color,
			Completed: t.Completed,
			BoardID:   t.BoardID,
		})
	}
	return out, nil
}

// Deleted returns the board's soft-deleted tasks, most useful for the restore
// surface and diagnostics.
func (s *BoardService) Deleted(ctx context.Context, boardID string) ([]repository.Task, error) {
	rows, err := s.Tasks.List(ctx, repository.TaskFilters{BoardID: boardID, IncludeDeleted: true})
	if err != nil {
		return nil, fmt.Errorf("list deleted: %w", err)
	}
	out := rows[:0]
	for _, t := range rows {
		if t.DeletedAt != nil {
			out = append(out, t)
		}
	}
	return out, nil
}

// Add creates a task with the given title and weight. Empty titles are
// rejected; the color is assigned from the palette by insertion order.
func (s *BoardService) Add(ctx context.Context, boardID, title string, weight int) (repository.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return repository.Task{}, fmt.Errorf("task title is empty")
	}
	if weight < minWeight {
		weight = minWeight
	}
	if weight > maxWeight {
		weight = maxWeight
	}
	existing, err := s.Tasks.List(ctx, repository.TaskFilters{BoardID: boardID, IncludeDeleted: true})
	if err != nil {
		return repository.Task{}, fmt.Errorf("count tasks: %w", err)
	}
	t := repository.Task{
		ID:      uuid.NewString(),
		BoardID: boardID,
		Title:   title,
		Color:   s.Theme.BubbleColor(len(existing)),
		Weight:  weight,
	}
	if err := s.Tasks.Insert(ctx, t); err != nil {
		return repository.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Rename updates a task's title.
func (s *BoardService) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("task title is empty")
	}
	if err := s.Tasks.UpdateTitle(ctx, id, title); err != nil {
		return fmt.Errorf("rename task: %w", err)
	}
	return nil
}

// SetWeight updates a task's weight, clamped to the valid range.
func (s *BoardService) SetWeight(ctx context.Context, id string, weight int) error {
	if weight < minWeight {
		weight = minWeight
	}
	if weight > maxWeight {
		weight = maxWeight
	}
	if err := s.Tasks.UpdateWeight(ctx, id, weight); err != nil {
		return fmt.Errorf("set weight: %w", err)
	}
	return nil
}

// ToggleComplete flips the completed flag.
func (s *BoardService) ToggleComplete(ctx context.Context, id string) error {
	t, err := s.Tasks.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if err := s.Tasks.SetCompleted(ctx, id, !t.Completed); err != nil {
		return fmt.Errorf("toggle complete: %w", err)
	}
	return nil
}

// Delete soft-deletes a task (the drop-zone release on an active task).
func (s *BoardService) Delete(ctx context.Context, id string) error {
	if err := s.Tasks.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Restore returns a completed or soft-deleted task to the active board (the
// drop-zone release in the completed view).
func (s *BoardService) Restore(ctx context.Context, id string) error {
	if err := s.Tasks.Restore(ctx, id); err != nil {
		return fmt.Errorf("restore task: %w", err)
	}
	return nil
}
