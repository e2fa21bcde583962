package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TaskFilters defines list filters. Deleted rows are excluded unless
// IncludeDeleted is set.
type TaskFilters struct {
	BoardID        string
	Completed      *bool
	IncludeDeleted bool
	Search         string
}

// TaskRepo handles tasks.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

const taskColumns = `id, board_id, title, notes, color, weight, completed, completed_at, deleted_at, created_at, updated_at`

func (r *TaskRepo) Insert(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tasks(id, board_id, title, notes, color, weight, completed, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, t.ID, t.BoardID, t.Title, t.Notes, t.Color, t.Weight, t.Completed)
	return err
}

func (r *TaskRepo) Get(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

func (r *TaskRepo) UpdateTitle(ctx context.Context, id, title string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET title = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, title, id)
	return err
}

func (r *TaskRepo) UpdateNotes(ctx context.Context, id string, notes *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET notes = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, notes, id)
	return err
}

func (r *TaskRepo) UpdateWeight(ctx context.Context, id string, weight int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET weight = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, weight, id)
	return err
}

func (r *TaskRepo) UpdateColor(ctx context.Context, id, color string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET color = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, color, id)
	return err
}

// SetCompleted flips the completed flag, stamping or clearing completed_at.
func (r *TaskRepo) SetCompleted(ctx context.Context, id string, completed bool) error {
	if completed {
		_, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = 1, completed_at=CURRENT_TIMESTAMP, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = 0, completed_at=NULL, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// SoftDelete marks the task deleted without losing it.
func (r *TaskRepo) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET deleted_at=CURRENT_TIMESTAMP, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// Restore clears a soft delete and the completed flag, returning the task to
// the active board.
func (r *TaskRepo) Restore(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET deleted_at=NULL, completed = 0, completed_at=NULL, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

// PurgeDeleted permanently removes soft-deleted rows older than days.
func (r *TaskRepo) PurgeDeleted(ctx context.Context, days int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE deleted_at IS NOT NULL AND deleted_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *TaskRepo) List(ctx context.Context, f TaskFilters) ([]Task, error) {
	var where []string
	var args []interface{}

	if f.BoardID != "" {
		where = append(where, "board_id = ?")
		args = append(args, f.BoardID)
	}
	if f.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *f.Completed)
	}
	if !f.IncludeDeleted {
		where = append(where, "deleted_at IS NULL")
	}
	if f.Search != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.BoardID, &t.Title, &t.Notes, &t.Color, &t.Weight,
		&t.Completed, &t.CompletedAt, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
