package repository

import (
	"context"
	"database/sql"
)

// BoardRepo handles boards.
type BoardRepo struct {
	db *sql.DB
}

func NewBoardRepo(db *sql.DB) *BoardRepo {
	return &BoardRepo{db: db}
}

func (r *BoardRepo) Upsert(ctx context.Context, b Board) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO boards(id, name, created_at, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 updated_at=CURRENT_TIMESTAMP;
	`, b.ID, b.Name)
	return err
}

func (r *BoardRepo) List(ctx context.Context) ([]Board, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM boards ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetByName returns the board with the given name, or sql.ErrNoRows.
func (r *BoardRepo) GetByName(ctx context.Context, name string) (Board, error) {
	var b Board
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM boards WHERE name = ?`, name).
		Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *BoardRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	return err
}
