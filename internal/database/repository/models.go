package repository

import "time"

// Board represents a board row.
type Board struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Task represents a task row. Weight drives the bubble radius; DeletedAt set
// means soft-deleted (restorable from the deleted-tasks view until purged).
type Task struct {
	ID          string
	BoardID     string
	Title       string
	Notes       *string
	Color       string
	Weight      int
	Completed   bool
	CompletedAt *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
