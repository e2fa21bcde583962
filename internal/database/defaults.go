package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/bubbleboard/internal/database/repository"
)

// SeedDefaults ensures the named default board exists for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB, boardName string) error {
	boards := repository.NewBoardRepo(db)
	if _, err := boards.GetByName(ctx, boardName); err == nil {
		return nil
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("board:"+boardName)).String()
	return boards.Upsert(ctx, repository.Board{ID: id, Name: boardName})
}
