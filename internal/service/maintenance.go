package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/bubbleboard/internal/database"
	"github.com/jask/bubbleboard/internal/database/repository"
)

// purgeAfterDays is how long soft-deleted tasks stay restorable.
const purgeAfterDays = 30

// MaintenanceService houses destructive/ops actions surfaced through the UI.
type MaintenanceService struct {
	DB    *sql.DB
	Tasks *repository.TaskRepo
}

// PurgeDeleted permanently removes soft-deleted tasks past the retention
// window. Run on startup.
func (s *MaintenanceService) PurgeDeleted(ctx context.Context) (int64, error) {
	if s.Tasks == nil {
		return 0, fmt.Errorf("maintenance: tasks repo not configured")
	}
	return s.Tasks.PurgeDeleted(ctx, purgeAfterDays)
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"tasks",
			"boards",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
