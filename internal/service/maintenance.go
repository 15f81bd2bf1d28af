package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/frontfrend/internal/database"
)

// MaintenanceService houses destructive history actions.
type MaintenanceService struct {
	DB *sql.DB
}

// ClearHistory removes every recorded run. The schema stays intact.
func (s *MaintenanceService) ClearHistory(ctx context.Context) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: history not enabled")
	}
	var n int64
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM runs")
		if err != nil {
			return fmt.Errorf("clear runs: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	}); err != nil {
		return 0, err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return n, nil
}
