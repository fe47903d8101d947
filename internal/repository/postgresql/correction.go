package postgresql

import (
	"context"
	"fmt"

	"github.com/internflow/internflow-backend-go/internal/domain/correction"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepository{db: db}
}

func (r *correctionRepository) CountPendingByIntern(ctx context.Context, internID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM time_corrections
		WHERE intern_id = $1 AND status = $2
	`

	var count int
	err := q.QueryRow(ctx, query, internID, correction.CorrectionStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending corrections: %w", err)
	}

	return count, nil
}
