package postgresql

import (
	"context"
	"fmt"

	"github.com/internflow/internflow-backend-go/internal/domain/intern"
	"github.com/internflow/internflow-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type internRepository struct {
	db *database.DB
}

func NewInternRepository(db *database.DB) intern.InternRepository {
	return &internRepository{db: db}
}

func (r *internRepository) GetByID(ctx context.Context, id string) (intern.Intern, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, name, email, lifecycle_status, program_start, program_end, created_at, updated_at
		FROM interns
		WHERE id = $1
	`

	var i intern.Intern
	err := q.QueryRow(ctx, query, id).Scan(
		&i.ID, &i.UserID, &i.Name, &i.Email, &i.LifecycleStatus, &i.ProgramStart, &i.ProgramEnd, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return intern.Intern{}, intern.ErrInternNotFound
		}
		return intern.Intern{}, fmt.Errorf("failed to get intern: %w", err)
	}

	return i, nil
}
