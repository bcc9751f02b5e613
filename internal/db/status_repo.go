package db

import (
	"context"

	"disasterwatch/internal/types"
)

// StatusCheckRepository provides access to the status_checks table.
type StatusCheckRepository struct {
	db DBTX
}

func NewStatusCheckRepository(db DBTX) *StatusCheckRepository {
	return &StatusCheckRepository{db: db}
}

func (r *StatusCheckRepository) Create(ctx context.Context, s *types.StatusCheck) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES ($1, $2, $3)`,
		s.ID, s.ClientName, s.Timestamp,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create status check", err)
	}
	return nil
}

// List returns status checks in insertion order, at most limit rows.
func (r *StatusCheckRepository) List(ctx context.Context, limit int) ([]*types.StatusCheck, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_name, timestamp
		FROM status_checks
		ORDER BY timestamp ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list status checks", err)
	}
	defer rows.Close()

	checks := make([]*types.StatusCheck, 0)
	for rows.Next() {
		var s types.StatusCheck
		if err := rows.Scan(&s.ID, &s.ClientName, &s.Timestamp); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan status check row", err)
		}
		checks = append(checks, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating status check rows", err)
	}
	return checks, nil
}
