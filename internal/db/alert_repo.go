package db

import (
	"context"

	"disasterwatch/internal/types"
)

// AlertRepository provides access to the alerts table.
type AlertRepository struct {
	db DBTX
}

func NewAlertRepository(db DBTX) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts an alert. Repeated alerts for the same city are kept.
func (r *AlertRepository) Create(ctx context.Context, a *types.Alert) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO alerts (id, city, disaster_type, risk_level, message, timestamp, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.City, a.DisasterType, string(a.RiskLevel), a.Message, a.Timestamp, a.Active,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create alert", err)
	}
	return nil
}

// ListActive returns active alerts, newest first.
func (r *AlertRepository) ListActive(ctx context.Context, limit int) ([]*types.Alert, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, city, disaster_type, risk_level, message, timestamp, active
		FROM alerts
		WHERE active = TRUE
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alerts", err)
	}
	defer rows.Close()

	alerts := make([]*types.Alert, 0)
	for rows.Next() {
		var (
			a     types.Alert
			level string
		)
		if err := rows.Scan(&a.ID, &a.City, &a.DisasterType, &level, &a.Message, &a.Timestamp, &a.Active); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert row", err)
		}
		a.RiskLevel = types.RiskLevel(level)
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating alert rows", err)
	}
	return alerts, nil
}
