package db

import (
	"context"

	"disasterwatch/internal/types"
)

// SnapshotRepository provides append-only access to weather_snapshots.
type SnapshotRepository struct {
	db DBTX
}

func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a classified snapshot.
func (r *SnapshotRepository) Create(ctx context.Context, s *types.WeatherSnapshot) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO weather_snapshots (
			id, city, country, lat, lon, temperature, humidity, pressure,
			wind_speed, wind_direction, description, timestamp,
			risk_level, risk_score, disaster_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, s.City, s.Country, s.Lat, s.Lon, s.Temperature, s.Humidity, s.Pressure,
		s.WindSpeed, s.WindDirection, s.Description, s.Timestamp,
		string(s.RiskLevel), s.RiskScore, s.DisasterType,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create weather snapshot", err)
	}
	return nil
}
