package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"disasterwatch/internal/types"
)

// sqliteTimeLayout is fixed width so lexical order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS weather_snapshots (
	id             TEXT PRIMARY KEY,
	city           TEXT NOT NULL,
	country        TEXT NOT NULL DEFAULT '',
	lat            REAL NOT NULL,
	lon            REAL NOT NULL,
	temperature    REAL NOT NULL,
	humidity       REAL NOT NULL,
	pressure       REAL NOT NULL,
	wind_speed     REAL NOT NULL,
	wind_direction REAL NOT NULL DEFAULT 0,
	description    TEXT NOT NULL DEFAULT '',
	timestamp      TEXT NOT NULL,
	risk_level     TEXT NOT NULL,
	risk_score     REAL NOT NULL,
	disaster_type  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS alerts (
	id            TEXT PRIMARY KEY,
	city          TEXT NOT NULL,
	disaster_type TEXT NOT NULL,
	risk_level    TEXT NOT NULL,
	message       TEXT NOT NULL,
	timestamp     TEXT NOT NULL,
	active        INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_alerts_active_timestamp ON alerts (active, timestamp DESC);
CREATE TABLE IF NOT EXISTS status_checks (
	id          TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	timestamp   TEXT NOT NULL
);`

// SQLiteStore is a Store backed by a local SQLite database (pure Go driver).
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens dsn (a path, "file:..." URI or ":memory:"), pings it and
// applies the schema.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Snapshots() types.SnapshotRepository       { return sqliteSnapshots{s.db} }
func (s *SQLiteStore) Alerts() types.AlertRepository             { return sqliteAlerts{s.db} }
func (s *SQLiteStore) StatusChecks() types.StatusCheckRepository { return sqliteStatusChecks{s.db} }

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() { _ = s.db.Close() }

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

type sqliteSnapshots struct{ db *sql.DB }

func (r sqliteSnapshots) Create(ctx context.Context, s *types.WeatherSnapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO weather_snapshots (
			id, city, country, lat, lon, temperature, humidity, pressure,
			wind_speed, wind_direction, description, timestamp,
			risk_level, risk_score, disaster_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.City, s.Country, s.Lat, s.Lon, s.Temperature, s.Humidity, s.Pressure,
		s.WindSpeed, s.WindDirection, s.Description, formatSQLiteTime(s.Timestamp),
		string(s.RiskLevel), s.RiskScore, s.DisasterType,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create weather snapshot", err)
	}
	return nil
}

type sqliteAlerts struct{ db *sql.DB }

func (r sqliteAlerts) Create(ctx context.Context, a *types.Alert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, city, disaster_type, risk_level, message, timestamp, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.City, a.DisasterType, string(a.RiskLevel), a.Message, formatSQLiteTime(a.Timestamp), a.Active,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create alert", err)
	}
	return nil
}

func (r sqliteAlerts) ListActive(ctx context.Context, limit int) ([]*types.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, city, disaster_type, risk_level, message, timestamp, active
		FROM alerts
		WHERE active = 1
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alerts", err)
	}
	defer rows.Close()

	alerts := make([]*types.Alert, 0)
	for rows.Next() {
		var (
			a         types.Alert
			level, ts string
		)
		if err := rows.Scan(&a.ID, &a.City, &a.DisasterType, &level, &a.Message, &ts, &a.Active); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan alert row", err)
		}
		if a.Timestamp, err = parseSQLiteTime(ts); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "invalid alert timestamp", err)
		}
		a.RiskLevel = types.RiskLevel(level)
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating alert rows", err)
	}
	return alerts, nil
}

type sqliteStatusChecks struct{ db *sql.DB }

func (r sqliteStatusChecks) Create(ctx context.Context, s *types.StatusCheck) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		s.ID, s.ClientName, formatSQLiteTime(s.Timestamp),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create status check", err)
	}
	return nil
}

func (r sqliteStatusChecks) List(ctx context.Context, limit int) ([]*types.StatusCheck, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, client_name, timestamp
		FROM status_checks
		ORDER BY timestamp ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list status checks", err)
	}
	defer rows.Close()

	checks := make([]*types.StatusCheck, 0)
	for rows.Next() {
		var (
			s  types.StatusCheck
			ts string
		)
		if err := rows.Scan(&s.ID, &s.ClientName, &ts); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan status check row", err)
		}
		if s.Timestamp, err = parseSQLiteTime(ts); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "invalid status check timestamp", err)
		}
		checks = append(checks, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating status check rows", err)
	}
	return checks, nil
}
