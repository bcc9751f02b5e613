// Package db provides the persistence gateway. PostgreSQL repositories accept a
// DBTX so they run against a pool or a transaction; the SQLite store serves
// local runs and tests behind the same repository interfaces.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"disasterwatch/internal/config"
	"disasterwatch/internal/types"
)

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a repository registry that owns its connections.
type Store interface {
	types.RepositoryRegistry
	Ping(ctx context.Context) error
	Close()
}

// Open connects to the configured backend, verifies connectivity and
// ensures the schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case "sqlite":
		store, err = OpenSQLite(ctx, cfg.URL.Unmask())
	default:
		store, err = OpenPostgres(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// PostgresStore is the PostgreSQL-backed Store.
type PostgresStore struct {
	pool      *pgxpool.Pool
	snapshots *SnapshotRepository
	alerts    *AlertRepository
	statuses  *StatusCheckRepository
}

// NewPostgresStore wires repositories over an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool:      pool,
		snapshots: NewSnapshotRepository(pool),
		alerts:    NewAlertRepository(pool),
		statuses:  NewStatusCheckRepository(pool),
	}
}

// poolConfig applies pool tuning to the parsed connection string.
// ConnectTimeout bounds dialing a new connection.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	return poolCfg, nil
}

// OpenPostgres builds a tuned pool, pings it and applies the schema.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

func (s *PostgresStore) Snapshots() types.SnapshotRepository       { return s.snapshots }
func (s *PostgresStore) Alerts() types.AlertRepository             { return s.alerts }
func (s *PostgresStore) StatusChecks() types.StatusCheckRepository { return s.statuses }

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() { s.pool.Close() }

const postgresSchema = `
CREATE TABLE IF NOT EXISTS weather_snapshots (
	id             UUID PRIMARY KEY,
	city           TEXT NOT NULL,
	country        TEXT NOT NULL DEFAULT '',
	lat            DOUBLE PRECISION NOT NULL,
	lon            DOUBLE PRECISION NOT NULL,
	temperature    DOUBLE PRECISION NOT NULL,
	humidity       DOUBLE PRECISION NOT NULL,
	pressure       DOUBLE PRECISION NOT NULL,
	wind_speed     DOUBLE PRECISION NOT NULL,
	wind_direction DOUBLE PRECISION NOT NULL DEFAULT 0,
	description    TEXT NOT NULL DEFAULT '',
	timestamp      TIMESTAMPTZ NOT NULL,
	risk_level     TEXT NOT NULL,
	risk_score     DOUBLE PRECISION NOT NULL,
	disaster_type  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	id            UUID PRIMARY KEY,
	city          TEXT NOT NULL,
	disaster_type TEXT NOT NULL,
	risk_level    TEXT NOT NULL,
	message       TEXT NOT NULL,
	timestamp     TIMESTAMPTZ NOT NULL,
	active        BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_alerts_active_timestamp ON alerts (timestamp DESC) WHERE active;

CREATE TABLE IF NOT EXISTS status_checks (
	id          UUID PRIMARY KEY,
	client_name TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
