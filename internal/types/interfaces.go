package types

import (
	"context"
)

// RepositoryRegistry provides access to all repository instances.
type RepositoryRegistry interface {
	Snapshots() SnapshotRepository
	Alerts() AlertRepository
	StatusChecks() StatusCheckRepository
}

// SnapshotRepository persists weather snapshots. Append-only.
type SnapshotRepository interface {
	Create(ctx context.Context, s *WeatherSnapshot) error
}

// AlertRepository persists and lists alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *Alert) error
	// ListActive returns active alerts, newest first, at most limit rows.
	ListActive(ctx context.Context, limit int) ([]*Alert, error)
}

// StatusCheckRepository persists and lists status checks.
type StatusCheckRepository interface {
	Create(ctx context.Context, s *StatusCheck) error
	List(ctx context.Context, limit int) ([]*StatusCheck, error)
}

// AlertPublisher fans created alerts out to downstream consumers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a *Alert) error
}
