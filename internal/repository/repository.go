package repository

import (
	"context"
	"database/sql"
	"time"

	"packtrace/internal/models"
)

// EventFilter narrows event listings. Zero values mean "no constraint".
type EventFilter struct {
	StationUID string
	OrderNo    string
	EventType  string
	From       time.Time
	To         time.Time
	Limit      int
}

// StatsFilter narrows the daily aggregation. CompletionType names the event
// type counted as a completed order.
type StatsFilter struct {
	StationUID     string
	From           time.Time
	To             time.Time
	CompletionType string
}

type EventRepo interface {
	Append(ctx context.Context, e models.ScanEvent) (string, error)
	List(ctx context.Context, f EventFilter) ([]models.ScanEvent, error)
	ListByOrder(ctx context.Context, orderNo string) ([]models.ScanEvent, error)
	DailyStats(ctx context.Context, f StatsFilter) ([]models.DailyStationStats, error)
}

type HealthRepo interface {
	Append(ctx context.Context, l models.HealthLog) error
	RecentByStation(ctx context.Context, stationUID string, limit int) ([]models.HealthLog, error)
}

type StationRepo interface {
	Upsert(ctx context.Context, s models.Station) error
	Get(ctx context.Context, stationUID string) (*models.Station, error)
	TouchHeartbeat(ctx context.Context, stationUID, agentVersion string, at time.Time) error
	// HealthSummaries returns every station with its unresolved ERROR/WARNING
	// counts among health logs reported after cutoff.
	HealthSummaries(ctx context.Context, cutoff time.Time) ([]models.StationHealthSummary, error)
}

type DeviceRepo interface {
	UpsertCamera(ctx context.Context, c models.Camera) error
	UpsertNAS(ctx context.Context, n models.NAS) error
	UpsertScanner(ctx context.Context, s models.Scanner) error
	Bind(ctx context.Context, b models.DeviceBinding) error
	ActiveBindings(ctx context.Context, stationUID string) ([]models.BoundDevice, error)
}

type AuditRepo interface {
	Append(ctx context.Context, a models.QueryAudit) error
}

type Authorization interface {
	Create(username, passwordHash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type Repository struct {
	Events   EventRepo
	Health   HealthRepo
	Stations StationRepo
	Devices  DeviceRepo
	Audit    AuditRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Events:   NewEventSQLite(db),
		Health:   NewHealthSQLite(db),
		Stations: NewStationSQLite(db),
		Devices:  NewDeviceSQLite(db),
		Audit:    NewAuditSQLite(db),
		Auth:     NewUserRepository(db),
	}
}
