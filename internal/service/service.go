package service

import (
	"context"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// IngestParams is a scan event as submitted by a station agent.
type IngestParams struct {
	StationUID   string
	EventType    string
	OrderNo      string
	BarcodeValue string
	CapturedAt   time.Time
	StationMeta  *models.StationMeta
}

// EventFilter narrows event listings through the admin API.
type EventFilter struct {
	StationUID string
	OrderNo    string
	EventType  string
	From       time.Time // inclusive; zero means no lower bound
	To         time.Time // inclusive; zero means no upper bound
	Limit      int
}

// Events ingests scan events and serves filtered listings.
type Events interface {
	Ingest(ctx context.Context, p IngestParams) (string, error)
	List(ctx context.Context, f EventFilter) ([]models.ScanEvent, error)
}

// ReportParams is one health report from a station agent.
type ReportParams struct {
	StationUID string
	CheckType  string
	Status     string
	Detail     any
}

// StationDetail bundles everything the admin view shows for one station.
type StationDetail struct {
	Station models.StationHealthView `json:"station"`
	Devices []models.BoundDevice     `json:"devices"`
	Logs    []models.HealthLog       `json:"recent_health_logs"`
}

// Health ingests station reports and derives per-station health verdicts.
type Health interface {
	Report(ctx context.Context, p ReportParams) error
	Overview(ctx context.Context) ([]models.StationHealthView, error)
	Detail(ctx context.Context, stationUID string) (*StationDetail, error)
}

// Orders resolves a completed order to its playback window and cameras.
type Orders interface {
	Resolve(ctx context.Context, orderNo string, audit models.QueryAudit) (*models.PlaybackResult, error)
}

// BindParams attaches devices to a station under a role.
type BindParams struct {
	StationUID string
	Role       string
	CamUID     string
	NasUID     string
	ScannerUID string
}

// StatsFilter narrows the daily activity aggregation.
type StatsFilter struct {
	StationUID string
	From       time.Time // inclusive; zero means no lower bound
	To         time.Time // inclusive; zero means no upper bound
}

// Stats serves aggregated activity counts for the admin dashboard.
type Stats interface {
	Daily(ctx context.Context, f StatsFilter) ([]models.DailyStationStats, error)
}

// Devices manages station and device registration.
type Devices interface {
	RegisterStation(ctx context.Context, s models.Station) error
	RegisterCamera(ctx context.Context, c models.Camera) error
	RegisterNAS(ctx context.Context, n models.NAS) error
	RegisterScanner(ctx context.Context, s models.Scanner) error
	Bind(ctx context.Context, p BindParams) error
}

// Service aggregates all sub-services.
type Service struct {
	Events
	Health
	Orders
	Devices
	Stats
	Authorization
}

// Config carries the central-side tunables the services need.
type Config struct {
	JWTSigningKey string
	// CompletionType anchors order playback (defaults to models.EventTypeCompletion).
	CompletionType string
	// ProxyBasePath prefixes generated proxy playback URLs.
	ProxyBasePath string
}

func NewService(repos *repository.Repository, cfg Config) *Service {
	if cfg.CompletionType == "" {
		cfg.CompletionType = models.EventTypeCompletion
	}
	if cfg.ProxyBasePath == "" {
		cfg.ProxyBasePath = "/api/playback/proxy"
	}
	return &Service{
		Events:        NewEventsService(repos.Events),
		Health:        NewHealthService(repos.Health, repos.Stations, repos.Devices),
		Orders:        NewOrdersService(repos.Events, repos.Devices, repos.Audit, cfg.CompletionType, cfg.ProxyBasePath),
		Devices:       NewDevicesService(repos.Stations, repos.Devices),
		Stats:         NewStatsService(repos.Events, cfg.CompletionType),
		Authorization: NewAuthService(repos.Auth, cfg.JWTSigningKey),
	}
}
