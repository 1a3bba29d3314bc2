package models

import "time"

// Health statuses reported by stations and derived centrally.
const (
	HealthOK      = "OK"
	HealthWarning = "WARNING"
	HealthError   = "ERROR"
	HealthOffline = "OFFLINE"
)

// Check types produced by the station agent.
const (
	CheckHeartbeat            = "HEARTBEAT"
	CheckTime                 = "TIME_CHECK"
	CheckCamOffline           = "CAM_OFFLINE"
	CheckCamSerialChanged     = "CAM_SERIAL_CHANGED"
	CheckNASOffline           = "NAS_OFFLINE"
	CheckNASSerialChanged     = "NAS_SERIAL_CHANGED"
	CheckScannerOffline       = "SCANNER_OFFLINE"
	CheckScannerSerialChanged = "SCANNER_SERIAL_CHANGED"
)

// HealthLog is one stored health report. Append-only; Resolved is flipped by
// an external remediation process and only read here.
type HealthLog struct {
	ID         int64     `json:"id"`
	StationUID string    `json:"station_uid"`
	CheckType  string    `json:"check_type"`
	Status     string    `json:"status"` // OK | WARNING | ERROR
	Detail     any       `json:"detail,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
	Resolved   bool      `json:"resolved"`
}

// Station is a registered packing station.
type Station struct {
	StationUID    string     `json:"station_uid"`
	StationName   string     `json:"station_name,omitempty"`
	Location      string     `json:"location,omitempty"`
	AgentVersion  string     `json:"agent_version,omitempty"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"` // nil until the first heartbeat
}

// StationHealthSummary is the raw per-station aggregate the store produces:
// station row plus unresolved log counts within the look-back window.
type StationHealthSummary struct {
	Station
	ActiveErrors   int `json:"active_errors"`
	ActiveWarnings int `json:"active_warnings"`
}

// StationHealthView is the derived health of one station, computed on read.
type StationHealthView struct {
	Station
	HeartbeatAgeSeconds *int64 `json:"heartbeat_age_seconds,omitempty"` // nil when no heartbeat was ever recorded
	ActiveErrors        int    `json:"active_errors"`
	ActiveWarnings      int    `json:"active_warnings"`
	HealthStatus        string `json:"health_status"`
}
