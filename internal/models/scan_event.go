package models

import "time"

// Well-known event types. Stations may configure additional ones; these two
// have special meaning for the order session and playback anchoring.
const (
	EventTypeOrder      = "ORDER"
	EventTypeCompletion = "Q"
)

// StationMeta is the snapshot of the reporting station's process, attached
// to every scan event and heartbeat.
type StationMeta struct {
	AgentVersion string `json:"agent_version,omitempty"`
	IPv4         string `json:"ipv4,omitempty"`
}

// DailyStationStats is one station's activity on one day, aggregated from
// its scan events.
type DailyStationStats struct {
	Date            string `json:"date"` // YYYY-MM-DD
	StationUID      string `json:"station_uid"`
	StationName     string `json:"station_name,omitempty"`
	EventCount      int    `json:"event_count"`
	OrderCount      int    `json:"order_count"`
	CompletionCount int    `json:"completion_count"`
}

// ScanEvent is a single classified barcode scan. Immutable once created.
type ScanEvent struct {
	EventID      string       `json:"event_id"`
	StationUID   string       `json:"station_uid"`
	EventType    string       `json:"event_type"`
	OrderNo      string       `json:"order_no,omitempty"` // empty outside an order session
	BarcodeValue string       `json:"barcode_value"`
	CapturedAt   time.Time    `json:"captured_at"`
	StationMeta  *StationMeta `json:"station_meta,omitempty"`
	StationName  string       `json:"station_name,omitempty"` // joined on read, not stored with the event
	Location     string       `json:"location,omitempty"`
}
