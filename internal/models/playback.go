package models

import "time"

// PlaybackWindow brackets the anchor scan of an order.
type PlaybackWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CameraPlayback describes how to watch one bound camera over the window.
// PlaybackURL is nil when the camera has no reachable storage node; the
// proxy URL is always populated.
type CameraPlayback struct {
	Role        string  `json:"role,omitempty"`
	CamUID      string  `json:"cam_uid,omitempty"`
	CamSerial   string  `json:"cam_serial,omitempty"`
	NasHostname string  `json:"nas_hostname,omitempty"`
	PlaybackURL *string `json:"playback_url"`
	ProxyURL    string  `json:"proxy_url"`
}

// PlaybackResult is the full answer to an order lookup.
type PlaybackResult struct {
	OrderNo     string           `json:"order_no"`
	StationUID  string           `json:"station_uid"`
	StationName string           `json:"station_name,omitempty"`
	Location    string           `json:"location,omitempty"`
	Anchor      ScanEvent        `json:"anchor_event"`
	Window      PlaybackWindow   `json:"playback_range"`
	Cameras     []CameraPlayback `json:"cameras"`
	Events      []ScanEvent      `json:"events"`
}

// QueryAudit records who looked up an order, from where.
type QueryAudit struct {
	UserID    string    `json:"user_id"`
	OrderNo   string    `json:"order_no"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	QueriedAt time.Time `json:"queried_at,omitempty"`
}
