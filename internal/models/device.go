package models

import "time"

// Camera is an IP camera last seen by a station agent.
type Camera struct {
	CamUID       string    `json:"cam_uid"`
	SerialNumber string    `json:"serial_number"`
	LastSeenIP   string    `json:"last_seen_ip,omitempty"`
	Model        string    `json:"model,omitempty"`
	Status       string    `json:"status,omitempty"`
	LastUpdated  time.Time `json:"last_updated,omitempty"`
}

// NAS is a storage node hosting camera recordings.
type NAS struct {
	NasUID       string    `json:"nas_uid"`
	SerialNumber string    `json:"serial_number"`
	LastSeenIP   string    `json:"last_seen_ip,omitempty"`
	SSVersion    string    `json:"ss_version,omitempty"`
	Hostname     string    `json:"hostname,omitempty"`
	Status       string    `json:"status,omitempty"`
	LastUpdated  time.Time `json:"last_updated,omitempty"`
}

// Scanner is a barcode scanner attached to a station.
type Scanner struct {
	ScannerUID  string    `json:"scanner_uid"`
	StationUID  string    `json:"station_uid"`
	VendorID    string    `json:"vendor_id,omitempty"`
	ProductID   string    `json:"product_id,omitempty"`
	ComPort     string    `json:"com_port,omitempty"`
	Status      string    `json:"status,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// DeviceBinding attaches devices to a station under a role (MAIN, ENV, ...).
type DeviceBinding struct {
	ID         int64  `json:"id"`
	StationUID string `json:"station_uid"`
	Role       string `json:"role,omitempty"`
	CamUID     string `json:"cam_uid,omitempty"`
	NasUID     string `json:"nas_uid,omitempty"`
	ScannerUID string `json:"scanner_uid,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// BoundDevice is one active binding joined with its device records, as used
// by playback resolution and the station detail view.
type BoundDevice struct {
	Role          string `json:"role,omitempty"`
	CamUID        string `json:"cam_uid,omitempty"`
	CamSerial     string `json:"cam_serial,omitempty"`
	CamIP         string `json:"cam_ip,omitempty"`
	CamModel      string `json:"cam_model,omitempty"`
	CamStatus     string `json:"cam_status,omitempty"`
	NasUID        string `json:"nas_uid,omitempty"`
	NasIP         string `json:"nas_ip,omitempty"`
	NasHostname   string `json:"nas_hostname,omitempty"`
	NasStatus     string `json:"nas_status,omitempty"`
	ScannerUID    string `json:"scanner_uid,omitempty"`
	ScannerStatus string `json:"scanner_status,omitempty"`
}
