package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite tolerates a single writer best.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaEvents = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    station_uid TEXT NOT NULL,
    event_type TEXT NOT NULL,
    order_no TEXT,
    barcode_value TEXT,
    captured_at TIMESTAMP NOT NULL,
    station_meta TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_order_no ON events(order_no);
CREATE INDEX IF NOT EXISTS idx_events_station_time ON events(station_uid, captured_at);
`

const schemaHealthLogs = `
CREATE TABLE IF NOT EXISTS health_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station_uid TEXT NOT NULL,
    check_type TEXT NOT NULL,
    status TEXT NOT NULL,
    detail TEXT,
    reported_at TIMESTAMP NOT NULL,
    resolved INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_health_logs_station_time ON health_logs(station_uid, reported_at);
`

const schemaStations = `
CREATE TABLE IF NOT EXISTS stations (
    station_uid TEXT PRIMARY KEY,
    station_name TEXT,
    location TEXT,
    agent_version TEXT,
    last_heartbeat TIMESTAMP
);
`

const schemaDevices = `
CREATE TABLE IF NOT EXISTS cams (
    cam_uid TEXT PRIMARY KEY,
    serial_number TEXT NOT NULL,
    last_seen_ip TEXT,
    model TEXT,
    status TEXT,
    last_updated TIMESTAMP
);
CREATE TABLE IF NOT EXISTS nas (
    nas_uid TEXT PRIMARY KEY,
    serial_number TEXT NOT NULL,
    last_seen_ip TEXT,
    ss_version TEXT,
    hostname TEXT,
    status TEXT,
    last_updated TIMESTAMP
);
CREATE TABLE IF NOT EXISTS scanners (
    scanner_uid TEXT PRIMARY KEY,
    station_uid TEXT NOT NULL,
    vendor_id TEXT,
    product_id TEXT,
    com_port TEXT,
    status TEXT,
    last_updated TIMESTAMP
);
CREATE TABLE IF NOT EXISTS station_devices (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    station_uid TEXT NOT NULL,
    role TEXT,
    cam_uid TEXT,
    nas_uid TEXT,
    scanner_uid TEXT,
    is_active INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_station_devices_station ON station_devices(station_uid);
`

const schemaQueryAudit = `
CREATE TABLE IF NOT EXISTS query_audit (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    order_no TEXT NOT NULL,
    ip_address TEXT,
    user_agent TEXT,
    queried_at TIMESTAMP NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaEvents,
		schemaHealthLogs,
		schemaStations,
		schemaDevices,
		schemaQueryAudit,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
