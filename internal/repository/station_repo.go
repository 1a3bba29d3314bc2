package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"packtrace/internal/models"
)

type StationSQLite struct {
	db *sql.DB
}

func NewStationSQLite(db *sql.DB) *StationSQLite { return &StationSQLite{db: db} }

var _ StationRepo = (*StationSQLite)(nil)

const (
	upsertStationSQL = `
		INSERT INTO stations (station_uid, station_name, location, agent_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(station_uid) DO UPDATE SET
			station_name=excluded.station_name,
			location=excluded.location,
			agent_version=excluded.agent_version
	`

	selectStationSQL = `
		SELECT station_uid, station_name, location, agent_version, last_heartbeat
		FROM stations WHERE station_uid = ?
	`

	touchHeartbeatSQL = `
		INSERT INTO stations (station_uid, agent_version, last_heartbeat)
		VALUES (?, ?, ?)
		ON CONFLICT(station_uid) DO UPDATE SET
			agent_version=excluded.agent_version,
			last_heartbeat=excluded.last_heartbeat
	`

	healthSummariesSQL = `
		SELECT s.station_uid, s.station_name, s.location, s.agent_version, s.last_heartbeat,
			COUNT(DISTINCT CASE WHEN hl.resolved = 0 AND hl.status = 'ERROR' THEN hl.id END) AS active_errors,
			COUNT(DISTINCT CASE WHEN hl.resolved = 0 AND hl.status = 'WARNING' THEN hl.id END) AS active_warnings
		FROM stations s
		LEFT JOIN health_logs hl ON hl.station_uid = s.station_uid AND hl.reported_at > ?
		GROUP BY s.station_uid, s.station_name, s.location, s.agent_version, s.last_heartbeat
		ORDER BY s.station_name
	`
)

// Upsert creates or updates a station registration, preserving last_heartbeat.
func (r *StationSQLite) Upsert(ctx context.Context, s models.Station) error {
	_, err := r.db.ExecContext(ctx, upsertStationSQL,
		s.StationUID, s.StationName, s.Location, s.AgentVersion)
	return err
}

// Get fetches a station by uid. Returns (nil, nil) if not found.
func (r *StationSQLite) Get(ctx context.Context, stationUID string) (*models.Station, error) {
	row := r.db.QueryRowContext(ctx, selectStationSQL, stationUID)

	var (
		s    models.Station
		name sql.NullString
		loc  sql.NullString
		ver  sql.NullString
		hb   sql.NullTime
	)
	if err := row.Scan(&s.StationUID, &name, &loc, &ver, &hb); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.StationName = name.String
	s.Location = loc.String
	s.AgentVersion = ver.String
	if hb.Valid {
		t := hb.Time.UTC()
		s.LastHeartbeat = &t
	}
	return &s, nil
}

// TouchHeartbeat records a heartbeat, creating the station row on first
// contact so an unprovisioned agent still shows up in the overview.
func (r *StationSQLite) TouchHeartbeat(ctx context.Context, stationUID, agentVersion string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, touchHeartbeatSQL,
		stationUID, agentVersion, at.UTC().Format(sqliteTimeLayout))
	return err
}

// HealthSummaries lists all stations with unresolved log counts since cutoff.
func (r *StationSQLite) HealthSummaries(ctx context.Context, cutoff time.Time) ([]models.StationHealthSummary, error) {
	rows, err := r.db.QueryContext(ctx, healthSummariesSQL, cutoff.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.StationHealthSummary, 0, 16)
	for rows.Next() {
		var (
			sum  models.StationHealthSummary
			name sql.NullString
			loc  sql.NullString
			ver  sql.NullString
			hb   sql.NullTime
		)
		if err := rows.Scan(&sum.StationUID, &name, &loc, &ver, &hb,
			&sum.ActiveErrors, &sum.ActiveWarnings); err != nil {
			return nil, err
		}
		sum.StationName = name.String
		sum.Location = loc.String
		sum.AgentVersion = ver.String
		if hb.Valid {
			t := hb.Time.UTC()
			sum.LastHeartbeat = &t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
