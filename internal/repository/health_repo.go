package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"packtrace/internal/models"
)

type HealthSQLite struct {
	db *sql.DB
}

func NewHealthSQLite(db *sql.DB) *HealthSQLite { return &HealthSQLite{db: db} }

var _ HealthRepo = (*HealthSQLite)(nil)

const insertHealthLogSQL = `
		INSERT INTO health_logs (station_uid, check_type, status, detail, reported_at, resolved)
		VALUES (?, ?, ?, ?, ?, 0)
	`

// Append stores one health report. ReportedAt defaults to now.
func (r *HealthSQLite) Append(ctx context.Context, l models.HealthLog) error {
	if l.ReportedAt.IsZero() {
		l.ReportedAt = time.Now().UTC()
	} else {
		l.ReportedAt = l.ReportedAt.UTC()
	}

	var detailPtr *string
	if l.Detail != nil {
		if b, err := json.Marshal(l.Detail); err == nil {
			s := string(b)
			detailPtr = &s
		}
	}

	_, err := r.db.ExecContext(ctx, insertHealthLogSQL,
		l.StationUID,
		strings.ToUpper(strings.TrimSpace(l.CheckType)),
		strings.ToUpper(strings.TrimSpace(l.Status)),
		detailPtr,
		l.ReportedAt.Format(sqliteTimeLayout),
	)
	return err
}

const recentHealthLogsSQL = `
		SELECT id, station_uid, check_type, status, detail, reported_at, resolved
		FROM health_logs
		WHERE station_uid = ?
		ORDER BY reported_at DESC
		LIMIT ?
	`

// RecentByStation returns the newest health logs of one station.
func (r *HealthSQLite) RecentByStation(ctx context.Context, stationUID string, limit int) ([]models.HealthLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, recentHealthLogsSQL, stationUID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.HealthLog, 0, limit)
	for rows.Next() {
		var (
			l         models.HealthLog
			detailStr sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.StationUID, &l.CheckType, &l.Status,
			&detailStr, &l.ReportedAt, &l.Resolved); err != nil {
			return nil, err
		}
		l.ReportedAt = l.ReportedAt.UTC()
		if detailStr.Valid && detailStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(detailStr.String), &v); err == nil {
				l.Detail = v
			} else {
				l.Detail = detailStr.String // keep raw if malformed
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
