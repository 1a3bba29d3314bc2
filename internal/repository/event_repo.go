package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"packtrace/internal/models"

	"github.com/google/uuid"
)

type EventSQLite struct {
	db *sql.DB
}

func NewEventSQLite(db *sql.DB) *EventSQLite { return &EventSQLite{db: db} }

var _ EventRepo = (*EventSQLite)(nil)

const sqliteTimeLayout = "2006-01-02 15:04:05"

const insertEventSQL = `
		INSERT INTO events (id, station_uid, event_type, order_no, barcode_value, captured_at, station_meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

// Append inserts a scan event and returns its id. If EventID or CapturedAt
// are empty, they are set here.
func (r *EventSQLite) Append(ctx context.Context, e models.ScanEvent) (string, error) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.CapturedAt.IsZero() {
		e.CapturedAt = time.Now().UTC()
	} else {
		e.CapturedAt = e.CapturedAt.UTC()
	}

	var metaPtr *string
	if e.StationMeta != nil {
		if b, err := json.Marshal(e.StationMeta); err == nil {
			s := string(b)
			metaPtr = &s
		}
	}

	var orderNo *string
	if e.OrderNo != "" {
		orderNo = &e.OrderNo
	}

	_, err := r.db.ExecContext(ctx, insertEventSQL,
		e.EventID,
		e.StationUID,
		strings.ToUpper(strings.TrimSpace(e.EventType)),
		orderNo,
		e.BarcodeValue,
		e.CapturedAt.Format(sqliteTimeLayout),
		metaPtr,
	)
	if err != nil {
		return "", err
	}
	return e.EventID, nil
}

// List returns events matching the filter, newest first.
func (r *EventSQLite) List(ctx context.Context, f EventFilter) ([]models.ScanEvent, error) {
	var (
		conds []string
		args  []any
	)

	if f.StationUID != "" {
		conds = append(conds, "station_uid = ?")
		args = append(args, f.StationUID)
	}
	if f.OrderNo != "" {
		conds = append(conds, "order_no = ?")
		args = append(args, f.OrderNo)
	}
	if typ := strings.ToUpper(strings.TrimSpace(f.EventType)); typ != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, typ)
	}
	// Bounds must use the same layout Append stores, or the string
	// comparison misses rows on the exact boundary.
	if !f.From.IsZero() {
		conds = append(conds, "captured_at >= ?")
		args = append(args, f.From.UTC().Format(sqliteTimeLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "captured_at <= ?")
		args = append(args, f.To.UTC().Format(sqliteTimeLayout))
	}

	q := `SELECT id, station_uid, event_type, order_no, barcode_value, captured_at, station_meta FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY captured_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	return r.queryEvents(ctx, q, args...)
}

// DailyStats aggregates events into per-station per-day counts, newest day
// first. Stored timestamps are UTC in sqliteTimeLayout, so the first ten
// characters are the day.
func (r *EventSQLite) DailyStats(ctx context.Context, f StatsFilter) ([]models.DailyStationStats, error) {
	conds := []string{}
	args := []any{f.CompletionType}

	if f.StationUID != "" {
		conds = append(conds, "e.station_uid = ?")
		args = append(args, f.StationUID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "e.captured_at >= ?")
		args = append(args, f.From.UTC().Format(sqliteTimeLayout))
	}
	if !f.To.IsZero() {
		conds = append(conds, "e.captured_at <= ?")
		args = append(args, f.To.UTC().Format(sqliteTimeLayout))
	}

	q := `SELECT substr(e.captured_at, 1, 10) AS day, e.station_uid, s.station_name,
		COUNT(*) AS event_count,
		COUNT(DISTINCT e.order_no) AS order_count,
		COUNT(CASE WHEN e.event_type = ? THEN 1 END) AS completion_count
	FROM events e
	LEFT JOIN stations s ON s.station_uid = e.station_uid`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` GROUP BY day, e.station_uid, s.station_name ORDER BY day DESC, e.station_uid`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DailyStationStats, 0, 16)
	for rows.Next() {
		var (
			st   models.DailyStationStats
			name sql.NullString
		)
		if err := rows.Scan(&st.Date, &st.StationUID, &name,
			&st.EventCount, &st.OrderCount, &st.CompletionCount); err != nil {
			return nil, err
		}
		st.StationName = name.String
		out = append(out, st)
	}
	return out, rows.Err()
}

const listByOrderSQL = `
		SELECT e.id, e.station_uid, e.event_type, e.order_no, e.barcode_value, e.captured_at, e.station_meta,
		       s.station_name, s.location
		FROM events e
		LEFT JOIN stations s ON s.station_uid = e.station_uid
		WHERE e.order_no = ?
		ORDER BY e.captured_at ASC
	`

// ListByOrder returns all events of one order in capture order, joined with
// the reporting station's name and location.
func (r *EventSQLite) ListByOrder(ctx context.Context, orderNo string) ([]models.ScanEvent, error) {
	rows, err := r.db.QueryContext(ctx, listByOrderSQL, orderNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScanEvent, 0, 8)
	for rows.Next() {
		var (
			ev      models.ScanEvent
			orderNo sql.NullString
			metaStr sql.NullString
			name    sql.NullString
			loc     sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.StationUID, &ev.EventType, &orderNo,
			&ev.BarcodeValue, &ev.CapturedAt, &metaStr, &name, &loc); err != nil {
			return nil, err
		}
		ev.OrderNo = orderNo.String
		ev.StationName = name.String
		ev.Location = loc.String
		ev.CapturedAt = ev.CapturedAt.UTC()
		ev.StationMeta = unmarshalMeta(metaStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *EventSQLite) queryEvents(ctx context.Context, q string, args ...any) ([]models.ScanEvent, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ScanEvent, 0, 64)
	for rows.Next() {
		var (
			ev      models.ScanEvent
			orderNo sql.NullString
			metaStr sql.NullString
		)
		if err := rows.Scan(&ev.EventID, &ev.StationUID, &ev.EventType, &orderNo,
			&ev.BarcodeValue, &ev.CapturedAt, &metaStr); err != nil {
			return nil, err
		}
		ev.OrderNo = orderNo.String
		ev.CapturedAt = ev.CapturedAt.UTC()
		ev.StationMeta = unmarshalMeta(metaStr)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// unmarshalMeta parses the stored station_meta JSON, tolerating malformed rows.
func unmarshalMeta(s sql.NullString) *models.StationMeta {
	if !s.Valid || s.String == "" {
		return nil
	}
	var meta models.StationMeta
	if err := json.Unmarshal([]byte(s.String), &meta); err != nil {
		return nil
	}
	return &meta
}
