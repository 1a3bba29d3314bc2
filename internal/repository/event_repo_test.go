package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestEventSQLite_Append_GeneratesIDAndNullsEmptyOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	defer func(db *sql.DB) {
		_ = db.Close()
	}(db)

	repo := repository.NewEventSQLite(db)

	isUUID := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		return ok && len(s) == 36
	})
	isRecentStamp := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		tm, err := time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return false
		}
		now := time.Now().UTC()
		return !tm.Before(now.Add(-5*time.Second)) && !tm.After(now.Add(5*time.Second))
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs(
			isUUID,
			"PACK-01",
			"ITEM", // lowercased input is normalized
			nil,    // empty order_no stored as NULL
			"123456789012",
			isRecentStamp, // zero captured_at replaced with now
			nil,           // no station meta
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Append(context.Background(), models.ScanEvent{
		StationUID:   "PACK-01",
		EventType:    "item",
		BarcodeValue: "123456789012",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(id) != 36 {
		t.Errorf("want generated uuid, got %q", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_Append_MarshalsMetaAndKeepsCapturedAt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewEventSQLite(db)

	captured := time.Date(2026, 5, 1, 15, 0, 0, 0, time.FixedZone("X", 3*3600))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO events")).
		WithArgs(
			"evt-1",
			"PACK-01",
			"Q",
			"ORD-000001",
			"Q",
			"2026-05-01 12:00:00", // converted to UTC
			`{"agent_version":"1.0.0","ipv4":"10.0.0.5"}`,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := repo.Append(context.Background(), models.ScanEvent{
		EventID:      "evt-1",
		StationUID:   "PACK-01",
		EventType:    "Q",
		OrderNo:      "ORD-000001",
		BarcodeValue: "Q",
		CapturedAt:   captured,
		StationMeta:  &models.StationMeta{AgentVersion: "1.0.0", IPv4: "10.0.0.5"},
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if id != "evt-1" {
		t.Errorf("want evt-1, got %q", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_List_BuildsConditions(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewEventSQLite(db)

	// Bounds are bound as strings in the stored layout so that an event
	// captured exactly at the bound still matches.
	from := time.Date(2026, 5, 1, 3, 0, 0, 0, time.FixedZone("X", 3*3600))
	to := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "station_uid", "event_type", "order_no", "barcode_value", "captured_at", "station_meta",
	}).AddRow("evt-1", "PACK-01", "ORDER", "ORD-1", "ORD-1", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), nil)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, station_uid, event_type, order_no, barcode_value, captured_at, station_meta FROM events WHERE station_uid = ? AND event_type = ? AND captured_at >= ? AND captured_at <= ? ORDER BY captured_at DESC LIMIT ?",
	)).
		WithArgs("PACK-01", "ORDER", "2026-05-01 00:00:00", "2026-05-02 00:00:00", 100).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), repository.EventFilter{
		StationUID: "PACK-01",
		EventType:  "order",
		From:       from,
		To:         to,
		Limit:      100,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 1 || got[0].EventID != "evt-1" || got[0].OrderNo != "ORD-1" {
		t.Errorf("unexpected result: %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_DailyStats_GroupsByStationAndDay(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewEventSQLite(db)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"day", "station_uid", "station_name", "event_count", "order_count", "completion_count",
	}).
		AddRow("2026-05-02", "PACK-01", "Packing 1", 42, 7, 7).
		AddRow("2026-05-01", "PACK-01", nil, 10, 2, 1)

	mock.ExpectQuery(regexp.QuoteMeta("substr(e.captured_at, 1, 10)")).
		WithArgs("Q", "PACK-01", "2026-05-01 00:00:00", "2026-05-31 23:59:59").
		WillReturnRows(rows)

	got, err := repo.DailyStats(context.Background(), repository.StatsFilter{
		StationUID:     "PACK-01",
		From:           from,
		To:             to,
		CompletionType: "Q",
	})
	if err != nil {
		t.Fatalf("DailyStats() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 rows, got %d", len(got))
	}
	if got[0].Date != "2026-05-02" || got[0].EventCount != 42 || got[0].CompletionCount != 7 {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[1].StationName != "" {
		t.Errorf("null station_name must come back empty, got %q", got[1].StationName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEventSQLite_ListByOrder_JoinsStation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{
		"id", "station_uid", "event_type", "order_no", "barcode_value", "captured_at", "station_meta",
		"station_name", "location",
	}).
		AddRow("e1", "PACK-01", "ORDER", "ORD-1", "ORD-1",
			time.Date(2026, 5, 1, 11, 59, 0, 0, time.UTC), nil, "Packing 1", "Hall A").
		AddRow("e2", "PACK-01", "Q", "ORD-1", "Q",
			time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			`{"agent_version":"1.0.0"}`, "Packing 1", "Hall A")

	mock.ExpectQuery("LEFT JOIN stations").
		WithArgs("ORD-1").
		WillReturnRows(rows)

	got, err := repo.ListByOrder(context.Background(), "ORD-1")
	if err != nil {
		t.Fatalf("ListByOrder() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 events, got %d", len(got))
	}
	if got[0].StationName != "Packing 1" || got[0].Location != "Hall A" {
		t.Errorf("station join fields missing: %+v", got[0])
	}
	if got[1].StationMeta == nil || got[1].StationMeta.AgentVersion != "1.0.0" {
		t.Errorf("station meta not unmarshaled: %+v", got[1].StationMeta)
	}
	if got[0].CapturedAt.After(got[1].CapturedAt) {
		t.Error("events must come back in capture order")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
