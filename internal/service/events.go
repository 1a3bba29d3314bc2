package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

type EventsService struct {
	eventRepo repository.EventRepo
}

func NewEventsService(eventRepo repository.EventRepo) *EventsService {
	return &EventsService{eventRepo: eventRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// MissingFieldsError names the required fields a request left empty, so the
// caller can be told exactly what to fix.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Ingest validates and stores one scan event, returning its id.
func (s *EventsService) Ingest(ctx context.Context, p IngestParams) (string, error) {
	var missing []string
	if strings.TrimSpace(p.StationUID) == "" {
		missing = append(missing, "station_uid")
	}
	if strings.TrimSpace(p.EventType) == "" {
		missing = append(missing, "event_type")
	}
	if p.CapturedAt.IsZero() {
		missing = append(missing, "captured_at")
	}
	if len(missing) > 0 {
		return "", &MissingFieldsError{Fields: missing}
	}

	return s.eventRepo.Append(ctx, models.ScanEvent{
		StationUID:   strings.TrimSpace(p.StationUID),
		EventType:    normalizeEventType(p.EventType),
		OrderNo:      strings.TrimSpace(p.OrderNo),
		BarcodeValue: p.BarcodeValue,
		CapturedAt:   p.CapturedAt.UTC(),
		StationMeta:  p.StationMeta,
	})
}

// List returns events matching the filter, newest first.
func (s *EventsService) List(ctx context.Context, f EventFilter) ([]models.ScanEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	return s.eventRepo.List(ctx, repository.EventFilter{
		StationUID: strings.TrimSpace(f.StationUID),
		OrderNo:    strings.TrimSpace(f.OrderNo),
		EventType:  normalizeEventType(f.EventType),
		From:       from,
		To:         to,
		Limit:      limit,
	})
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type.
func normalizeEventType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
