package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

// playbackPadding brackets the anchor scan on both sides.
const playbackPadding = 60 * time.Second

// ErrEmptyOrderNo rejects lookups with a blank order number.
var ErrEmptyOrderNo = errors.New("order number is required")

// NotFoundError signals that no events exist for an order. The hints are
// shown to the operator; the usual causes are edge-side.
type NotFoundError struct {
	OrderNo string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("order %q not found", e.OrderNo)
}

// RemediationHints lists the likely reasons an order has no events.
func (e *NotFoundError) RemediationHints() []string {
	return []string{
		"The station may not have reported this order's events yet",
		"The barcode scanner may not be functioning properly",
		"Device serial numbers may not match the station configuration",
		"Station PC time may be drifting (over 3 seconds)",
	}
}

type OrdersService struct {
	eventRepo      repository.EventRepo
	deviceRepo     repository.DeviceRepo
	auditRepo      repository.AuditRepo
	completionType string
	proxyBasePath  string
}

func NewOrdersService(eventRepo repository.EventRepo, deviceRepo repository.DeviceRepo,
	auditRepo repository.AuditRepo, completionType, proxyBasePath string) *OrdersService {
	return &OrdersService{
		eventRepo:      eventRepo,
		deviceRepo:     deviceRepo,
		auditRepo:      auditRepo,
		completionType: completionType,
		proxyBasePath:  strings.TrimRight(proxyBasePath, "/"),
	}
}

// Resolve looks up all events of an order and turns them into a playback
// window with bound cameras. The audit row is written before the event
// query, for every well-formed request; a crash between the two leaves an
// audit entry with no result, which is accepted for an audit trail.
func (s *OrdersService) Resolve(ctx context.Context, orderNo string, audit models.QueryAudit) (*models.PlaybackResult, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrEmptyOrderNo
	}

	audit.OrderNo = orderNo
	if err := s.auditRepo.Append(ctx, audit); err != nil {
		return nil, fmt.Errorf("write query audit: %w", err)
	}

	events, err := s.eventRepo.ListByOrder(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, &NotFoundError{OrderNo: orderNo}
	}

	anchor := s.pickAnchor(events)
	window := models.PlaybackWindow{
		Start: anchor.CapturedAt.Add(-playbackPadding),
		End:   anchor.CapturedAt.Add(playbackPadding),
	}

	bindings, err := s.deviceRepo.ActiveBindings(ctx, anchor.StationUID)
	if err != nil {
		return nil, err
	}

	cameras := make([]models.CameraPlayback, 0, len(bindings))
	for _, b := range bindings {
		if b.CamUID == "" {
			continue // binding without a camera role contributes no playback
		}
		cameras = append(cameras, models.CameraPlayback{
			Role:        b.Role,
			CamUID:      b.CamUID,
			CamSerial:   b.CamSerial,
			NasHostname: b.NasHostname,
			PlaybackURL: directPlaybackURL(b, window),
			ProxyURL:    s.proxyPlaybackURL(anchor.StationUID, b.Role, window),
		})
	}

	return &models.PlaybackResult{
		OrderNo:     orderNo,
		StationUID:  anchor.StationUID,
		StationName: anchor.StationName,
		Location:    anchor.Location,
		Anchor:      anchor,
		Window:      window,
		Cameras:     cameras,
		Events:      events,
	}, nil
}

// pickAnchor prefers the completion scan; if the order never completed, the
// earliest event centers the window instead.
func (s *OrdersService) pickAnchor(events []models.ScanEvent) models.ScanEvent {
	for _, ev := range events {
		if ev.EventType == s.completionType {
			return ev
		}
	}
	return events[0]
}

// directPlaybackURL builds the storage node's native streaming URL, or nil
// when the camera has no reachable storage node on record.
func directPlaybackURL(b models.BoundDevice, w models.PlaybackWindow) *string {
	if b.NasIP == "" || b.CamSerial == "" {
		return nil
	}
	u := fmt.Sprintf(
		"http://%s:5000/webapi/entry.cgi?api=SYNO.SurveillanceStation.Streaming&version=1&method=Stream&cameraId=%s&startTime=%d&endTime=%d",
		b.NasIP, b.CamSerial, w.Start.Unix(), w.End.Unix(),
	)
	return &u
}

func (s *OrdersService) proxyPlaybackURL(stationUID, role string, w models.PlaybackWindow) string {
	return fmt.Sprintf("%s/%s/%s?start=%s&end=%s",
		s.proxyBasePath, stationUID, role,
		w.Start.UTC().Format(time.RFC3339), w.End.UTC().Format(time.RFC3339))
}
