package service

import (
	"context"
	"strings"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

type DevicesService struct {
	stationRepo repository.StationRepo
	deviceRepo  repository.DeviceRepo
}

func NewDevicesService(stationRepo repository.StationRepo, deviceRepo repository.DeviceRepo) *DevicesService {
	return &DevicesService{stationRepo: stationRepo, deviceRepo: deviceRepo}
}

// RegisterStation creates or updates a station registration.
func (s *DevicesService) RegisterStation(ctx context.Context, st models.Station) error {
	if strings.TrimSpace(st.StationUID) == "" {
		return &MissingFieldsError{Fields: []string{"station_uid"}}
	}
	return s.stationRepo.Upsert(ctx, st)
}

// RegisterCamera registers a camera or refreshes its last-seen record.
func (s *DevicesService) RegisterCamera(ctx context.Context, c models.Camera) error {
	var missing []string
	if strings.TrimSpace(c.CamUID) == "" {
		missing = append(missing, "cam_uid")
	}
	if strings.TrimSpace(c.SerialNumber) == "" {
		missing = append(missing, "serial_number")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return s.deviceRepo.UpsertCamera(ctx, c)
}

// RegisterNAS registers a storage node or refreshes its last-seen record.
func (s *DevicesService) RegisterNAS(ctx context.Context, n models.NAS) error {
	var missing []string
	if strings.TrimSpace(n.NasUID) == "" {
		missing = append(missing, "nas_uid")
	}
	if strings.TrimSpace(n.SerialNumber) == "" {
		missing = append(missing, "serial_number")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return s.deviceRepo.UpsertNAS(ctx, n)
}

// RegisterScanner registers a barcode scanner against its station.
func (s *DevicesService) RegisterScanner(ctx context.Context, sc models.Scanner) error {
	var missing []string
	if strings.TrimSpace(sc.ScannerUID) == "" {
		missing = append(missing, "scanner_uid")
	}
	if strings.TrimSpace(sc.StationUID) == "" {
		missing = append(missing, "station_uid")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return s.deviceRepo.UpsertScanner(ctx, sc)
}

// Bind attaches devices to a station under a role.
func (s *DevicesService) Bind(ctx context.Context, p BindParams) error {
	if strings.TrimSpace(p.StationUID) == "" {
		return &MissingFieldsError{Fields: []string{"station_uid"}}
	}
	return s.deviceRepo.Bind(ctx, models.DeviceBinding{
		StationUID: strings.TrimSpace(p.StationUID),
		Role:       strings.TrimSpace(p.Role),
		CamUID:     strings.TrimSpace(p.CamUID),
		NasUID:     strings.TrimSpace(p.NasUID),
		ScannerUID: strings.TrimSpace(p.ScannerUID),
	})
}
