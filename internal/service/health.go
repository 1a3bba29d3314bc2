package service

import (
	"context"
	"strings"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/repository"
)

// Thresholds for the per-station health verdict.
const (
	// heartbeatErrorAge marks a station effectively offline.
	heartbeatErrorAge = 300 * time.Second
	// heartbeatWarnAge marks a station late but not yet lost.
	heartbeatWarnAge = 120 * time.Second
	// activeLogLookback bounds which unresolved logs still count.
	activeLogLookback = 24 * time.Hour

	recentLogLimit = 50
)

type HealthService struct {
	healthRepo  repository.HealthRepo
	stationRepo repository.StationRepo
	deviceRepo  repository.DeviceRepo
	now         func() time.Time
}

func NewHealthService(healthRepo repository.HealthRepo, stationRepo repository.StationRepo, deviceRepo repository.DeviceRepo) *HealthService {
	return &HealthService{
		healthRepo:  healthRepo,
		stationRepo: stationRepo,
		deviceRepo:  deviceRepo,
		now:         time.Now,
	}
}

// Report stores one health report. A HEARTBEAT additionally bumps the
// station's last_heartbeat, which is the liveness signal Overview derives
// from.
func (s *HealthService) Report(ctx context.Context, p ReportParams) error {
	var missing []string
	if strings.TrimSpace(p.StationUID) == "" {
		missing = append(missing, "station_uid")
	}
	if strings.TrimSpace(p.CheckType) == "" {
		missing = append(missing, "check_type")
	}
	if strings.TrimSpace(p.Status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}

	now := s.now().UTC()
	checkType := normalizeEventType(p.CheckType)

	if err := s.healthRepo.Append(ctx, models.HealthLog{
		StationUID: strings.TrimSpace(p.StationUID),
		CheckType:  checkType,
		Status:     normalizeEventType(p.Status),
		Detail:     p.Detail,
		ReportedAt: now,
	}); err != nil {
		return err
	}

	if checkType == models.CheckHeartbeat {
		agentVersion := heartbeatAgentVersion(p.Detail)
		return s.stationRepo.TouchHeartbeat(ctx, strings.TrimSpace(p.StationUID), agentVersion, now)
	}
	return nil
}

// Overview lists every station with its derived health status.
func (s *HealthService) Overview(ctx context.Context) ([]models.StationHealthView, error) {
	now := s.now().UTC()
	summaries, err := s.stationRepo.HealthSummaries(ctx, now.Add(-activeLogLookback))
	if err != nil {
		return nil, err
	}

	views := make([]models.StationHealthView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, buildView(sum, now))
	}
	return views, nil
}

// Detail returns one station's derived health, bound devices, and recent logs.
// Returns (nil, nil) when the station is unknown.
func (s *HealthService) Detail(ctx context.Context, stationUID string) (*StationDetail, error) {
	now := s.now().UTC()
	summaries, err := s.stationRepo.HealthSummaries(ctx, now.Add(-activeLogLookback))
	if err != nil {
		return nil, err
	}

	var view *models.StationHealthView
	for _, sum := range summaries {
		if sum.StationUID == stationUID {
			v := buildView(sum, now)
			view = &v
			break
		}
	}
	if view == nil {
		return nil, nil
	}

	devices, err := s.deviceRepo.ActiveBindings(ctx, stationUID)
	if err != nil {
		return nil, err
	}
	logs, err := s.healthRepo.RecentByStation(ctx, stationUID, recentLogLimit)
	if err != nil {
		return nil, err
	}

	return &StationDetail{Station: *view, Devices: devices, Logs: logs}, nil
}

func buildView(sum models.StationHealthSummary, now time.Time) models.StationHealthView {
	view := models.StationHealthView{
		Station:        sum.Station,
		ActiveErrors:   sum.ActiveErrors,
		ActiveWarnings: sum.ActiveWarnings,
	}
	var age time.Duration
	hasHeartbeat := sum.LastHeartbeat != nil
	if hasHeartbeat {
		age = now.Sub(*sum.LastHeartbeat)
		secs := int64(age / time.Second)
		view.HeartbeatAgeSeconds = &secs
	}
	view.HealthStatus = DeriveStatus(hasHeartbeat, age, sum.ActiveErrors, sum.ActiveWarnings)
	return view
}

// DeriveStatus computes the station health verdict. First match wins: a
// heartbeat older than 5 minutes dominates everything, any unresolved error
// dominates a merely-late heartbeat, and a late heartbeat or unresolved
// warning degrades to WARNING. A station that never sent a heartbeat is
// OFFLINE rather than ERROR.
func DeriveStatus(hasHeartbeat bool, heartbeatAge time.Duration, activeErrors, activeWarnings int) string {
	if !hasHeartbeat {
		return models.HealthOffline
	}
	if heartbeatAge > heartbeatErrorAge {
		return models.HealthError
	}
	if activeErrors > 0 {
		return models.HealthError
	}
	if heartbeatAge > heartbeatWarnAge || activeWarnings > 0 {
		return models.HealthWarning
	}
	return models.HealthOK
}

// heartbeatAgentVersion digs the agent version out of a heartbeat detail
// payload, if one is present.
func heartbeatAgentVersion(detail any) string {
	m, ok := detail.(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := m["agent_version"].(string); ok {
		return v
	}
	if v, ok := m["version"].(string); ok {
		return v
	}
	return ""
}
