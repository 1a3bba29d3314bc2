package monitor

import (
	"context"
	"time"

	"packtrace/internal/agent/config"
	"packtrace/internal/agent/transport"
	"packtrace/internal/logger"
	"packtrace/internal/models"
)

// Reporter is the slice of the transport client the monitor needs.
type Reporter interface {
	ReportHealth(ctx context.Context, r transport.HealthReport) error
	ServerTime(ctx context.Context) (time.Time, error)
	RegisterCamera(ctx context.Context, cam models.Camera) error
	RegisterNAS(ctx context.Context, n models.NAS) error
	RegisterScanner(ctx context.Context, s models.Scanner) error
}

// Discovery probes the station's local network and bus for attached devices.
type Discovery interface {
	Cameras(ctx context.Context) ([]models.Camera, error)
	NAS(ctx context.Context) (*models.NAS, error)
	Scanner(ctx context.Context) (*models.Scanner, error)
}

// HealthMonitor runs the periodic station checks and the heartbeat. Each
// check is independent: a failing probe produces a report, it never aborts
// the other checks in the same cycle.
type HealthMonitor struct {
	cfg       *config.Config
	client    Reporter
	discovery Discovery
	meta      *models.StationMeta
	log       *logger.Logger
	now       func() time.Time
}

func New(cfg *config.Config, client Reporter, discovery Discovery, meta *models.StationMeta, log *logger.Logger) *HealthMonitor {
	return &HealthMonitor{
		cfg:       cfg,
		client:    client,
		discovery: discovery,
		meta:      meta,
		log:       log,
		now:       time.Now,
	}
}

// Run executes the check cycle on the configured interval until ctx is
// canceled. The first cycle runs immediately so a fresh agent reports state
// without waiting a full interval.
func (m *HealthMonitor) Run(ctx context.Context, interval time.Duration) {
	m.runChecks(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.runChecks(ctx)
		}
	}
}

// RunHeartbeat sends the liveness beacon on the given interval until ctx is
// canceled. Central derives the station's OFFLINE state from its absence.
func (m *HealthMonitor) RunHeartbeat(ctx context.Context, interval time.Duration) {
	m.sendHeartbeat(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.sendHeartbeat(ctx)
		}
	}
}

func (m *HealthMonitor) sendHeartbeat(ctx context.Context) {
	err := m.client.ReportHealth(ctx, transport.HealthReport{
		StationUID: m.cfg.StationUID,
		CheckType:  models.CheckHeartbeat,
		Status:     models.HealthOK,
		Detail:     m.meta,
	})
	if err != nil {
		m.log.Warnw("heartbeat_failed", "err", err)
	}
}

func (m *HealthMonitor) runChecks(ctx context.Context) {
	m.checkTimeDrift(ctx)
	m.checkCameras(ctx)
	m.checkNAS(ctx)
	m.checkScanner(ctx)
}

// checkTimeDrift compares the local clock to central's. Drift past the
// threshold is a WARNING: events keep flowing, but captured_at timestamps
// will not line up with recording timelines.
func (m *HealthMonitor) checkTimeDrift(ctx context.Context) {
	serverTime, err := m.client.ServerTime(ctx)
	if err != nil {
		m.log.Warnw("time_check_skipped", "err", err)
		return
	}

	drift := m.now().Sub(serverTime)
	if drift < 0 {
		drift = -drift
	}

	status := models.HealthOK
	if drift > m.cfg.TimeDriftThreshold {
		status = models.HealthWarning
	}
	m.report(ctx, models.CheckTime, status, map[string]any{
		"drift_ms":     drift.Milliseconds(),
		"threshold_ms": m.cfg.TimeDriftThreshold.Milliseconds(),
	})
}

// checkCameras probes each expected camera by role. A missing camera is
// CAM_OFFLINE; a reachable camera whose serial differs from the provisioned
// one is CAM_SERIAL_CHANGED, since its recordings would resolve to the wrong
// footage. Matching cameras are re-registered so central keeps a fresh
// last-seen record.
func (m *HealthMonitor) checkCameras(ctx context.Context) {
	found, err := m.discovery.Cameras(ctx)
	if err != nil {
		m.log.Warnw("camera_discovery_failed", "err", err)
		found = nil
	}

	bySerial := make(map[string]models.Camera, len(found))
	for _, cam := range found {
		bySerial[cam.SerialNumber] = cam
	}

	for _, expected := range m.cfg.ExpectedDevices.IPCams {
		cam, ok := bySerial[expected.ExpectedSerial]
		switch {
		case ok:
			m.report(ctx, models.CheckCamOffline, models.HealthOK, map[string]string{
				"role":   expected.Role,
				"serial": expected.ExpectedSerial,
			})
			if err := m.client.RegisterCamera(ctx, cam); err != nil {
				m.log.Warnw("camera_register_failed", "err", err, "serial", cam.SerialNumber)
			}
		case len(found) > 0:
			m.report(ctx, models.CheckCamSerialChanged, models.HealthError, map[string]any{
				"role":            expected.Role,
				"expected_serial": expected.ExpectedSerial,
				"found_serials":   serials(found),
			})
		default:
			m.report(ctx, models.CheckCamOffline, models.HealthError, map[string]string{
				"role":            expected.Role,
				"expected_serial": expected.ExpectedSerial,
			})
		}
	}
}

func (m *HealthMonitor) checkNAS(ctx context.Context) {
	expected := m.cfg.ExpectedDevices.NAS.ExpectedSerial
	if expected == "" {
		return
	}

	nas, err := m.discovery.NAS(ctx)
	if err != nil {
		m.log.Warnw("nas_discovery_failed", "err", err)
		nas = nil
	}

	switch {
	case nas == nil:
		m.report(ctx, models.CheckNASOffline, models.HealthError, map[string]string{
			"expected_serial": expected,
		})
	case nas.SerialNumber != expected:
		m.report(ctx, models.CheckNASSerialChanged, models.HealthError, map[string]string{
			"expected_serial": expected,
			"found_serial":    nas.SerialNumber,
		})
	default:
		m.report(ctx, models.CheckNASOffline, models.HealthOK, map[string]string{
			"serial": expected,
		})
		if err := m.client.RegisterNAS(ctx, *nas); err != nil {
			m.log.Warnw("nas_register_failed", "err", err, "serial", nas.SerialNumber)
		}
	}
}

func (m *HealthMonitor) checkScanner(ctx context.Context) {
	expected := m.cfg.ExpectedDevices.Scanner.ExpectedSerial
	if expected == "" {
		return
	}

	sc, err := m.discovery.Scanner(ctx)
	if err != nil {
		m.log.Warnw("scanner_discovery_failed", "err", err)
		sc = nil
	}

	switch {
	case sc == nil:
		m.report(ctx, models.CheckScannerOffline, models.HealthError, map[string]string{
			"expected_serial": expected,
		})
	case sc.ScannerUID != expected:
		m.report(ctx, models.CheckScannerSerialChanged, models.HealthError, map[string]string{
			"expected_serial": expected,
			"found_serial":    sc.ScannerUID,
		})
	default:
		m.report(ctx, models.CheckScannerOffline, models.HealthOK, map[string]string{
			"serial": expected,
		})
		sc.StationUID = m.cfg.StationUID
		if err := m.client.RegisterScanner(ctx, *sc); err != nil {
			m.log.Warnw("scanner_register_failed", "err", err, "serial", sc.ScannerUID)
		}
	}
}

func (m *HealthMonitor) report(ctx context.Context, checkType, status string, detail any) {
	err := m.client.ReportHealth(ctx, transport.HealthReport{
		StationUID: m.cfg.StationUID,
		CheckType:  checkType,
		Status:     status,
		Detail:     detail,
	})
	if err != nil {
		m.log.Warnw("health_report_failed", "check", checkType, "err", err)
	}
}

func serials(cams []models.Camera) []string {
	out := make([]string, 0, len(cams))
	for _, c := range cams {
		out = append(out, c.SerialNumber)
	}
	return out
}
