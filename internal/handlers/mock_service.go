package handlers

import (
	"context"
	"net/http"

	"packtrace/internal/models"
	"packtrace/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastParseToken string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockEvents struct {
	ingestID    string
	ingestErr   error
	listResp    []models.ScanEvent
	listErr     error
	lastIngest  service.IngestParams
	lastFilter  service.EventFilter
	ingestCalls int
}

func (m *mockEvents) Ingest(ctx context.Context, p service.IngestParams) (string, error) {
	m.ingestCalls++
	m.lastIngest = p
	return m.ingestID, m.ingestErr
}
func (m *mockEvents) List(ctx context.Context, f service.EventFilter) ([]models.ScanEvent, error) {
	m.lastFilter = f
	return m.listResp, m.listErr
}

type mockHealth struct {
	reportErr  error
	overview   []models.StationHealthView
	detail     *service.StationDetail
	detailErr  error
	lastReport service.ReportParams
}

func (m *mockHealth) Report(ctx context.Context, p service.ReportParams) error {
	m.lastReport = p
	return m.reportErr
}
func (m *mockHealth) Overview(ctx context.Context) ([]models.StationHealthView, error) {
	return m.overview, nil
}
func (m *mockHealth) Detail(ctx context.Context, stationUID string) (*service.StationDetail, error) {
	return m.detail, m.detailErr
}

type mockOrders struct {
	resp        *models.PlaybackResult
	err         error
	lastOrderNo string
	lastAudit   models.QueryAudit
}

func (m *mockOrders) Resolve(ctx context.Context, orderNo string, audit models.QueryAudit) (*models.PlaybackResult, error) {
	m.lastOrderNo = orderNo
	m.lastAudit = audit
	return m.resp, m.err
}

type mockDevices struct {
	err         error
	lastStation models.Station
	lastBind    service.BindParams
}

func (m *mockDevices) RegisterStation(ctx context.Context, s models.Station) error {
	m.lastStation = s
	return m.err
}
func (m *mockDevices) RegisterCamera(ctx context.Context, c models.Camera) error { return m.err }

func (m *mockDevices) RegisterNAS(ctx context.Context, n models.NAS) error { return m.err }

func (m *mockDevices) RegisterScanner(ctx context.Context, s models.Scanner) error { return m.err }

func (m *mockDevices) Bind(ctx context.Context, p service.BindParams) error {
	m.lastBind = p
	return m.err
}

type mockStats struct {
	resp       []models.DailyStationStats
	err        error
	lastFilter service.StatsFilter
}

func (m *mockStats) Daily(ctx context.Context, f service.StatsFilter) ([]models.DailyStationStats, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
