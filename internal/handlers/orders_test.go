package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"packtrace/internal/models"
	"packtrace/internal/service"
)

func TestResolveOrder(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	t.Run("requires auth", func(t *testing.T) {
		r := newTestRouter(&service.Service{Orders: &mockOrders{}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders/ORD-1/events", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without auth, got %d", w.Code)
		}
	})

	t.Run("returns playback result", func(t *testing.T) {
		anchor := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		orders := &mockOrders{resp: &models.PlaybackResult{
			OrderNo:    "ORD-1",
			StationUID: "PACK-01",
			Window: models.PlaybackWindow{
				Start: anchor.Add(-60 * time.Second),
				End:   anchor.Add(60 * time.Second),
			},
		}}
		r := newTestRouter(&service.Service{Orders: orders, Authorization: auth})

		body := []byte(`{"user_id":"alice"}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders/ORD-1/events", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, vv := range authHeader("valid") {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		if orders.lastOrderNo != "ORD-1" {
			t.Errorf("order no: got %q", orders.lastOrderNo)
		}
		if orders.lastAudit.UserID != "alice" {
			t.Errorf("audit user: got %q", orders.lastAudit.UserID)
		}
		if orders.lastAudit.IPAddress == "" {
			t.Error("audit ip must default to the client address")
		}

		var resp models.PlaybackResult
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.StationUID != "PACK-01" {
			t.Errorf("unexpected result: %+v", resp)
		}
	})

	t.Run("missing order returns 404 with suggestions", func(t *testing.T) {
		orders := &mockOrders{err: &service.NotFoundError{OrderNo: "ORD-404"}}
		r := newTestRouter(&service.Service{Orders: orders, Authorization: auth})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders/ORD-404/events", nil)
		for k, vv := range authHeader("valid") {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		var resp struct {
			Message     string   `json:"message"`
			Suggestions []string `json:"suggestions"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Message != "Order not found" {
			t.Errorf("message: got %q", resp.Message)
		}
		if len(resp.Suggestions) != 4 {
			t.Errorf("want 4 suggestions, got %v", resp.Suggestions)
		}
	})

	t.Run("blank order number is a 400", func(t *testing.T) {
		orders := &mockOrders{err: service.ErrEmptyOrderNo}
		r := newTestRouter(&service.Service{Orders: orders, Authorization: auth})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/orders/%20/events", nil)
		for k, vv := range authHeader("valid") {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestStationHealthEndpoints(t *testing.T) {
	auth := &mockAuth{parseID: 7}

	t.Run("overview wraps stations with a count", func(t *testing.T) {
		health := &mockHealth{overview: []models.StationHealthView{
			{Station: models.Station{StationUID: "PACK-01"}, HealthStatus: models.HealthOK},
			{Station: models.Station{StationUID: "PACK-02"}, HealthStatus: models.HealthOffline},
		}}
		r := newTestRouter(&service.Service{Health: health, Authorization: auth})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health/stations", nil)
		for k, vv := range authHeader("valid") {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		var resp struct {
			Count    int                        `json:"count"`
			Stations []models.StationHealthView `json:"stations"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Count != 2 || len(resp.Stations) != 2 {
			t.Errorf("unexpected overview: %+v", resp)
		}
	})

	t.Run("unknown station detail is 404", func(t *testing.T) {
		r := newTestRouter(&service.Service{Health: &mockHealth{}, Authorization: auth})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health/stations/NOPE", nil)
		for k, vv := range authHeader("valid") {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("report accepts agent payloads without auth", func(t *testing.T) {
		health := &mockHealth{}
		r := newTestRouter(&service.Service{Health: health})

		body := []byte(`{"station_uid":"PACK-01","check_type":"HEARTBEAT","status":"OK","detail":{"agent_version":"1.0.0"}}`)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/health/report", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
		}
		if health.lastReport.StationUID != "PACK-01" || health.lastReport.CheckType != "HEARTBEAT" {
			t.Errorf("report not forwarded: %+v", health.lastReport)
		}
	})
}
