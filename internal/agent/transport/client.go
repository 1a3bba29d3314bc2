package transport

import (
	"context"
	"fmt"
	"time"

	"packtrace/internal/logger"
	"packtrace/internal/models"

	"github.com/go-resty/resty/v2"
)

// Client is the thin request sender the delivery queue and health monitor
// share. It carries no retry logic of its own: the queue owns event retries
// and the monitor simply reports again on its next tick.
type Client struct {
	http *resty.Client
	log  *logger.Logger
}

// New builds a client against the central service base URL.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, log: log}
}

type logEventResponse struct {
	EventID string `json:"event_id"`
}

// LogEvent submits one scan event. Any transport or non-2xx outcome is an
// error so the queue keeps the entry for retry.
func (c *Client) LogEvent(ctx context.Context, ev models.ScanEvent) error {
	var out logEventResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ev).
		SetResult(&out).
		Post("/api/events/log")
	if err != nil {
		return fmt.Errorf("post event: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post event: central returned %s", resp.Status())
	}
	c.log.Debugw("event_logged", "event_id", out.EventID)
	return nil
}

// HealthReport is the payload for /api/health/report.
type HealthReport struct {
	StationUID string `json:"station_uid"`
	CheckType  string `json:"check_type"`
	Status     string `json:"status"`
	Detail     any    `json:"detail,omitempty"`
}

// ReportHealth submits one health report.
func (c *Client) ReportHealth(ctx context.Context, r HealthReport) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(r).
		Post("/api/health/report")
	if err != nil {
		return fmt.Errorf("post health report: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post health report: central returned %s", resp.Status())
	}
	return nil
}

// RegisterCamera refreshes a camera's last-seen record centrally.
func (c *Client) RegisterCamera(ctx context.Context, cam models.Camera) error {
	return c.postJSON(ctx, "/api/admin/devices/cams", cam, "register camera")
}

// RegisterNAS refreshes a storage node's last-seen record centrally.
func (c *Client) RegisterNAS(ctx context.Context, n models.NAS) error {
	return c.postJSON(ctx, "/api/admin/devices/nas", n, "register nas")
}

// RegisterScanner refreshes a scanner's record centrally.
func (c *Client) RegisterScanner(ctx context.Context, s models.Scanner) error {
	return c.postJSON(ctx, "/api/admin/devices/scanners", s, "register scanner")
}

type serverTimeResponse struct {
	ServerTime string `json:"server_time"`
}

// ServerTime fetches the central clock, the reference for the drift check.
func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	var out serverTimeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/time")
	if err != nil {
		return time.Time{}, fmt.Errorf("get server time: %w", err)
	}
	if resp.IsError() {
		return time.Time{}, fmt.Errorf("get server time: central returned %s", resp.Status())
	}
	t, err := time.Parse(time.RFC3339Nano, out.ServerTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse server time %q: %w", out.ServerTime, err)
	}
	return t, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, what string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(path)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: central returned %s", what, resp.Status())
	}
	return nil
}
