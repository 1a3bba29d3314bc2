package monitor

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"packtrace/internal/agent/config"
	"packtrace/internal/models"

	"github.com/go-resty/resty/v2"
)

// StationDiscovery locates the station's devices. Cameras and the recording
// node are read from the NAS surveillance API; the scanner is a local device
// node.
type StationDiscovery struct {
	cfg  *config.Config
	http *resty.Client
}

func NewStationDiscovery(cfg *config.Config, timeout time.Duration) *StationDiscovery {
	return &StationDiscovery{
		cfg:  cfg,
		http: resty.New().SetTimeout(timeout),
	}
}

type synoCameraList struct {
	Success bool `json:"success"`
	Data    struct {
		Cameras []struct {
			Name   string `json:"newName"`
			IP     string `json:"ip"`
			Model  string `json:"model"`
			Serial string `json:"serial"`
		} `json:"cameras"`
	} `json:"data"`
}

// Cameras lists the cameras the recording node currently sees.
func (d *StationDiscovery) Cameras(ctx context.Context) ([]models.Camera, error) {
	addr := d.cfg.ExpectedDevices.NAS.Address
	if addr == "" {
		return nil, fmt.Errorf("camera discovery: nas address not configured")
	}

	var out synoCameraList
	resp, err := d.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParams(map[string]string{
			"api":     "SYNO.SurveillanceStation.Camera",
			"version": "9",
			"method":  "List",
		}).
		Get(fmt.Sprintf("http://%s:5000/webapi/entry.cgi", addr))
	if err != nil {
		return nil, fmt.Errorf("camera discovery: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("camera discovery: nas returned %s", resp.Status())
	}

	cams := make([]models.Camera, 0, len(out.Data.Cameras))
	for _, c := range out.Data.Cameras {
		cams = append(cams, models.Camera{
			CamUID:       c.Serial,
			SerialNumber: c.Serial,
			LastSeenIP:   c.IP,
			Model:        c.Model,
			Status:       "ONLINE",
		})
	}
	return cams, nil
}

type synoInfo struct {
	Success bool `json:"success"`
	Data    struct {
		Serial   string `json:"serial"`
		Hostname string `json:"hostname"`
		Version  string `json:"version"`
	} `json:"data"`
}

// NAS probes the recording node's info endpoint.
func (d *StationDiscovery) NAS(ctx context.Context) (*models.NAS, error) {
	addr := d.cfg.ExpectedDevices.NAS.Address
	if addr == "" {
		return nil, fmt.Errorf("nas discovery: address not configured")
	}

	var out synoInfo
	resp, err := d.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetQueryParams(map[string]string{
			"api":     "SYNO.SurveillanceStation.Info",
			"version": "8",
			"method":  "GetInfo",
		}).
		Get(fmt.Sprintf("http://%s:5000/webapi/entry.cgi", addr))
	if err != nil {
		return nil, fmt.Errorf("nas discovery: %w", err)
	}
	if resp.IsError() || !out.Success {
		return nil, fmt.Errorf("nas discovery: nas returned %s", resp.Status())
	}

	return &models.NAS{
		NasUID:       out.Data.Serial,
		SerialNumber: out.Data.Serial,
		LastSeenIP:   addr,
		SSVersion:    out.Data.Version,
		Hostname:     out.Data.Hostname,
		Status:       "ONLINE",
	}, nil
}

// Scanner checks that the scanner's device node exists. The identity comes
// from the udev-exported serial file when configured, otherwise the node's
// presence is taken as the provisioned scanner.
func (d *StationDiscovery) Scanner(ctx context.Context) (*models.Scanner, error) {
	sc := d.cfg.ExpectedDevices.Scanner
	if sc.ComPort == "" {
		return nil, fmt.Errorf("scanner discovery: com_port not configured")
	}
	if _, err := os.Stat(sc.ComPort); err != nil {
		return nil, fmt.Errorf("scanner discovery: %w", err)
	}

	uid := sc.ExpectedSerial
	if sc.SerialFile != "" {
		raw, err := os.ReadFile(sc.SerialFile)
		if err != nil {
			return nil, fmt.Errorf("scanner discovery: read serial file: %w", err)
		}
		uid = strings.TrimSpace(string(raw))
	}

	return &models.Scanner{
		ScannerUID: uid,
		StationUID: d.cfg.StationUID,
		ComPort:    sc.ComPort,
		Status:     "ONLINE",
	}, nil
}
