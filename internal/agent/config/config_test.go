package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "station.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
station_uid: "PACK-01"
api_endpoint: "http://central.local:8080"
barcode_patterns:
  - type: "ORDER"
    pattern: "^ORD-[0-9]{6}$"
  - type: "Q"
    pattern: "^Q$"
  - type: "ITEM"
    pattern: "^[0-9]{12}$"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OrderType != "ORDER" || cfg.CompletionType != "Q" {
		t.Errorf("session types: got %q/%q", cfg.OrderType, cfg.CompletionType)
	}
	if cfg.Queue.Capacity != DefaultQueueCapacity {
		t.Errorf("queue capacity: want %d, got %d", DefaultQueueCapacity, cfg.Queue.Capacity)
	}
	if cfg.Queue.DrainInterval != DefaultDrainInterval {
		t.Errorf("drain interval: want %v, got %v", DefaultDrainInterval, cfg.Queue.DrainInterval)
	}
	if cfg.HealthCheckInterval != DefaultHealthCheckInterval {
		t.Errorf("health interval: want %v, got %v", DefaultHealthCheckInterval, cfg.HealthCheckInterval)
	}
	if cfg.HeartbeatInterval != DefaultHeartbeatInterval {
		t.Errorf("heartbeat interval: want %v, got %v", DefaultHeartbeatInterval, cfg.HeartbeatInterval)
	}
	if cfg.TimeDriftThreshold != DefaultTimeDriftThreshold {
		t.Errorf("drift threshold: want %v, got %v", DefaultTimeDriftThreshold, cfg.TimeDriftThreshold)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("request timeout: want %v, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: want info, got %q", cfg.LogLevel)
	}
}

func TestLoad_PreservesPatternOrder(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"ORDER", "Q", "ITEM"}
	if len(cfg.BarcodePatterns) != len(want) {
		t.Fatalf("want %d rules, got %d", len(want), len(cfg.BarcodePatterns))
	}
	for i, rule := range cfg.BarcodePatterns {
		if rule.Type != want[i] {
			t.Errorf("rule %d: want type %q, got %q", i, want[i], rule.Type)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, minimalConfig+`
queue:
  capacity: 50
  drain_interval: 500ms
heartbeat_interval: 30s
time_drift_threshold: 1s
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Queue.Capacity != 50 {
		t.Errorf("queue capacity: want 50, got %d", cfg.Queue.Capacity)
	}
	if cfg.Queue.DrainInterval != 500*time.Millisecond {
		t.Errorf("drain interval: want 500ms, got %v", cfg.Queue.DrainInterval)
	}
	if cfg.HeartbeatInterval != 30*time.Second {
		t.Errorf("heartbeat interval: want 30s, got %v", cfg.HeartbeatInterval)
	}
	if cfg.TimeDriftThreshold != time.Second {
		t.Errorf("drift threshold: want 1s, got %v", cfg.TimeDriftThreshold)
	}
}

func TestLoad_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing file",
			body:    "",
			wantErr: "",
		},
		{
			name: "missing station uid",
			body: `
api_endpoint: "http://central.local:8080"
barcode_patterns:
  - type: "ORDER"
    pattern: "^ORD-"
`,
			wantErr: "station_uid",
		},
		{
			name: "missing api endpoint",
			body: `
station_uid: "PACK-01"
barcode_patterns:
  - type: "ORDER"
    pattern: "^ORD-"
`,
			wantErr: "api_endpoint",
		},
		{
			name: "no patterns",
			body: `
station_uid: "PACK-01"
api_endpoint: "http://central.local:8080"
`,
			wantErr: "barcode_patterns",
		},
		{
			name: "pattern without type",
			body: `
station_uid: "PACK-01"
api_endpoint: "http://central.local:8080"
barcode_patterns:
  - pattern: "^ORD-"
`,
			wantErr: "barcode_patterns[0]",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var path string
			if tc.name == "missing file" {
				path = filepath.Join(t.TempDir(), "absent.yml")
			} else {
				path = writeConfig(t, tc.body)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("want error, got nil")
			}
			if tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q must mention %q", err, tc.wantErr)
			}
		})
	}
}
