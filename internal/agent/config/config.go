package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults for intervals and queue sizing.
const (
	DefaultQueueCapacity       = 1000
	DefaultDrainInterval       = 2 * time.Second
	DefaultHealthCheckInterval = 30 * time.Second
	DefaultHeartbeatInterval   = 60 * time.Second
	DefaultTimeDriftThreshold  = 3 * time.Second
	DefaultRequestTimeout      = 10 * time.Second
)

// PatternRule maps a barcode pattern to an event type. Rules are an ordered
// list, not a map: the first matching rule wins, so configuration order is
// the tie-break for ambiguous patterns.
type PatternRule struct {
	Type    string `mapstructure:"type"`
	Pattern string `mapstructure:"pattern"`
}

// ExpectedCamera is one camera the station must be able to see.
type ExpectedCamera struct {
	Role           string `mapstructure:"role"`
	ExpectedSerial string `mapstructure:"expected_serial"`
}

// ExpectedNAS is the recording node the station's cameras stream to. Camera
// discovery goes through its surveillance API, so its address is required
// whenever any device checks are configured.
type ExpectedNAS struct {
	ExpectedSerial string `mapstructure:"expected_serial"`
	Address        string `mapstructure:"address"`
}

// ExpectedScanner is the barcode scanner attached to this station.
type ExpectedScanner struct {
	ExpectedSerial string `mapstructure:"expected_serial"`
	ComPort        string `mapstructure:"com_port"`
	SerialFile     string `mapstructure:"serial_file"` // udev-exported identity, optional
}

// ExpectedDevices lists the device identities this station is provisioned with.
type ExpectedDevices struct {
	IPCams  []ExpectedCamera `mapstructure:"ipcams"`
	NAS     ExpectedNAS      `mapstructure:"nas"`
	Scanner ExpectedScanner  `mapstructure:"scanner"`
}

// Queue holds delivery-queue overrides.
type Queue struct {
	Capacity      int           `mapstructure:"capacity"`
	DrainInterval time.Duration `mapstructure:"drain_interval"`
}

// Config is the full station configuration, loaded once at process start.
type Config struct {
	StationUID  string `mapstructure:"station_uid"`
	StationName string `mapstructure:"station_name"`
	APIEndpoint string `mapstructure:"api_endpoint"`

	// BarcodePatterns is scanned in order; first match wins.
	BarcodePatterns []PatternRule `mapstructure:"barcode_patterns"`
	// OrderType opens an order session; CompletionType closes it.
	OrderType      string `mapstructure:"order_type"`
	CompletionType string `mapstructure:"completion_type"`

	ExpectedDevices ExpectedDevices `mapstructure:"expected_devices"`

	Queue               Queue         `mapstructure:"queue"`
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval"`
	HeartbeatInterval   time.Duration `mapstructure:"heartbeat_interval"`
	TimeDriftThreshold  time.Duration `mapstructure:"time_drift_threshold"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`

	LogLevel string `mapstructure:"log_level"`
}

// Load reads the station configuration file, applies defaults, and validates
// the parts the pipeline cannot run without.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read station config %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse station config %q: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.OrderType == "" {
		cfg.OrderType = "ORDER"
	}
	if cfg.CompletionType == "" {
		cfg.CompletionType = "Q"
	}
	if cfg.Queue.Capacity <= 0 {
		cfg.Queue.Capacity = DefaultQueueCapacity
	}
	if cfg.Queue.DrainInterval <= 0 {
		cfg.Queue.DrainInterval = DefaultDrainInterval
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DefaultHealthCheckInterval
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.TimeDriftThreshold <= 0 {
		cfg.TimeDriftThreshold = DefaultTimeDriftThreshold
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func validate(cfg *Config) error {
	if cfg.StationUID == "" {
		return fmt.Errorf("station config: station_uid is required")
	}
	if cfg.APIEndpoint == "" {
		return fmt.Errorf("station config: api_endpoint is required")
	}
	if len(cfg.BarcodePatterns) == 0 {
		return fmt.Errorf("station config: barcode_patterns must not be empty")
	}
	for i, rule := range cfg.BarcodePatterns {
		if rule.Type == "" || rule.Pattern == "" {
			return fmt.Errorf("station config: barcode_patterns[%d] needs both type and pattern", i)
		}
	}
	return nil
}
