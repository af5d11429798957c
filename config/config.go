package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Sync       SyncConfig       `yaml:"sync"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Viewport   ViewportConfig   `yaml:"viewport"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds the connection settings for the change channel.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// SyncConfig controls the refresh coordinators.
type SyncConfig struct {
	VenueIDs            []int64       `yaml:"venue_ids"`
	PollIntervalSeconds int           `yaml:"poll_interval_seconds"`
	PollInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	RecencyCutoffHours  int           `yaml:"recency_cutoff_hours"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ViewportConfig holds the floor-plan design space and zoom bounds.
type ViewportConfig struct {
	DesignWidth    float64 `yaml:"design_width"`
	DesignHeight   float64 `yaml:"design_height"`
	MinZoom        float64 `yaml:"min_zoom"`
	MaxZoom        float64 `yaml:"max_zoom"`
	FitPadding     float64 `yaml:"fit_padding"`
	ZoomStep       float64 `yaml:"zoom_step"`
	WheelLineDelta float64 `yaml:"wheel_line_delta"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Sync.PollIntervalSeconds <= 0 {
		cfg.Sync.PollIntervalSeconds = 30
	}
	cfg.Sync.PollInterval = time.Duration(cfg.Sync.PollIntervalSeconds) * time.Second

	if cfg.Sync.RecencyCutoffHours <= 0 {
		cfg.Sync.RecencyCutoffHours = 12
	}

	if len(cfg.Sync.VenueIDs) == 0 {
		cfg.Sync.VenueIDs = []int64{1}
	}

	if cfg.Redis.ChannelPrefix == "" {
		cfg.Redis.ChannelPrefix = "venue"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	applyViewportDefaults(&cfg.Viewport)

	return &cfg, nil
}

func applyViewportDefaults(v *ViewportConfig) {
	if v.DesignWidth <= 0 {
		v.DesignWidth = 1000
	}
	if v.DesignHeight <= 0 {
		v.DesignHeight = 800
	}
	if v.MinZoom <= 0 {
		v.MinZoom = 0.2
	}
	if v.MaxZoom <= 0 {
		v.MaxZoom = 3.0
	}
	if v.FitPadding <= 0 {
		v.FitPadding = 40
	}
	if v.ZoomStep <= 0 {
		v.ZoomStep = 0.2
	}
	if v.WheelLineDelta <= 0 {
		// Deltas at or above this magnitude are treated as discrete wheel
		// clicks, smaller ones as trackpad scrolling.
		v.WheelLineDelta = 50
	}
}
