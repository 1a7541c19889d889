package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	DataSource DataSourceConfig `yaml:"datasource"`
	Session    SessionConfig    `yaml:"session"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Refresh    RefreshConfig    `yaml:"refresh"`
}

// WorkerPoolConfig holds the configuration for the push worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port" validate:"min=1,max=65535"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" validate:"omitempty,oneof=postgres sqlite"`
	DSN                    string `yaml:"dsn"`
	Debug                  bool   `yaml:"debug"`
	Seed                   bool   `yaml:"seed"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// DataSourceConfig selects where notifications and feedback are loaded from.
type DataSourceConfig struct {
	Kind    string         `yaml:"kind" validate:"oneof=gorm memory http"`
	Request RemoteEndpoint `yaml:"request"`
}

// RemoteEndpoint describes the upstream API used by the http data source.
type RemoteEndpoint struct {
	BaseURL        string            `yaml:"base_url"`
	Headers        map[string]string `yaml:"headers"`
	HTTPProxy      string            `yaml:"http_proxy"`
	PageSize       int               `yaml:"page_size"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Timeout        time.Duration     `yaml:"-"`
}

// SessionConfig controls how long a login stays valid.
type SessionConfig struct {
	TTLMinutes int           `yaml:"ttl_minutes"`
	TTL        time.Duration `yaml:"-"`
}

// RefreshConfig controls the background re-fetch of live sessions.
type RefreshConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

var validate = validator.New()

// LoadEnv reads a .env file into the process environment if one exists.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
}

// Load reads the configuration from the given path, overlays environment
// variables and fills in defaults.
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

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.DataSource.Kind == "http" && cfg.DataSource.Request.BaseURL == "" {
		return nil, fmt.Errorf("invalid configuration: datasource.request.base_url is required for the http data source")
	}
	return &cfg, nil
}

// applyEnv lets secrets live outside the YAML file.
func applyEnv(cfg *Config) {
	overrides := map[string]*string{
		"HOSTEL_DATABASE_DSN":    &cfg.Database.DSN,
		"HOSTEL_DATASOURCE_URL":  &cfg.DataSource.Request.BaseURL,
		"HOSTEL_VAPID_PUBLIC":    &cfg.Push.PublicKey,
		"HOSTEL_VAPID_PRIVATE":   &cfg.Push.PrivateKey,
		"HOSTEL_VAPID_SUBJECT":   &cfg.Push.Subject,
		"HOSTEL_DATABASE_DRIVER": &cfg.Database.Driver,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.DataSource.Kind == "" {
		cfg.DataSource.Kind = "gorm"
	}
	if cfg.DataSource.Request.PageSize <= 0 {
		cfg.DataSource.Request.PageSize = 100
	}
	if cfg.DataSource.Request.TimeoutSeconds <= 0 {
		cfg.DataSource.Request.TimeoutSeconds = 30
	}
	cfg.DataSource.Request.Timeout = time.Duration(cfg.DataSource.Request.TimeoutSeconds) * time.Second

	if cfg.Session.TTLMinutes <= 0 {
		cfg.Session.TTLMinutes = 24 * 60
	}
	cfg.Session.TTL = time.Duration(cfg.Session.TTLMinutes) * time.Minute

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Refresh.IntervalSeconds <= 0 {
		cfg.Refresh.IntervalSeconds = 60
	}
	cfg.Refresh.Interval = time.Duration(cfg.Refresh.IntervalSeconds) * time.Second
}
