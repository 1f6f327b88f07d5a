package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	DBHost        string `mapstructure:"db_host"`
	DBPort        int    `mapstructure:"db_port"`
	DBDebug       bool   `mapstructure:"db_debug"`
	RouteCreate   string `mapstructure:"db_route_create"`
	RouteFetch    string `mapstructure:"db_route_fetch"`
	RouteUpdate   string `mapstructure:"db_route_update"`
	RouteDelete   string `mapstructure:"db_route_delete"`
	TimeoutSecs   int64  `mapstructure:"request_timeout_seconds"`
	SinksFile     string `mapstructure:"sinks_file"`
	JournalType   string `mapstructure:"journal_type"`
	JournalPath   string `mapstructure:"journal_path"`
	JournalTTLSec int64  `mapstructure:"journal_ttl_seconds"`
	JournalGCSec  int64  `mapstructure:"journal_cleanup_interval_seconds"`

	RequestTimeout         time.Duration `mapstructure:"-"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "recordkv")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 8000)
	v.SetDefault("db_debug", false)
	v.SetDefault("db_route_create", "/data/add")
	v.SetDefault("db_route_fetch", "/data/get/{key}")
	v.SetDefault("db_route_update", "/data/update/{key}")
	v.SetDefault("db_route_delete", "/data/delete/{key}")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("sinks_file", "")
	v.SetDefault("journal_type", "none")
	v.SetDefault("journal_path", "./data/keys.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64(time.Hour/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.DBHost = strings.TrimSpace(cfg.DBHost)
	if cfg.DBHost == "" {
		return nil, fmt.Errorf("invalid db_host (must not be empty)")
	}
	if cfg.DBPort <= 0 || cfg.DBPort > 65535 {
		return nil, fmt.Errorf("invalid db_port %d (must be 1-65535)", cfg.DBPort)
	}

	if cfg.TimeoutSecs < 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.TimeoutSecs) * time.Second

	if cfg.JournalTTLSec <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalGCSec <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSec) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalGCSec) * time.Second

	return &cfg, nil
}
