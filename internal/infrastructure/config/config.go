// Package config loads service configuration from an optional TOML file,
// STOCKREPORT_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stockreport/internal/domain/reports"
	"stockreport/internal/infrastructure/storage/postgres"
	"stockreport/pkg/logger"
)

// EnvPrefix prefixes every environment override, e.g. STOCKREPORT_DATABASE_URL.
const EnvPrefix = "STOCKREPORT"

// Config holds all configuration for the application.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Catalog  CatalogConfig
	Log      LogConfig
	HTTP     HTTPConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

type DatabaseConfig struct {
	URL              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	StatementTimeout time.Duration
}

// CatalogConfig describes the store tables the report reads.
type CatalogConfig struct {
	TablePrefix   string
	MaxPerPage    int
	OrderStatuses []string
	// SnapshotReads runs each report inside one read-only transaction.
	SnapshotReads bool
}

type LogConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Gzip            bool
	GzipMinSize     int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stockreport")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "dev")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)
	v.SetDefault("database.statement_timeout", 30*time.Second)

	v.SetDefault("catalog.table_prefix", "wp_")
	v.SetDefault("catalog.max_per_page", 500)
	v.SetDefault("catalog.order_statuses", reports.CountedOrderStatuses)
	v.SetDefault("catalog.snapshot_reads", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("http.gzip", true)
	v.SetDefault("http.gzip_min_size", 1024)
}

// Load reads configuration. An empty configFile searches for config.toml in
// the working directory and /etc/stockreport; a missing file is not an error
// unless configFile names it explicitly.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/stockreport")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Database: DatabaseConfig{
			URL:              v.GetString("database.url"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.conn_max_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.conn_max_idle_time"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
		},
		Catalog: CatalogConfig{
			TablePrefix:   v.GetString("catalog.table_prefix"),
			MaxPerPage:    v.GetInt("catalog.max_per_page"),
			OrderStatuses: splitList(v.GetStringSlice("catalog.order_statuses")),
			SnapshotReads: v.GetBool("catalog.snapshot_reads"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			IdleTimeout:     v.GetDuration("http.idle_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
			Gzip:            v.GetBool("http.gzip"),
			GzipMinSize:     v.GetInt("http.gzip_min_size"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList accepts both list values and a comma separated string, which is
// how lists arrive from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) validate() error {
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must be between 0 and database.max_conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Catalog.MaxPerPage < 0 {
		return fmt.Errorf("catalog.max_per_page cannot be negative")
	}
	if len(c.Catalog.OrderStatuses) == 0 {
		return fmt.Errorf("catalog.order_statuses must name at least one status")
	}
	return nil
}

// RequireDatabase reports a missing database URL. Commands that do not touch
// the database skip this check.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (set %s_DATABASE_URL)", EnvPrefix)
	}
	return nil
}

// PoolConfig returns the connection pool settings.
func (d DatabaseConfig) PoolConfig(appName string) postgres.PoolConfig {
	pc := postgres.DefaultPoolConfig(d.URL)
	if appName != "" {
		pc.ApplicationName = appName
	}
	pc.MaxConns = d.MaxConns
	pc.MinConns = d.MinConns
	pc.MaxConnLifetime = d.MaxConnLifetime
	pc.MaxConnIdleTime = d.MaxConnIdleTime
	pc.StatementTimeout = d.StatementTimeout
	return pc
}

// LoggerConfig returns the logger settings.
func (l LogConfig) LoggerConfig() logger.Config {
	return logger.Config{Level: l.Level, Development: l.Development}
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}
