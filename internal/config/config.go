// Package config loads the dashboard configuration from the environment.
//
// Values come from the process environment first, then from a .env file in
// the working directory. Every group is prefixed (SERVER_, DATA_, DATABASE_,
// LOGGING_, DWELLING_).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/database"
	"dwelling-dashboard/pkg/logging"
)

// Reading source kinds
const (
	SourceCSV = "csv"
	SourceSQL = "sql"
)

// Config is the top-level configuration, loaded once at startup
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`

	Server   ServerConfig
	Data     DataConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Dwelling DwellingConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8050" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `envconfig:"SERVER_ALLOWED_ORIGINS" default:"*"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig tells where the three reading tables live.
// With the csv source the locations are file paths, with the sql source they
// are the labels of the sensor_readings.source column.
type DataConfig struct {
	Source      string `envconfig:"DATA_SOURCE" default:"csv" validate:"oneof=csv sql"`
	Indoor      string `envconfig:"DATA_INDOOR" default:"data/indoor.csv" validate:"required"`
	Outdoor     string `envconfig:"DATA_OUTDOOR" default:"data/outdoor.csv" validate:"required"`
	Electricity string `envconfig:"DATA_ELECTRICITY" default:"data/electricity.csv" validate:"required"`
	AllowEmpty  bool   `envconfig:"DATA_ALLOW_EMPTY" default:"true"`
}

// DatabaseConfig holds connection settings for the sql source
type DatabaseConfig struct {
	Driver          string        `envconfig:"DATABASE_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
	DSN             string        `envconfig:"DATABASE_DSN"`
	MaxOpenConns    int           `envconfig:"DATABASE_MAX_OPEN_CONNS" default:"10" validate:"min=0"`
	MaxIdleConns    int           `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5" validate:"min=0"`
	ConnMaxLifetime time.Duration `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"DATABASE_CONN_MAX_IDLE_TIME" default:"5m"`
	PoolInterval    time.Duration `envconfig:"DATABASE_POOL_INTERVAL" default:"30s"`
}

// Database returns the pkg/database view of the settings
func (d DatabaseConfig) Database() *database.Config {
	return &database.Config{
		Driver:          d.Driver,
		DSN:             d.DSN,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		PoolInterval:    d.PoolInterval,
	}
}

// LoggingConfig selects log verbosity and output format
type LoggingConfig struct {
	Level string `envconfig:"LOGGING_LEVEL" default:"info"`
	// Format is json or console; empty picks console for local and json elsewhere
	Format string `envconfig:"LOGGING_FORMAT" validate:"omitempty,oneof=json console"`
}

// DwellingConfig is the house description shown above the panels
type DwellingConfig struct {
	Name           string  `envconfig:"DWELLING_NAME" default:"House 3394"`
	Title          string  `envconfig:"DWELLING_TITLE" default:"Dwelling Dashboard"`
	Location       string  `envconfig:"DWELLING_LOCATION" default:"Picardie"`
	Orientation    string  `envconfig:"DWELLING_ORIENTATION" default:"South-east"`
	Occupants      string  `envconfig:"DWELLING_OCCUPANTS" default:"1 retired lady"`
	Typology       string  `envconfig:"DWELLING_TYPOLOGY" default:"Worker house 1926"`
	Masonry        string  `envconfig:"DWELLING_MASONRY" default:"Red bricks"`
	LivingSpaceM2  float64 `envconfig:"DWELLING_LIVING_SPACE_M2" default:"85" validate:"gte=0"`
	HeatingPresets string  `envconfig:"DWELLING_HEATING_PRESETS" default:"20° day / 17° night"`
	Heating        string  `envconfig:"DWELLING_HEATING" default:"Gas"`
	HotWater       string  `envconfig:"DWELLING_HOT_WATER" default:"Gas"`
}

// Profile returns the dwelling description served by the API
func (d DwellingConfig) Profile() models.DwellingProfile {
	return models.DwellingProfile{
		Name:           d.Name,
		Title:          d.Title,
		Location:       d.Location,
		Orientation:    d.Orientation,
		Occupants:      d.Occupants,
		Typology:       d.Typology,
		Masonry:        d.Masonry,
		LivingSpaceM2:  d.LivingSpaceM2,
		HeatingPresets: d.HeatingPresets,
		Heating:        d.Heating,
		HotWater:       d.HotWater,
	}
}

// LoadConfig reads .env (if present) and the environment into a Config.
// It does not validate; call Validate before use.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks field constraints and the settings the chosen source needs
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return &models.ValidationError{
			Field:   "config",
			Message: fmt.Sprintf("configuration validation failed: %v", err),
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return &models.ValidationError{
			Field:   "LOGGING_LEVEL",
			Value:   c.Logging.Level,
			Message: err.Error(),
		}
	}

	if c.Data.Source == SourceSQL && c.Database.DSN == "" {
		return &models.ValidationError{
			Field:   "DATABASE_DSN",
			Message: "DATABASE_DSN is required when DATA_SOURCE=sql",
		}
	}

	if c.Database.MaxOpenConns > 0 && c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return &models.ValidationError{
			Field:   "DATABASE_MAX_IDLE_CONNS",
			Value:   fmt.Sprintf("%d", c.Database.MaxIdleConns),
			Message: "DATABASE_MAX_IDLE_CONNS cannot exceed DATABASE_MAX_OPEN_CONNS",
		}
	}

	return nil
}

// IsLocal reports whether the process runs on a developer machine
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
