package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eslsoft/wordladder/internal/entity"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Learning LearningConfig `mapstructure:"learning"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	LogSQL bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LearningConfig holds the scheduling knobs.
type LearningConfig struct {
	Ladder       entity.Ladder `mapstructure:"ladder"`
	HourOffset   int           `mapstructure:"hour_offset"`
	RepeatTarget int           `mapstructure:"repeat_target"`
	NewTarget    int           `mapstructure:"new_target"`
	Seed         uint64        `mapstructure:"seed"`
}

// SnapshotConfig controls the periodic statistics snapshot run by serve.
type SnapshotConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"`
}

// Supported database drivers.
var supportedDrivers = []string{"sqlite3", "sqlite", "postgres", "pgx"}

// Load reads configuration from file and environment variables. An explicit
// path wins over the search paths.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("wordladder")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("$HOME/.wordladder")
	}

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.SetEnvPrefix("wordladder")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if len(config.Learning.Ladder) == 0 {
		config.Learning.Ladder = entity.DefaultLadder()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "wordladder.db")
	viper.SetDefault("database.log_sql", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Learning defaults
	viper.SetDefault("learning.hour_offset", 0)
	viper.SetDefault("learning.repeat_target", 30)
	viper.SetDefault("learning.new_target", 15)
	viper.SetDefault("learning.seed", 0)

	// Snapshot defaults
	viper.SetDefault("snapshot.enabled", true)
	viper.SetDefault("snapshot.cron", "*/30 * * * *")
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if !slices.Contains(supportedDrivers, c.DatabaseDriver()) {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if err := c.Learning.Ladder.Validate(); err != nil {
		return fmt.Errorf("learning.ladder: %w", err)
	}
	if c.Learning.HourOffset <= -24 || c.Learning.HourOffset >= 24 {
		return fmt.Errorf("learning.hour_offset must be within (-24, 24), got %d", c.Learning.HourOffset)
	}
	if c.Learning.RepeatTarget < 0 || c.Learning.NewTarget < 0 {
		return errors.New("learning targets must not be negative")
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort)
	}
	return nil
}

// DatabaseDriver returns the normalized driver name.
func (c *Config) DatabaseDriver() string {
	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if driver == "postgresql" {
		return "postgres"
	}
	return driver
}

// DayOffset is the shift applied to the clock before cutting it into days.
func (c *Config) DayOffset() time.Duration {
	return time.Duration(c.Learning.HourOffset) * time.Hour
}

// HTTPAddr returns the listen address of the HTTP API.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
