package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// It is built once at startup and passed by pointer into each component's constructor.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Lidarr      LidarrConfig      `toml:"lidarr"`
	MusicBrainz MusicBrainzConfig `toml:"musicbrainz"`
	Workflow    WorkflowConfig    `toml:"workflow"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LidarrConfig contains the collection manager connection and the fixed values used when registering artists.
type LidarrConfig struct {
	URL               string `toml:"url"`
	APIKey            string `toml:"api_key"`
	RootFolderPath    string `toml:"root_folder_path"`
	QualityProfileID  int    `toml:"quality_profile_id"`
	MetadataProfileID int    `toml:"metadata_profile_id"`
}

// MusicBrainzConfig contains the metadata catalog settings.
type MusicBrainzConfig struct {
	URL       string  `toml:"url"`
	UserAgent string  `toml:"user_agent"`
	RateLimit float64 `toml:"rate_limit"` // requests per second
}

// WorkflowConfig contains import workflow tuning.
type WorkflowConfig struct {
	SettleDelay time.Duration `toml:"settle_delay"`
}

// DatabaseConfig contains database connection settings.
//
// An empty Path disables import history.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger level and optional rotating file output.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Environment variables that override file values.
const (
	EnvLidarrURL      = "SCANARR_LIDARR_URL"
	EnvLidarrAPIKey   = "SCANARR_LIDARR_API_KEY"
	EnvMusicBrainzURL = "SCANARR_MUSICBRAINZ_URL"
	EnvServerPort     = "SCANARR_SERVER_PORT"
	EnvDatabasePath   = "SCANARR_DATABASE_PATH"
	EnvSettleDelay    = "SCANARR_SETTLE_DELAY"
	EnvLogLevel       = "SCANARR_LOG_LEVEL"
)

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already set are not overwritten.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values with SCANARR_* variables found through lookup.
//
// lookup is usually [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLidarrURL); ok && v != "" {
		c.Lidarr.URL = v
	}
	if v, ok := lookup(EnvLidarrAPIKey); ok && v != "" {
		c.Lidarr.APIKey = v
	}
	if v, ok := lookup(EnvMusicBrainzURL); ok && v != "" {
		c.MusicBrainz.URL = v
	}
	if v, ok := lookup(EnvDatabasePath); ok {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvServerPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a port", ErrInvalidConfig, EnvServerPort, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvSettleDelay); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, EnvSettleDelay, v)
		}
		c.Workflow.SettleDelay = d
	}
	return nil
}

// Validate checks the values every workflow run depends on.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Lidarr.URL) == "" {
		problems = append(problems, "lidarr.url is required")
	}
	if strings.TrimSpace(c.Lidarr.APIKey) == "" {
		problems = append(problems, "lidarr.api_key is required")
	}
	if strings.TrimSpace(c.MusicBrainz.URL) == "" {
		problems = append(problems, "musicbrainz.url is required")
	}
	if c.MusicBrainz.RateLimit < 0 {
		problems = append(problems, "musicbrainz.rate_limit must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Workflow.SettleDelay < 0 {
		problems = append(problems, "workflow.settle_delay must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
