package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// Config represents the application configuration
type Config struct {
	Athlete AthleteConfig `json:"athlete" yaml:"athlete" toml:"athlete"`
	Storage StorageConfig `json:"storage" yaml:"storage" toml:"storage"`
	Coach   CoachConfig   `json:"coach" yaml:"coach" toml:"coach"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" toml:"cache"`
	Logging LoggingConfig `json:"logging" yaml:"logging" toml:"logging"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	ID        string  `json:"id" yaml:"id" toml:"id"`
	FTPWatts  float64 `json:"ftp_watts" yaml:"ftp_watts" toml:"ftp_watts"`
	LT1Watts  float64 `json:"lt1_watts" yaml:"lt1_watts" toml:"lt1_watts"`
	LT2Watts  float64 `json:"lt2_watts" yaml:"lt2_watts" toml:"lt2_watts"`
	RestingHR float64 `json:"resting_hr" yaml:"resting_hr" toml:"resting_hr"`
	MaxHR     float64 `json:"max_hr" yaml:"max_hr" toml:"max_hr"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path" toml:"db_path"`
}

// CoachConfig holds the text-generation endpoint and its OAuth2 client credentials
type CoachConfig struct {
	Endpoint          string  `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	ClientID          string  `json:"client_id" yaml:"client_id" toml:"client_id"`
	ClientSecret      string  `json:"client_secret" yaml:"client_secret" toml:"client_secret"`
	TokenURL          string  `json:"token_url" yaml:"token_url" toml:"token_url"`
	RequestsPerMinute float64 `json:"requests_per_minute" yaml:"requests_per_minute" toml:"requests_per_minute"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Enabled reports whether a coach endpoint is configured
func (c CoachConfig) Enabled() bool {
	return c.Endpoint != ""
}

// CacheConfig holds the optional Redis reply cache
type CacheConfig struct {
	RedisAddr  string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr"`
	TTLMinutes int    `json:"ttl_minutes" yaml:"ttl_minutes" toml:"ttl_minutes"`
}

// LoggingConfig holds log output preferences
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
	JSON  bool   `json:"json" yaml:"json" toml:"json"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// ErrUnsupportedFormat is returned for config files with an unknown extension
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			ID:        "default",
			RestingHR: 50,
			MaxHR:     185,
		},
		Coach: CoachConfig{
			RequestsPerMinute: 20,
			TimeoutSeconds:    30,
		},
		Cache: CacheConfig{
			TTLMinutes: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from ~/.training-coach/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a JSON, YAML or TOML config file, chosen by extension
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", "":
		err = json.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills missing values from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.ID == "" {
		c.Athlete.ID = defaults.Athlete.ID
	}
	if c.Athlete.RestingHR == 0 {
		c.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if c.Athlete.MaxHR == 0 {
		c.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if c.Coach.RequestsPerMinute == 0 {
		c.Coach.RequestsPerMinute = defaults.Coach.RequestsPerMinute
	}
	if c.Coach.TimeoutSeconds == 0 {
		c.Coach.TimeoutSeconds = defaults.Coach.TimeoutSeconds
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = defaults.Cache.TTLMinutes
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// Save writes the configuration to ~/.training-coach/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration as JSON to path
func SaveFile(path string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Athlete.FTPWatts = 250
	// The coach stays disabled until an endpoint is filled in
	example.Coach = CoachConfig{
		ClientID:          "YOUR_CLIENT_ID",
		ClientSecret:      "YOUR_CLIENT_SECRET",
		TokenURL:          "https://coach.example.com/oauth/token",
		RequestsPerMinute: 20,
		TimeoutSeconds:    30,
	}

	return Save(&example)
}

// Validate checks field ranges and reports every problem found
func (c *Config) Validate() error {
	var err error

	if c.Athlete.FTPWatts < 0 {
		err = multierr.Append(err, fmt.Errorf("athlete.ftp_watts must not be negative, got %v", c.Athlete.FTPWatts))
	}
	if c.Athlete.LT1Watts < 0 || c.Athlete.LT2Watts < 0 {
		err = multierr.Append(err, errors.New("athlete.lt1_watts and athlete.lt2_watts must not be negative"))
	}
	if c.Athlete.LT1Watts > 0 && c.Athlete.LT2Watts > 0 && c.Athlete.LT2Watts <= c.Athlete.LT1Watts {
		err = multierr.Append(err, fmt.Errorf("athlete.lt2_watts (%v) must be greater than athlete.lt1_watts (%v)", c.Athlete.LT2Watts, c.Athlete.LT1Watts))
	}
	if c.Athlete.RestingHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.RestingHR >= c.Athlete.MaxHR {
		err = multierr.Append(err, fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR))
	}

	if c.Coach.Enabled() {
		if c.Coach.ClientID == "" || c.Coach.ClientID == "YOUR_CLIENT_ID" {
			err = multierr.Append(err, errors.New("coach.client_id is required when coach.endpoint is set"))
		}
		if c.Coach.ClientSecret == "" || c.Coach.ClientSecret == "YOUR_CLIENT_SECRET" {
			err = multierr.Append(err, errors.New("coach.client_secret is required when coach.endpoint is set"))
		}
		if c.Coach.TokenURL == "" {
			err = multierr.Append(err, errors.New("coach.token_url is required when coach.endpoint is set"))
		}
	}
	if c.Coach.RequestsPerMinute < 0 {
		err = multierr.Append(err, fmt.Errorf("coach.requests_per_minute must not be negative, got %v", c.Coach.RequestsPerMinute))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level))
	}

	return err
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".training-coach"), nil
}
