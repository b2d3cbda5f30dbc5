package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Strava    StravaConfig    `json:"strava"`
	Intervals IntervalsConfig `json:"intervals_icu"`
	Athlete   AthleteConfig   `json:"athlete"`
	Display   DisplayConfig   `json:"display"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// IntervalsConfig holds intervals.icu API credentials for wellness sync.
// Both fields empty disables wellness sync entirely.
type IntervalsConfig struct {
	AthleteID string `json:"athlete_id"`
	APIKey    string `json:"api_key"`
}

// AthleteConfig holds athlete-specific settings. Threshold fields are
// manual overrides: when set they win over anything calibration estimates.
type AthleteConfig struct {
	Gender    string  `json:"gender"` // "male" or "female"
	FTPWatts  float64 `json:"ftp_watts"`
	FTHPMps   float64 `json:"fthp_mps"`
	MaxHR     float64 `json:"max_hr"`
	RestingHR float64 `json:"resting_hr"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			Gender: "male",
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
	}
}

// Load reads the configuration from ~/.trainload/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Athlete.Gender == "" {
		cfg.Athlete.Gender = defaults.Athlete.Gender
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PaceUnit == "" {
		cfg.Display.PaceUnit = defaults.Display.PaceUnit
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.trainload/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

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
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	// intervals.icu credentials are optional but must come as a pair
	if (c.Intervals.AthleteID == "") != (c.Intervals.APIKey == "") {
		return errors.New("intervals_icu.athlete_id and intervals_icu.api_key must both be set or both be empty")
	}

	if c.Athlete.Gender != "" && c.Athlete.Gender != "male" && c.Athlete.Gender != "female" {
		return fmt.Errorf("athlete.gender must be \"male\" or \"female\", got %q", c.Athlete.Gender)
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	// Manual overrides must be physically sensible when set
	if c.Athlete.RestingHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.RestingHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR)
	}

	return nil
}

// WellnessEnabled reports whether intervals.icu credentials are configured.
func (c *Config) WellnessEnabled() bool {
	return c.Intervals.AthleteID != "" && c.Intervals.APIKey != ""
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trainload", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".trainload"), nil
}
