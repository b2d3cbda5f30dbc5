package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.Gender != "male" {
		t.Errorf("Athlete.Gender = %q, want male", cfg.Athlete.Gender)
	}
	if cfg.Display.DistanceUnit != "km" {
		t.Errorf("Display.DistanceUnit = %q, want %q", cfg.Display.DistanceUnit, "km")
	}
	if cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display.PaceUnit = %q, want %q", cfg.Display.PaceUnit, "min/km")
	}

	// Credentials should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.Intervals.APIKey != "" {
		t.Errorf("Intervals.APIKey should be empty, got %q", cfg.Intervals.APIKey)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Strava: StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"},
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "empty client ID",
			mutate:      func(c *Config) { c.Strava.ClientID = "" },
			expectError: true,
			errContains: "client_id",
		},
		{
			name:        "placeholder client secret",
			mutate:      func(c *Config) { c.Strava.ClientSecret = "YOUR_CLIENT_SECRET" },
			expectError: true,
			errContains: "client_secret",
		},
		{
			name:        "intervals key without athlete id",
			mutate:      func(c *Config) { c.Intervals.APIKey = "key" },
			expectError: true,
			errContains: "intervals_icu",
		},
		{
			name: "intervals pair is fine",
			mutate: func(c *Config) {
				c.Intervals.APIKey = "key"
				c.Intervals.AthleteID = "i12345"
			},
		},
		{
			name:        "bad gender value",
			mutate:      func(c *Config) { c.Athlete.Gender = "yes" },
			expectError: true,
			errContains: "gender",
		},
		{
			name:        "bad distance unit",
			mutate:      func(c *Config) { c.Display.DistanceUnit = "furlongs" },
			expectError: true,
			errContains: "distance_unit",
		},
		{
			name: "resting HR above max HR",
			mutate: func(c *Config) {
				c.Athlete.RestingHR = 190
				c.Athlete.MaxHR = 185
			},
			expectError: true,
			errContains: "resting_hr",
		},
		{
			name: "manual thresholds pass through",
			mutate: func(c *Config) {
				c.Athlete.FTPWatts = 250
				c.Athlete.FTHPMps = 3.3
				c.Athlete.MaxHR = 188
				c.Athlete.RestingHR = 46
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not mention %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestWellnessEnabled(t *testing.T) {
	cfg := Config{}
	if cfg.WellnessEnabled() {
		t.Error("WellnessEnabled with no credentials should be false")
	}
	cfg.Intervals = IntervalsConfig{AthleteID: "i1", APIKey: "k"}
	if !cfg.WellnessEnabled() {
		t.Error("WellnessEnabled with credentials should be true")
	}
}
