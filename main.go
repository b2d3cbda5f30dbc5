package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"trainload/internal/auth"
	"trainload/internal/config"
	"trainload/internal/intervals"
	"trainload/internal/service"
	"trainload/internal/store"
	"trainload/internal/strava"
	"trainload/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Strava API credentials.")
		fmt.Println("Get them from: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Log to a file; stdout belongs to the TUI.
	logger, closeLogger, err := newLogger()
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLogger()

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})

	tokenSource, err := auth.NewTokenSource(oauthCfg, db)
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if _, err := auth.Login(ctx, oauthCfg, db); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
		tokenSource, err = auth.NewTokenSource(oauthCfg, db)
		if err != nil {
			return fmt.Errorf("loading auth after login: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	// Test the token is valid by getting a fresh one
	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if _, err := auth.Login(ctx, oauthCfg, db); err != nil {
			return fmt.Errorf("re-authentication: %w", err)
		}
		tokenSource, err = auth.NewTokenSource(oauthCfg, db)
		if err != nil {
			return fmt.Errorf("loading auth after login: %w", err)
		}
	}

	// Create services
	stravaClient := strava.NewClient(tokenSource)

	var intervalsClient *intervals.Client
	if cfg.WellnessEnabled() {
		intervalsClient = intervals.NewClient(cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	}

	syncSvc := service.NewSyncService(stravaClient, intervalsClient, db, cfg.Athlete, logger)
	calibrationSvc := service.NewCalibrationService(db, cfg.Athlete, logger)
	querySvc := service.NewQueryService(db, cfg.Athlete)

	// Launch TUI
	app := tui.NewApp(db, syncSvc, calibrationSvc, querySvc)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func newLogger() (*slog.Logger, func(), error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "trainload.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, nil))
	return logger, func() { f.Close() }, nil
}
