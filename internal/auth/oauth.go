package auth

import (
	"time"

	"golang.org/x/oauth2"

	"trainload/internal/store"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes required for activity sync (Strava uses comma-separated scopes)
var Scopes = []string{
	"read,activity:read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8807/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// ExtractAthleteID extracts the athlete ID from the token extras.
// Strava includes athlete info in the token response.
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// tokenFromStored rebuilds an oauth2.Token from persisted credentials.
func tokenFromStored(a store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       time.Unix(a.ExpiresAt, 0),
	}
}

// storedFromToken converts an oauth2.Token for persistence.
func storedFromToken(athleteID int64, t *oauth2.Token) store.Auth {
	return store.Auth{
		AthleteID:    athleteID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry.Unix(),
	}
}
