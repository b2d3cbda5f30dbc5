package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"trainload/internal/store"
)

// refreshBuffer is how long before expiry a token is treated as stale.
const refreshBuffer = 60 * time.Second

// TokenSource wraps oauth2.TokenSource with persistence. Refreshed tokens
// are written back to the store before being handed out, so a crash never
// loses a rotated refresh token.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	athleteID int64
	db        *store.DB
	mu        sync.Mutex
}

// NewTokenSource builds a TokenSource from the credentials persisted in the
// store. Returns store.ErrNoAuth if the user has never logged in.
func NewTokenSource(cfg *oauth2.Config, db *store.DB) (*TokenSource, error) {
	a, err := db.GetAuth()
	if err != nil {
		return nil, err
	}
	return &TokenSource{
		config:    cfg,
		token:     tokenFromStored(a),
		athleteID: a.AthleteID,
		db:        db,
	}, nil
}

// Token returns a valid token, refreshing and persisting if necessary.
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	if err := ts.db.SaveAuth(storedFromToken(ts.athleteID, newToken)); err != nil {
		return nil, fmt.Errorf("persisting refreshed token: %w", err)
	}

	ts.token = newToken
	return newToken, nil
}
