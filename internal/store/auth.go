package store

import (
	"database/sql"
	"fmt"
)

// SaveAuth stores OAuth credentials, replacing any existing row.
func (db *DB) SaveAuth(a Auth) error {
	_, err := db.Exec(`
		INSERT INTO auth (id, athlete_id, access_token, refresh_token, expires_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	return nil
}

// GetAuth retrieves the stored OAuth credentials.
// Returns ErrNoAuth if none are stored.
func (db *DB) GetAuth() (Auth, error) {
	var a Auth
	err := db.QueryRow(`
		SELECT athlete_id, access_token, refresh_token, expires_at
		FROM auth WHERE id = 1
	`).Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &a.ExpiresAt)
	if err == sql.ErrNoRows {
		return Auth{}, ErrNoAuth
	}
	if err != nil {
		return Auth{}, fmt.Errorf("loading auth: %w", err)
	}
	return a, nil
}
