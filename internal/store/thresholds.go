package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveThresholds stores the threshold singleton, replacing any existing row.
func (db *DB) SaveThresholds(t Thresholds) error {
	_, err := db.Exec(`
		INSERT INTO thresholds (
			id, ftp_watts, ftp_method, fthp_mps, fthp_method,
			max_hr, resting_hr, resting_hr_method, updated_at
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ftp_watts = excluded.ftp_watts,
			ftp_method = excluded.ftp_method,
			fthp_mps = excluded.fthp_mps,
			fthp_method = excluded.fthp_method,
			max_hr = excluded.max_hr,
			resting_hr = excluded.resting_hr,
			resting_hr_method = excluded.resting_hr_method,
			updated_at = excluded.updated_at
	`,
		t.FTPWatts, t.FTPMethod, t.FTHPMps, t.FTHPMethod,
		t.MaxHR, t.RestingHR, t.RestingHRMethod,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving thresholds: %w", err)
	}
	return nil
}

// GetThresholds retrieves the stored thresholds.
// Returns ErrNoThresholds if calibration has never run.
func (db *DB) GetThresholds() (Thresholds, error) {
	var t Thresholds
	var updatedAt string
	err := db.QueryRow(`
		SELECT ftp_watts, ftp_method, fthp_mps, fthp_method,
			max_hr, resting_hr, resting_hr_method, updated_at
		FROM thresholds WHERE id = 1
	`).Scan(
		&t.FTPWatts, &t.FTPMethod, &t.FTHPMps, &t.FTHPMethod,
		&t.MaxHR, &t.RestingHR, &t.RestingHRMethod, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return Thresholds{}, ErrNoThresholds
	}
	if err != nil {
		return Thresholds{}, fmt.Errorf("loading thresholds: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Thresholds{}, fmt.Errorf("parsing threshold timestamp: %w", err)
	}
	return t, nil
}
