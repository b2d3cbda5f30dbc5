package store

import (
	"database/sql"
	"fmt"
)

// UpsertWellness stores one day of wellness data keyed by date.
func (db *DB) UpsertWellness(w WellnessDay) error {
	_, err := db.Exec(`
		INSERT INTO wellness (date, resting_hr, hrv, sleep_score, readiness)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			resting_hr = excluded.resting_hr,
			hrv = excluded.hrv,
			sleep_score = excluded.sleep_score,
			readiness = excluded.readiness,
			updated_at = CURRENT_TIMESTAMP
	`, w.Date, w.RestingHR, w.HRV, w.SleepScore, w.Readiness)
	if err != nil {
		return fmt.Errorf("upserting wellness for %s: %w", w.Date, err)
	}
	return nil
}

// GetWellness retrieves one day of wellness data, or nil if none is stored
// for that date.
func (db *DB) GetWellness(date string) (*WellnessDay, error) {
	var w WellnessDay
	err := db.QueryRow(`
		SELECT date, resting_hr, hrv, sleep_score, readiness
		FROM wellness WHERE date = ?
	`, date).Scan(&w.Date, &w.RestingHR, &w.HRV, &w.SleepScore, &w.Readiness)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading wellness for %s: %w", date, err)
	}
	return &w, nil
}

// GetWellnessRange retrieves wellness days within [from, to] inclusive,
// ordered by date.
func (db *DB) GetWellnessRange(from, to string) ([]WellnessDay, error) {
	rows, err := db.Query(`
		SELECT date, resting_hr, hrv, sleep_score, readiness
		FROM wellness
		WHERE date >= ? AND date <= ?
		ORDER BY date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WellnessDay
	for rows.Next() {
		var w WellnessDay
		if err := rows.Scan(&w.Date, &w.RestingHR, &w.HRV, &w.SleepScore, &w.Readiness); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
