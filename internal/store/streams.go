package store

import (
	"database/sql"
	"fmt"
)

// SaveStreams saves stream data for an activity, replacing any existing
// points, and marks the activity's streams as synced.
func (db *DB) SaveStreams(activityID int64, points []StreamPoint) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM streams WHERE activity_id = ?", activityID); err != nil {
		return fmt.Errorf("deleting existing streams: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO streams (
			activity_id, time_offset, heartrate, watts, velocity_smooth, distance, altitude
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(
			activityID, p.TimeOffset, p.Heartrate, p.Watts,
			p.VelocitySmooth, p.Distance, p.Altitude,
		)
		if err != nil {
			return fmt.Errorf("inserting stream point: %w", err)
		}
	}

	if _, err := tx.Exec(
		"UPDATE activities SET streams_synced = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		activityID,
	); err != nil {
		return fmt.Errorf("marking streams synced: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetStreams retrieves all stream points for an activity in time order.
func (db *DB) GetStreams(activityID int64) ([]StreamPoint, error) {
	rows, err := db.Query(`
		SELECT activity_id, time_offset, heartrate, watts, velocity_smooth, distance, altitude
		FROM streams
		WHERE activity_id = ?
		ORDER BY time_offset
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []StreamPoint
	for rows.Next() {
		var p StreamPoint
		err := rows.Scan(
			&p.ActivityID, &p.TimeOffset, &p.Heartrate, &p.Watts,
			&p.VelocitySmooth, &p.Distance, &p.Altitude,
		)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// HasStreams checks if an activity has stream data stored.
func (db *DB) HasStreams(activityID int64) (bool, error) {
	var exists int
	err := db.QueryRow(
		"SELECT 1 FROM streams WHERE activity_id = ? LIMIT 1", activityID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
