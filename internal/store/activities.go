package store

import (
	"database/sql"
	"fmt"
	"time"
)

const activityColumns = `id, athlete_id, name, type, start_date,
	distance, moving_time, elapsed_time, total_elevation_gain,
	average_speed, average_heartrate, max_heartrate, average_watts,
	device_watts, has_heartrate, streams_synced,
	utl_score, utl_method, utl_computed_at`

// UpsertActivity inserts or updates an activity summary. UTL columns are
// left alone on update so a re-sync does not wipe computed scores.
func (db *DB) UpsertActivity(a Activity) error {
	_, err := db.Exec(`
		INSERT INTO activities (
			id, athlete_id, name, type, start_date,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_speed, average_heartrate, max_heartrate, average_watts,
			device_watts, has_heartrate, streams_synced
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			start_date = excluded.start_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_speed = excluded.average_speed,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_watts = excluded.average_watts,
			device_watts = excluded.device_watts,
			has_heartrate = excluded.has_heartrate,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Type, a.StartDate.UTC().Format(time.RFC3339),
		a.Distance, a.MovingTime, a.ElapsedTime, a.TotalElevationGain,
		a.AverageSpeed, a.AverageHeartrate, a.MaxHeartrate, a.AverageWatts,
		a.DeviceWatts, a.HasHeartrate, a.StreamsSynced,
	)
	if err != nil {
		return fmt.Errorf("upserting activity %d: %w", a.ID, err)
	}
	return nil
}

// GetActivity retrieves a single activity by ID.
func (db *DB) GetActivity(id int64) (Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return Activity{}, ErrActivityNotFound
	}
	if err != nil {
		return Activity{}, fmt.Errorf("loading activity %d: %w", id, err)
	}
	return a, nil
}

// GetActivities returns activities ordered by start date descending,
// limited to the given count. A limit of 0 returns everything.
func (db *DB) GetActivities(limit int) ([]Activity, error) {
	q := `SELECT ` + activityColumns + ` FROM activities ORDER BY start_date DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// GetActivitiesPage returns one page of activities ordered by start date
// descending.
func (db *DB) GetActivitiesPage(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(
		`SELECT `+activityColumns+` FROM activities ORDER BY start_date DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// CountActivities returns the total number of stored activities.
func (db *DB) CountActivities() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM activities`).Scan(&n)
	return n, err
}

// GetActivitiesSince returns activities with a start date on or after the
// given time, oldest first.
func (db *DB) GetActivitiesSince(since time.Time) ([]Activity, error) {
	rows, err := db.Query(
		`SELECT `+activityColumns+` FROM activities WHERE start_date >= ? ORDER BY start_date ASC`,
		since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// GetActivitiesNeedingStreams returns activities whose streams have not
// been synced yet, newest first.
func (db *DB) GetActivitiesNeedingStreams(limit int) ([]Activity, error) {
	rows, err := db.Query(
		`SELECT `+activityColumns+` FROM activities WHERE streams_synced = 0 ORDER BY start_date DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// GetActivitiesNeedingScores returns activities without a computed training
// load, oldest first so scores accumulate chronologically.
func (db *DB) GetActivitiesNeedingScores() ([]Activity, error) {
	rows, err := db.Query(
		`SELECT ` + activityColumns + ` FROM activities WHERE utl_score IS NULL ORDER BY start_date ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanActivities(rows)
}

// MarkStreamsSynced flags an activity's streams as stored.
func (db *DB) MarkStreamsSynced(activityID int64) error {
	_, err := db.Exec(
		`UPDATE activities SET streams_synced = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		activityID,
	)
	return err
}

// SaveScore records the computed training load for an activity.
func (db *DB) SaveScore(activityID int64, score float64, method string) error {
	res, err := db.Exec(`
		UPDATE activities
		SET utl_score = ?, utl_method = ?, utl_computed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, score, method, time.Now().UTC().Format(time.RFC3339), activityID)
	if err != nil {
		return fmt.Errorf("saving score for activity %d: %w", activityID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// ClearScores wipes all computed training loads, forcing a full rescore.
func (db *DB) ClearScores() error {
	_, err := db.Exec(`UPDATE activities SET utl_score = NULL, utl_method = NULL, utl_computed_at = NULL`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (Activity, error) {
	var a Activity
	var startDate string
	var computedAt *string
	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Type, &startDate,
		&a.Distance, &a.MovingTime, &a.ElapsedTime, &a.TotalElevationGain,
		&a.AverageSpeed, &a.AverageHeartrate, &a.MaxHeartrate, &a.AverageWatts,
		&a.DeviceWatts, &a.HasHeartrate, &a.StreamsSynced,
		&a.UTLScore, &a.UTLMethod, &computedAt,
	)
	if err != nil {
		return Activity{}, err
	}
	if a.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return Activity{}, fmt.Errorf("parsing start date of activity %d: %w", a.ID, err)
	}
	if computedAt != nil {
		t, err := time.Parse(time.RFC3339, *computedAt)
		if err != nil {
			return Activity{}, fmt.Errorf("parsing score timestamp of activity %d: %w", a.ID, err)
		}
		a.UTLComputedAt = &t
	}
	return a, nil
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
