package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Authentication (singleton row)
		`CREATE TABLE IF NOT EXISTS auth (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			athlete_id INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activities (summary data from /athlete/activities)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			start_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			total_elevation_gain REAL,
			average_speed REAL,
			average_heartrate REAL,
			max_heartrate REAL,
			average_watts REAL,
			device_watts INTEGER NOT NULL DEFAULT 0,
			has_heartrate INTEGER NOT NULL DEFAULT 0,
			streams_synced INTEGER NOT NULL DEFAULT 0,
			utl_score REAL,
			utl_method TEXT,
			utl_computed_at TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_date ON activities(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Streams (second-by-second data from /activities/{id}/streams)
		`CREATE TABLE IF NOT EXISTS streams (
			activity_id INTEGER NOT NULL,
			time_offset INTEGER NOT NULL,
			heartrate REAL,
			watts REAL,
			velocity_smooth REAL,
			distance REAL,
			altitude REAL,
			PRIMARY KEY (activity_id, time_offset),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_streams_activity ON streams(activity_id)`,

		// Performance thresholds (singleton row, updated by calibration)
		`CREATE TABLE IF NOT EXISTS thresholds (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			ftp_watts REAL,
			ftp_method TEXT,
			fthp_mps REAL,
			fthp_method TEXT,
			max_hr REAL,
			resting_hr REAL,
			resting_hr_method TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Daily wellness samples from intervals.icu
		`CREATE TABLE IF NOT EXISTS wellness (
			date TEXT PRIMARY KEY,
			resting_hr REAL,
			hrv REAL,
			sleep_score REAL,
			readiness REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sync state (key-value for cursors and timestamps)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
