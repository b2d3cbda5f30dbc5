package store

import "time"

// Auth holds the stored OAuth credentials (singleton row).
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64 // unix timestamp
}

// Activity is the stored summary of a synced activity. Nullable columns map
// to pointer fields.
type Activity struct {
	ID                 int64
	AthleteID          int64
	Name               string
	Type               string
	StartDate          time.Time
	Distance           float64 // meters
	MovingTime         int     // seconds
	ElapsedTime        int     // seconds
	TotalElevationGain *float64
	AverageSpeed       *float64
	AverageHeartrate   *float64
	MaxHeartrate       *float64
	AverageWatts       *float64
	DeviceWatts        bool
	HasHeartrate       bool
	StreamsSynced      bool
	UTLScore           *float64
	UTLMethod          *string
	UTLComputedAt      *time.Time
}

// StreamPoint is one second-by-second sample of an activity.
type StreamPoint struct {
	ActivityID     int64
	TimeOffset     int
	Heartrate      *float64
	Watts          *float64
	VelocitySmooth *float64
	Distance       *float64
	Altitude       *float64
}

// Thresholds is the stored singleton of performance reference values.
type Thresholds struct {
	FTPWatts        *float64
	FTPMethod       *string
	FTHPMps         *float64
	FTHPMethod      *string
	MaxHR           *float64
	RestingHR       *float64
	RestingHRMethod *string
	UpdatedAt       time.Time
}

// WellnessDay is one day of wellness data keyed by date (YYYY-MM-DD).
type WellnessDay struct {
	Date       string
	RestingHR  *float64
	HRV        *float64
	SleepScore *float64
	Readiness  *float64
}
