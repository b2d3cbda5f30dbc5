package service

import (
	"errors"
	"fmt"
	"time"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/store"
)

// QueryService reads stored data into the shapes the UI renders: workload
// reports, daily load series, recent activities and threshold state.
type QueryService struct {
	db      *store.DB
	athlete config.AthleteConfig
}

// NewQueryService creates a query service.
func NewQueryService(db *store.DB, athlete config.AthleteConfig) *QueryService {
	return &QueryService{db: db, athlete: athlete}
}

// WorkloadReport computes the acute:chronic workload picture as of now from
// every scored activity in the chronic window.
func (q *QueryService) WorkloadReport(asOf time.Time) (*analysis.WorkloadReport, error) {
	since := asOf.AddDate(0, 0, -analysis.ChronicWindowDays)
	activities, err := q.db.GetActivitiesSince(since)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	scored := make([]analysis.ScoredActivity, 0, len(activities))
	for _, a := range activities {
		if a.UTLScore == nil {
			continue
		}
		scored = append(scored, analysis.ScoredActivity{
			Date:  a.StartDate,
			Type:  a.Type,
			Score: *a.UTLScore,
		})
	}

	report := analysis.ComputeReport(scored, asOf)
	return &report, nil
}

// DailyLoads returns one summed load value per day for the trailing window,
// oldest first. Days without activity are zero, so the series plots evenly.
func (q *QueryService) DailyLoads(asOf time.Time, days int) ([]float64, error) {
	since := asOf.AddDate(0, 0, -days)
	activities, err := q.db.GetActivitiesSince(since)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	loads := make([]float64, days)
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, asOf.Location())
	for _, a := range activities {
		if a.UTLScore == nil {
			continue
		}
		d := a.StartDate.In(asOf.Location())
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, asOf.Location())
		daysAgo := int(today.Sub(day).Hours() / 24)
		idx := days - 1 - daysAgo
		if idx < 0 || idx >= days {
			continue
		}
		loads[idx] += *a.UTLScore
	}

	return loads, nil
}

// RecentActivities returns the newest activities, most recent first.
func (q *QueryService) RecentActivities(limit int) ([]store.Activity, error) {
	return q.db.GetActivities(limit)
}

// ActivitiesPage returns one page of activities plus the total count.
func (q *QueryService) ActivitiesPage(limit, offset int) ([]store.Activity, int, error) {
	activities, err := q.db.GetActivitiesPage(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := q.db.CountActivities()
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

// ActivityDetail is one activity with its stream-derived analysis, when
// streams are stored.
type ActivityDetail struct {
	Activity store.Activity
	Analysis *analysis.StreamAnalysis
}

// GetActivityDetail loads one activity and analyzes its streams on demand.
func (q *QueryService) GetActivityDetail(id int64) (*ActivityDetail, error) {
	activity, err := q.db.GetActivity(id)
	if err != nil {
		return nil, err
	}

	detail := &ActivityDetail{Activity: activity}
	if !activity.StreamsSynced {
		return detail, nil
	}

	points, err := q.db.GetStreams(id)
	if err != nil {
		return nil, fmt.Errorf("loading streams: %w", err)
	}
	if len(points) == 0 {
		return detail, nil
	}

	stream := toAnalysisStream(points)
	sa, err := analysis.AnalyzeStream(stream)
	if err != nil {
		return nil, err
	}
	detail.Analysis = &sa
	return detail, nil
}

// ThresholdsView is the threshold state as the UI shows it: the stored
// estimates with their methods, the effective values after manual config
// overrides, and which fields are overridden.
type ThresholdsView struct {
	Stored     store.Thresholds
	Effective  analysis.Thresholds
	Overridden map[string]bool
}

// Thresholds returns the current threshold state. Missing stored thresholds
// are not an error; the view just carries the zero values.
func (q *QueryService) Thresholds() (*ThresholdsView, error) {
	stored, err := q.db.GetThresholds()
	if err != nil && !errors.Is(err, store.ErrNoThresholds) {
		return nil, err
	}

	return &ThresholdsView{
		Stored:    stored,
		Effective: effectiveThresholds(q.athlete, stored),
		Overridden: map[string]bool{
			"ftp":        q.athlete.FTPWatts > 0,
			"fthp":       q.athlete.FTHPMps > 0,
			"max_hr":     q.athlete.MaxHR > 0,
			"resting_hr": q.athlete.RestingHR > 0,
		},
	}, nil
}

// SyncStatus reports when each background job last completed.
type SyncStatus struct {
	LastActivitySync time.Time
	LastWellnessSync time.Time
	LastCalibration  time.Time
}

// Status returns the last-run times recorded by sync and calibration.
// Zero times mean the job has never run.
func (q *QueryService) Status() SyncStatus {
	parse := func(key string) time.Time {
		v, err := q.db.GetSyncState(key)
		if err != nil || v == "" {
			return time.Time{}
		}
		t, _ := time.Parse(time.RFC3339, v)
		return t
	}
	return SyncStatus{
		LastActivitySync: parse(store.SyncKeyLastActivitySync),
		LastWellnessSync: parse(store.SyncKeyLastWellnessSync),
		LastCalibration:  parse(store.SyncKeyLastCalibration),
	}
}
