package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/intervals"
	"trainload/internal/store"
	"trainload/internal/strava"
)

// wellnessLookbackDays is how far back the first wellness sync reaches.
const wellnessLookbackDays = 365

// SyncService orchestrates pulling data from Strava and intervals.icu into
// the local store and scoring what arrived.
type SyncService struct {
	strava    *strava.Client
	intervals *intervals.Client // nil when wellness sync is not configured
	db        *store.DB
	athlete   config.AthleteConfig
	logger    *slog.Logger
}

// NewSyncService creates a new sync service. The intervals client may be
// nil, which disables the wellness phase.
func NewSyncService(stravaClient *strava.Client, intervalsClient *intervals.Client, db *store.DB, athlete config.AthleteConfig, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		strava:    stravaClient,
		intervals: intervalsClient,
		db:        db,
		athlete:   athlete,
		logger:    logger,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "streams", "wellness", "scores"
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of a sync operation. Per-item failures
// land in Errors; only phase-level failures abort the sync.
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	StreamsFetched    int
	WellnessDays      int
	ActivitiesScored  int
	Errors            []error
}

// SyncAll performs a full sync: activities -> streams -> wellness -> scores.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.syncStreams(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	if err := s.syncWellness(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing wellness: %w", err)
	}

	if err := s.scoreActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("scoring activities: %w", err)
	}

	return result, nil
}

// syncActivities fetches new activity summaries from Strava and stores them
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	lastSyncStr, _ := s.db.GetSyncState(store.SyncKeyLastActivitySync)
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	page := 1
	perPage := 100

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		activities, err := s.strava.GetActivities(ctx, after, page, perPage)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}

		if len(activities) == 0 {
			break
		}

		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			if err := s.db.UpsertActivity(convertActivity(a)); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				s.logger.Warn("failed to store activity", "activity_id", a.ID, "error", err)
				continue
			}
			result.ActivitiesStored++
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:     "activities",
				Total:     result.ActivitiesFetched,
				Completed: result.ActivitiesStored,
			}
		}

		if len(activities) < perPage {
			break // Last page
		}

		page++
	}

	s.db.SetSyncState(store.SyncKeyLastActivitySync, time.Now().Format(time.RFC3339))

	return nil
}

// syncStreams fetches detailed stream data for activities that need it
func (s *SyncService) syncStreams(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	// Batch size keeps one sync within Strava's 15-minute request budget.
	activities, err := s.db.GetActivitiesNeedingStreams(50)
	if err != nil {
		return fmt.Errorf("getting activities needing streams: %w", err)
	}

	if len(activities) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "streams", Total: len(activities)}
	}

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "streams",
				Total:           len(activities),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		streams, err := s.strava.GetActivityStreams(ctx, activity.ID)
		if err != nil {
			// Some activities legitimately have no streams; keep going.
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			s.logger.Warn("failed to fetch streams", "activity_id", activity.ID, "error", err)
			continue
		}

		points := convertStreams(activity.ID, streams)
		if len(points) > 0 {
			if err := s.db.SaveStreams(activity.ID, points); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("saving streams for %d: %w", activity.ID, err))
				continue
			}
		} else {
			// Nothing to store; mark synced so we stop asking.
			if err := s.db.MarkStreamsSynced(activity.ID); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("marking synced for %d: %w", activity.ID, err))
				continue
			}
		}

		result.StreamsFetched++
	}

	if progress != nil {
		progress <- SyncProgress{
			Phase:     "streams",
			Total:     len(activities),
			Completed: len(activities),
		}
	}

	return nil
}

// syncWellness pulls wellness days from intervals.icu since the last sync.
func (s *SyncService) syncWellness(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	if s.intervals == nil {
		return nil
	}

	oldest := time.Now().AddDate(0, 0, -wellnessLookbackDays)
	if lastStr, _ := s.db.GetSyncState(store.SyncKeyLastWellnessSync); lastStr != "" {
		if last, err := time.Parse(time.RFC3339, lastStr); err == nil {
			// Re-fetch a few days back; entries get backfilled by devices.
			oldest = last.AddDate(0, 0, -3)
		}
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "wellness"}
	}

	entries, err := s.intervals.GetWellness(ctx, oldest, time.Now())
	if err != nil {
		return err
	}

	for _, e := range entries {
		day := store.WellnessDay{
			Date:       e.Date,
			RestingHR:  e.RestingHR,
			HRV:        e.HRV,
			SleepScore: e.SleepScore,
			Readiness:  e.Readiness,
		}
		if err := s.db.UpsertWellness(day); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing wellness %s: %w", e.Date, err))
			continue
		}
		result.WellnessDays++
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "wellness", Total: len(entries), Completed: result.WellnessDays}
	}

	s.db.SetSyncState(store.SyncKeyLastWellnessSync, time.Now().Format(time.RFC3339))

	return nil
}

// scoreActivities computes training load for activities that lack one.
func (s *SyncService) scoreActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	pending, err := s.db.GetActivitiesNeedingScores()
	if err != nil {
		return fmt.Errorf("getting unscored activities: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "scores", Total: len(pending)}
	}

	var stored store.Thresholds
	if t, err := s.db.GetThresholds(); err == nil {
		stored = t
	}
	thresholds := effectiveThresholds(s.athlete, stored)

	for i, activity := range pending {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "scores",
				Total:           len(pending),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		score, err := scoreStoredActivity(s.db, activity, thresholds)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("scoring activity %d: %w", activity.ID, err))
			s.logger.Warn("failed to score activity", "activity_id", activity.ID, "error", err)
			continue
		}

		if err := s.db.SaveScore(activity.ID, score.Score, score.Method); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.ActivitiesScored++
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "scores", Total: len(pending), Completed: len(pending)}
	}

	return nil
}

// scoreStoredActivity computes the training load for one stored activity
// using its streams and the wellness sample for its date, when present.
func scoreStoredActivity(db *store.DB, activity store.Activity, thresholds analysis.Thresholds) (analysis.LoadScore, error) {
	var stream *analysis.ActivityStream
	if activity.StreamsSynced {
		points, err := db.GetStreams(activity.ID)
		if err != nil {
			return analysis.LoadScore{}, fmt.Errorf("loading streams: %w", err)
		}
		if len(points) > 0 {
			as := toAnalysisStream(points)
			if err := as.Validate(); err != nil {
				return analysis.LoadScore{}, err
			}
			stream = &as
		}
	}

	var wellness *analysis.WellnessSample
	if day, err := db.GetWellness(activity.StartDate.Format("2006-01-02")); err == nil && day != nil {
		w := toWellnessSample(*day)
		wellness = &w
	}

	summary := analysis.ActivitySummary{
		Type:              activity.Type,
		DistanceMeters:    activity.Distance,
		MovingTimeSeconds: activity.MovingTime,
	}
	return analysis.ComputeLoad(summary, thresholds, stream, wellness), nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.strava.RateLimitStatus()
}
