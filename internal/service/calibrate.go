package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/store"
)

const (
	// calibrationLookbackDays bounds how much history is re-analyzed.
	calibrationLookbackDays = 365

	// restingHRLookbackDays is the wellness window used for resting HR.
	restingHRLookbackDays = 60

	calibrationWorkers = 4
)

// CalibrationService re-estimates thresholds (FTP, FTHP, max HR, resting
// HR) from stored activity streams and wellness data. Stream analysis runs
// on a small worker pool; the update decision is applied serially at the
// end so only the best candidates land.
type CalibrationService struct {
	db      *store.DB
	athlete config.AthleteConfig
	logger  *slog.Logger
}

// NewCalibrationService creates a calibration service.
func NewCalibrationService(db *store.DB, athlete config.AthleteConfig, logger *slog.Logger) *CalibrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalibrationService{db: db, athlete: athlete, logger: logger}
}

// CalibrationResult describes what a calibration run found and changed.
type CalibrationResult struct {
	RunID              string
	ActivitiesAnalyzed int
	FTP                *analysis.ThresholdEstimate
	FTHP               *analysis.ThresholdEstimate
	MaxHR              *float64
	RestingHR          *analysis.ThresholdEstimate
	Updated            bool
	Rescored           int
	Errors             []error
}

// candidate holds what one activity contributed to calibration.
type candidate struct {
	ftp   *analysis.ThresholdEstimate
	fthp  *analysis.ThresholdEstimate
	maxHR float64
}

// Recalibrate analyzes recent history and updates stored thresholds where
// a candidate beats the current value by the improvement margin. When an
// effective threshold changes, existing scores are cleared and recomputed.
func (c *CalibrationService) Recalibrate(ctx context.Context) (*CalibrationResult, error) {
	result := &CalibrationResult{RunID: uuid.NewString()}
	logger := c.logger.With("calibration_run", result.RunID)

	since := time.Now().AddDate(0, 0, -calibrationLookbackDays)
	activities, err := c.db.GetActivitiesSince(since)
	if err != nil {
		return result, fmt.Errorf("loading activities: %w", err)
	}

	logger.Info("calibration started", "activities", len(activities))

	candidates := c.analyzeActivities(ctx, logger, activities, result)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	var stored store.Thresholds
	if t, err := c.db.GetThresholds(); err == nil {
		stored = t
	}

	updated := c.applyCandidates(logger, &stored, candidates, result)

	if est, err := c.estimateRestingHR(stored.MaxHR); err != nil {
		result.Errors = append(result.Errors, err)
	} else if est != nil && est.Value > 0 {
		// Resting HR is refreshed whenever wellness yields an estimate;
		// it drifts down as well as up.
		if stored.RestingHR == nil || *stored.RestingHR != est.Value {
			stored.RestingHR = &est.Value
			stored.RestingHRMethod = &est.Method
			result.RestingHR = est
			updated = true
		}
	}

	if updated {
		stored.UpdatedAt = time.Now()
		if err := c.db.SaveThresholds(stored); err != nil {
			return result, fmt.Errorf("saving thresholds: %w", err)
		}
		result.Updated = true
		logger.Info("thresholds updated",
			"ftp", ptrVal(stored.FTPWatts),
			"fthp", ptrVal(stored.FTHPMps),
			"max_hr", ptrVal(stored.MaxHR),
			"resting_hr", ptrVal(stored.RestingHR))

		if c.effectiveChanged(result) {
			n, err := c.rescoreAll(ctx, stored)
			result.Rescored = n
			if err != nil {
				return result, fmt.Errorf("rescoring: %w", err)
			}
		}
	}

	c.db.SetSyncState(store.SyncKeyLastCalibration, time.Now().Format(time.RFC3339))

	return result, nil
}

// analyzeActivities runs stream analysis over a worker pool and collects
// per-activity threshold candidates.
func (c *CalibrationService) analyzeActivities(ctx context.Context, logger *slog.Logger, activities []store.Activity, result *CalibrationResult) []candidate {
	jobs := make(chan store.Activity)
	out := make(chan candidate, len(activities))

	var mu sync.Mutex // guards result.Errors and ActivitiesAnalyzed
	var wg sync.WaitGroup
	for w := 0; w < calibrationWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for activity := range jobs {
				cand, err := c.analyzeActivity(activity)
				mu.Lock()
				if err != nil {
					result.Errors = append(result.Errors, fmt.Errorf("activity %d: %w", activity.ID, err))
					logger.Warn("calibration skipped activity", "activity_id", activity.ID, "error", err)
				} else {
					result.ActivitiesAnalyzed++
				}
				mu.Unlock()
				if cand != nil {
					out <- *cand
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, a := range activities {
			if !a.StreamsSynced {
				continue
			}
			select {
			case jobs <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(out)

	candidates := make([]candidate, 0, len(out))
	for cand := range out {
		candidates = append(candidates, cand)
	}
	return candidates
}

// analyzeActivity computes threshold candidates from one activity's streams.
// Activities without usable streams contribute nothing.
func (c *CalibrationService) analyzeActivity(activity store.Activity) (*candidate, error) {
	points, err := c.db.GetStreams(activity.ID)
	if err != nil {
		return nil, fmt.Errorf("loading streams: %w", err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	stream := toAnalysisStream(points)
	sa, err := analysis.AnalyzeStream(stream)
	if err != nil {
		return nil, err
	}
	cand := candidate{maxHR: sa.MaxHeartrate}

	switch analysis.SportOf(activity.Type) {
	case analysis.SportCycling:
		if est := analysis.EstimateFTP(sa.Power); est != nil {
			cand.ftp = est
		}
	case analysis.SportRunning:
		if est := analysis.EstimateFTHP(sa.Pace); est != nil {
			cand.fthp = est
		}
	}

	if cand.ftp == nil && cand.fthp == nil && cand.maxHR <= 0 {
		return nil, nil
	}
	return &cand, nil
}

// applyCandidates folds per-activity candidates into the stored thresholds,
// keeping a new value only when it clears the improvement margin.
func (c *CalibrationService) applyCandidates(logger *slog.Logger, stored *store.Thresholds, candidates []candidate, result *CalibrationResult) bool {
	var ftps, fthps []analysis.ThresholdEstimate
	var maxHRs []float64
	for _, cand := range candidates {
		if cand.ftp != nil {
			ftps = append(ftps, *cand.ftp)
		}
		if cand.fthp != nil {
			fthps = append(fthps, *cand.fthp)
		}
		if cand.maxHR > 0 {
			maxHRs = append(maxHRs, cand.maxHR)
		}
	}

	updated := false

	if best := analysis.BestEstimate(ftps); best != nil && analysis.ShouldUpdate(stored.FTPWatts, best.Value) {
		logger.Info("new FTP estimate", "watts", best.Value, "method", best.Method, "confidence", best.Confidence)
		stored.FTPWatts = &best.Value
		stored.FTPMethod = &best.Method
		result.FTP = best
		updated = true
	}

	if best := analysis.BestEstimate(fthps); best != nil && analysis.ShouldUpdate(stored.FTHPMps, best.Value) {
		logger.Info("new FTHP estimate", "mps", best.Value, "method", best.Method, "confidence", best.Confidence)
		stored.FTHPMps = &best.Value
		stored.FTHPMethod = &best.Method
		result.FTHP = best
		updated = true
	}

	if est := analysis.EstimateMaxHR(maxHRs); est != nil && analysis.ShouldUpdate(stored.MaxHR, *est) {
		logger.Info("new max HR observation", "bpm", *est)
		stored.MaxHR = est
		result.MaxHR = est
		updated = true
	}

	return updated
}

// estimateRestingHR derives resting HR from recent wellness data, falling
// back to a max-HR offset when wellness is sparse.
func (c *CalibrationService) estimateRestingHR(maxHR *float64) (*analysis.ThresholdEstimate, error) {
	newest := time.Now()
	oldest := newest.AddDate(0, 0, -restingHRLookbackDays)
	days, err := c.db.GetWellnessRange(oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("loading wellness: %w", err)
	}

	samples := make([]analysis.WellnessSample, 0, len(days))
	for _, d := range days {
		samples = append(samples, toWellnessSample(d))
	}

	value, method := analysis.EstimateRestingHR(samples, maxHR, c.athlete.Gender)
	if value == nil {
		return nil, nil
	}
	return &analysis.ThresholdEstimate{Value: *value, Method: method}, nil
}

// effectiveChanged reports whether any updated threshold actually affects
// scoring, i.e. is not pinned by a manual config override.
func (c *CalibrationService) effectiveChanged(result *CalibrationResult) bool {
	if result.FTP != nil && c.athlete.FTPWatts <= 0 {
		return true
	}
	if result.FTHP != nil && c.athlete.FTHPMps <= 0 {
		return true
	}
	if result.MaxHR != nil && c.athlete.MaxHR <= 0 {
		return true
	}
	if result.RestingHR != nil && c.athlete.RestingHR <= 0 {
		return true
	}
	return false
}

// rescoreAll drops existing scores and recomputes them with the current
// thresholds.
func (c *CalibrationService) rescoreAll(ctx context.Context, stored store.Thresholds) (int, error) {
	if err := c.db.ClearScores(); err != nil {
		return 0, err
	}

	pending, err := c.db.GetActivitiesNeedingScores()
	if err != nil {
		return 0, err
	}

	thresholds := effectiveThresholds(c.athlete, stored)

	scored := 0
	for _, activity := range pending {
		select {
		case <-ctx.Done():
			return scored, ctx.Err()
		default:
		}

		score, err := scoreStoredActivity(c.db, activity, thresholds)
		if err != nil {
			c.logger.Warn("failed to rescore activity", "activity_id", activity.ID, "error", err)
			continue
		}
		if err := c.db.SaveScore(activity.ID, score.Score, score.Method); err != nil {
			return scored, err
		}
		scored++
	}

	return scored, nil
}

func ptrVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
