package analysis

import (
	"sort"
	"time"
)

// Confidence grades how trustworthy a threshold estimate is, based on the
// source effort duration.
type Confidence string

const (
	ConfidenceHighest      Confidence = "highest"
	ConfidenceHigh         Confidence = "high"
	ConfidenceGood         Confidence = "good"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceLow          Confidence = "low"
	ConfidenceConservative Confidence = "conservative"
)

// ImprovementMargin is the relative gain a candidate threshold must show over
// the stored value before it replaces it. Keeps day-to-day estimate noise
// from churning stored thresholds.
const ImprovementMargin = 1.02

// ThresholdEstimate is one derived threshold value with its provenance.
type ThresholdEstimate struct {
	Value      float64
	Method     string
	Confidence Confidence
}

// Thresholds are the athlete's current performance reference values. Nil
// fields are unknown.
type Thresholds struct {
	FTPWatts  *float64 // functional threshold power
	FTHPMps   *float64 // functional threshold pace, meters per second
	MaxHR     *float64
	RestingHR *float64
	UpdatedAt time.Time
}

// WellnessSample is one day of athlete wellness data.
type WellnessSample struct {
	Date           time.Time
	RestingHR      *float64
	HRV            *float64 // rMSSD, ms
	SleepScore     *float64 // 0-100
	ReadinessScore *float64 // 0-100
}

type ftpRule struct {
	durationSeconds int
	factor          float64
	method          string
	confidence      Confidence
}

// Longer source efforts are preferred even when a shorter one projects a
// higher value.
var ftpRules = []ftpRule{
	{3600, 1.00, "60min_power", ConfidenceHighest},
	{2400, 0.97, "40min_power_adjusted", ConfidenceHigh},
	{1200, 0.95, "20min_test", ConfidenceGood},
	{600, 0.90, "10min_power_adjusted", ConfidenceMedium},
	{300, 0.85, "5min_power_adjusted", ConfidenceLow},
}

// minPlausibleFTP filters out coasting-dominated efforts that would project
// a nonsense threshold.
const minPlausibleFTP = 50

type fthpRule struct {
	durationSeconds int
	factor          float64
	minSpeed        float64 // m/s floor below which the effort is noise
	method          string
	confidence      Confidence
}

var fthpRules = []fthpRule{
	{3600, 1.00, 2.0, "60min_threshold", ConfidenceHighest},
	{1800, 0.97, 2.2, "30min_test", ConfidenceHigh},
	{1200, 0.95, 2.5, "20min_test", ConfidenceGood},
	{900, 0.90, 3.0, "15min_conservative", ConfidenceConservative},
}

// EstimateFTP derives functional threshold power from a power effort curve.
// The first rule whose duration has a qualifying record wins. Returns nil
// when no rule applies.
func EstimateFTP(curve EffortCurve) *ThresholdEstimate {
	for _, rule := range ftpRules {
		r := curve.At(rule.durationSeconds)
		if r == nil {
			continue
		}
		ftp := r.Value * rule.factor
		if ftp <= minPlausibleFTP {
			continue
		}
		return &ThresholdEstimate{Value: ftp, Method: rule.method, Confidence: rule.confidence}
	}
	return nil
}

// EstimateFTHP derives functional threshold pace (m/s) from a speed effort
// curve. Each rule carries its own plausibility floor. Returns nil when no
// rule applies.
func EstimateFTHP(curve EffortCurve) *ThresholdEstimate {
	for _, rule := range fthpRules {
		r := curve.At(rule.durationSeconds)
		if r == nil {
			continue
		}
		if r.Value < rule.minSpeed {
			continue
		}
		pace := r.Value * rule.factor
		return &ThresholdEstimate{Value: pace, Method: rule.method, Confidence: rule.confidence}
	}
	return nil
}

// BestEstimate aggregates per-activity estimates across a history: the
// single highest value wins, regardless of which activity or method produced
// it. Returns nil for an empty slice.
func BestEstimate(estimates []ThresholdEstimate) *ThresholdEstimate {
	var best *ThresholdEstimate
	for i := range estimates {
		if best == nil || estimates[i].Value > best.Value {
			best = &estimates[i]
		}
	}
	return best
}

// ShouldUpdate reports whether candidate should replace the existing stored
// threshold: always when nothing is stored, otherwise only on a clear
// improvement past ImprovementMargin.
func ShouldUpdate(existing *float64, candidate float64) bool {
	if existing == nil {
		return candidate > 0
	}
	return candidate > *existing*ImprovementMargin
}

// minObservedMaxHR filters out heart-rate observations too low to be a true
// maximum.
const minObservedMaxHR = 100

// EstimateMaxHR returns the highest plausible observed heart rate, or nil if
// none exceeds the plausibility floor.
func EstimateMaxHR(observations []float64) *float64 {
	var best *float64
	for _, hr := range observations {
		if hr <= minObservedMaxHR {
			continue
		}
		if best == nil || hr > *best {
			v := hr
			best = &v
		}
	}
	return best
}

const (
	restingHRMin        = 35
	restingHRMax        = 120
	minWellnessSamples  = 3
	restingFloorMale    = 45
	restingFloorFemale  = 50
	restingOffsetMale   = 170
	restingOffsetFemale = 160
)

// EstimateRestingHR derives resting heart rate, preferring measured wellness
// data: the 10th percentile of plausible recent samples when at least three
// exist. With too little data it falls back to a gender-conditioned offset
// from max HR. Returns nil and an empty method when neither source is
// usable.
func EstimateRestingHR(samples []WellnessSample, maxHR *float64, gender string) (*float64, string) {
	var observed []float64
	for _, s := range samples {
		if s.RestingHR == nil {
			continue
		}
		if *s.RestingHR < restingHRMin || *s.RestingHR > restingHRMax {
			continue
		}
		observed = append(observed, *s.RestingHR)
	}
	if len(observed) >= minWellnessSamples {
		sort.Float64s(observed)
		v := observed[len(observed)/10]
		return &v, "wellness_10th_percentile"
	}

	if maxHR == nil {
		return nil, ""
	}
	var v float64
	if gender == "female" {
		v = max(restingFloorFemale, *maxHR-restingOffsetFemale)
	} else {
		v = max(restingFloorMale, *maxHR-restingOffsetMale)
	}
	return &v, "max_hr_offset_estimate"
}
