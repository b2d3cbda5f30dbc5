package analysis

import (
	"math"
	"strings"
)

// ActivitySummary is the slice of an activity the load calculator needs.
type ActivitySummary struct {
	Type              string // Strava activity type, e.g. "Run", "Ride", "Hike"
	DistanceMeters    float64
	MovingTimeSeconds int
}

// LoadScore is a computed training load with its provenance tag. The tag
// names the strategy that produced the score, plus any wellness modifiers
// that adjusted it.
type LoadScore struct {
	Score  float64
	Method string
}

// ComputeLoad scores an activity with the first applicable strategy, in
// fixed priority order: the most physiologically specific method available
// wins. Stream and wellness are optional; thresholds may have any subset of
// fields set. The result is deterministic for identical inputs.
func ComputeLoad(activity ActivitySummary, thresholds Thresholds, stream *ActivityStream, wellness *WellnessSample) LoadScore {
	if activity.MovingTimeSeconds <= 0 {
		return LoadScore{Score: 0, Method: "no_time"}
	}

	score := computeBase(activity, thresholds, stream)
	score.Score, score.Method = applyWellness(score.Score, score.Method, wellness)
	return score
}

func computeBase(activity ActivitySummary, thresholds Thresholds, stream *ActivityStream) LoadScore {
	hours := float64(activity.MovingTimeSeconds) / 3600.0
	sport := SportOf(activity.Type)

	// Power-based TSS for cycling.
	if sport == SportCycling && stream != nil && stream.HasPower() && hasValue(thresholds.FTPWatts) {
		ftp := *thresholds.FTPWatts
		np := NormalizedPower(stream.Power)
		intensity := np / ftp
		tss := float64(activity.MovingTimeSeconds) * np * intensity / (ftp * 36)
		return LoadScore{Score: tss, Method: "TSS"}
	}

	// Pace-based rTSS for running.
	if sport == SportRunning && hasValue(thresholds.FTHPMps) && activity.DistanceMeters > 0 {
		avgPace := activity.DistanceMeters / float64(activity.MovingTimeSeconds)
		if avgPace > 0 {
			intensity := *thresholds.FTHPMps / avgPace
			return LoadScore{Score: hours * intensity * intensity * 100, Method: "rTSS"}
		}
	}

	// Heart-rate TRIMP, MET-scaled per activity class.
	if stream != nil && stream.HasHeartrate() && hasValue(thresholds.MaxHR) && hasValue(thresholds.RestingHR) {
		trimp := computeTRIMP(stream.Heartrate, *thresholds.MaxHR, *thresholds.RestingHR, activity.MovingTimeSeconds, activity.Type)
		return LoadScore{Score: trimp, Method: "TRIMP"}
	}

	// Running intensity distribution from a per-activity threshold pace.
	if sport == SportRunning && stream != nil && stream.HasDistance() {
		if band, ok := classifyRunningIntensity(stream.Distance, stream.Time); ok {
			mult := intensityBandMultipliers[band]
			return LoadScore{Score: hours * mult * 100, Method: "running_intensity_" + band}
		}
	}

	// Cycling intensity from average power when NP-grade data is unusable.
	if sport == SportCycling && stream != nil && stream.HasPower() && hasValue(thresholds.FTPWatts) {
		var sum float64
		for _, p := range stream.Power {
			sum += p
		}
		avg := sum / float64(len(stream.Power))
		intensity := avg / *thresholds.FTPWatts
		return LoadScore{Score: intensity * intensity * hours * 100, Method: "power_intensity"}
	}

	// Heart-rate reserve banding for anything with HR data left over.
	if stream != nil && stream.HasHeartrate() {
		band, mult := classifyHRIntensity(stream.Heartrate, thresholds)
		return LoadScore{Score: hours * mult * 100, Method: "hr_intensity_" + band}
	}

	// Conservative time-based fallback with diminishing returns past 2 hours.
	timeFactor := hours
	if hours > 2 {
		timeFactor = 2 + (hours-2)*0.5
	}
	return LoadScore{
		Score:  timeFactor * conservativeFactor(activity.Type) * 100,
		Method: "conservative_time_based",
	}
}

func hasValue(p *float64) bool { return p != nil && *p > 0 }

// Sport is the coarse activity category used for load strategies and
// workload partitioning.
type Sport string

const (
	SportRunning Sport = "running"
	SportCycling Sport = "cycling"
	SportOther   Sport = "other"
)

// SportOf maps a Strava activity type to a coarse sport category.
func SportOf(activityType string) Sport {
	t := strings.ToLower(activityType)
	switch {
	case strings.Contains(t, "run"):
		return SportRunning
	case strings.Contains(t, "ride") || strings.Contains(t, "cycl") || strings.Contains(t, "bike"):
		return SportCycling
	default:
		return SportOther
	}
}

// metScaleFactor scales TRIMP per activity class, anchored at running.
// Ratios follow Compendium of Physical Activities MET values.
func metScaleFactor(activityType string) float64 {
	switch strings.ToLower(activityType) {
	case "run", "running", "trailrun", "virtualrun":
		return 1.0
	case "ride", "cycling", "virtualride":
		return 0.95
	case "swim", "swimming":
		return 0.95
	case "hike", "hiking":
		return 0.55
	case "walk", "walking":
		return 0.45
	case "workout", "crosstraining":
		return 0.80
	case "elliptical":
		return 0.70
	case "alpineski":
		return 0.90
	case "nordicski":
		return 0.95
	default:
		return 0.75
	}
}

// conservativeFactor is the per-activity-type intensity factor for the
// terminal time-based fallback.
func conservativeFactor(activityType string) float64 {
	switch strings.ToLower(activityType) {
	case "run", "running":
		return 1.0
	case "ride", "cycling":
		return 0.9
	case "swim", "swimming":
		return 1.1
	case "hike":
		return 0.4
	case "walk":
		return 0.3
	default:
		return 0.8
	}
}

// trimpCapPerMinute bounds TRIMP so a long moderate session cannot
// outscore a hard one purely on duration.
const trimpCapPerMinute = 1.2

func computeTRIMP(hr []float64, maxHR, restingHR float64, movingTimeSeconds int, activityType string) float64 {
	reserve := maxHR - restingHR
	if reserve <= 0 || len(hr) == 0 {
		return 0
	}
	var sum float64
	for _, v := range hr {
		sum += v
	}
	avg := sum / float64(len(hr))
	frac := (avg - restingHR) / reserve
	frac = math.Max(0, math.Min(1, frac))

	minutes := float64(movingTimeSeconds) / 60.0
	base := minutes * frac * 0.5 * math.Exp(1.5*frac)
	adjusted := base * metScaleFactor(activityType)
	return math.Min(adjusted, minutes*trimpCapPerMinute)
}

var intensityBandMultipliers = map[string]float64{
	"recovery":       0.5,
	"aerobic_base":   0.8,
	"tempo":          1.2,
	"high_intensity": 1.8,
}

// classifyRunningIntensity derives a per-activity threshold pace from the
// stream's own pace curve, buckets each instantaneous pace sample into six
// zones relative to it, and labels the session by zone distribution. Returns
// false when no threshold pace can be derived.
func classifyRunningIntensity(distance []float64, time []int) (string, bool) {
	est := EstimateFTHP(PaceCurve(distance, time))
	if est == nil || est.Value <= 0 {
		return "", false
	}
	threshold := est.Value

	n := len(distance)
	if n < 2 {
		return "", false
	}
	zones := [7]int{}
	total := 0
	for i := 1; i < n; i++ {
		dt := time[i] - time[i-1]
		total++
		if dt <= 0 {
			continue
		}
		pace := (distance[i] - distance[i-1]) / float64(dt)
		if pace <= 0 {
			continue
		}
		pct := pace / threshold * 100
		switch {
		case pct < 81:
			zones[1]++
		case pct < 89:
			zones[2]++
		case pct < 94:
			zones[3]++
		case pct < 105:
			zones[4]++
		case pct < 120:
			zones[5]++
		default:
			zones[6]++
		}
	}
	if total == 0 {
		return "", false
	}

	pct := func(z int) float64 { return float64(zones[z]) / float64(total) * 100 }
	switch {
	case pct(4)+pct(5)+pct(6) > 30:
		return "high_intensity", true
	case pct(3) > 20:
		return "tempo", true
	case pct(2) > 60:
		return "aerobic_base", true
	default:
		return "recovery", true
	}
}

// Defaults used by HR-reserve banding when no thresholds are stored yet.
const (
	defaultMaxHR     = 190
	defaultRestingHR = 60
)

func classifyHRIntensity(hr []float64, thresholds Thresholds) (string, float64) {
	maxHR := float64(defaultMaxHR)
	restHR := float64(defaultRestingHR)
	if hasValue(thresholds.MaxHR) {
		maxHR = *thresholds.MaxHR
	}
	if hasValue(thresholds.RestingHR) {
		restHR = *thresholds.RestingHR
	}

	var sum float64
	for _, v := range hr {
		sum += v
	}
	avg := sum / float64(len(hr))
	reserve := maxHR - restHR
	var frac float64
	if reserve > 0 {
		frac = (avg - restHR) / reserve
	}

	switch {
	case frac < 0.6:
		return "recovery", 0.5
	case frac < 0.7:
		return "aerobic_base", 0.8
	case frac < 0.8:
		return "tempo", 1.2
	default:
		return "high_intensity", 1.8
	}
}

// applyWellness multiplies the score by per-signal sub-modifiers and appends
// the names of the ones that fired to the method tag. Neutral days leave the
// score and tag untouched.
func applyWellness(score float64, method string, w *WellnessSample) (float64, string) {
	if w == nil {
		return score, method
	}

	modifier := 1.0
	var names []string

	if w.HRV != nil {
		switch {
		case *w.HRV < 20:
			modifier *= 0.8
			names = append(names, "low_hrv")
		case *w.HRV > 50:
			modifier *= 1.1
			names = append(names, "high_hrv")
		}
	}
	if w.SleepScore != nil {
		switch {
		case *w.SleepScore < 60:
			modifier *= 0.85
			names = append(names, "poor_sleep")
		case *w.SleepScore > 85:
			modifier *= 1.05
			names = append(names, "great_sleep")
		}
	}
	if w.ReadinessScore != nil {
		switch {
		case *w.ReadinessScore < 50:
			modifier *= 0.8
			names = append(names, "low_readiness")
		case *w.ReadinessScore > 80:
			modifier *= 1.1
			names = append(names, "high_readiness")
		}
	}

	if len(names) == 0 {
		return score, method
	}
	return score * modifier, method + "_wellness_" + strings.Join(names, "_")
}
