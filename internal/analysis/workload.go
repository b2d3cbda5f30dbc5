package analysis

import "time"

// Acute and chronic window lengths for the workload ratio, following
// Blanch & Gabbett (2016).
const (
	AcuteWindowDays   = 7
	ChronicWindowDays = 28

	// RatioOptimal, RatioCeiling and RatioFloor define the target band for
	// acute:chronic workload.
	RatioOptimal = 1.0
	RatioCeiling = 1.3
	RatioFloor   = 0.8

	// SafeWeeklyIncrease is the largest week-over-week load increase that
	// keeps ramp risk acceptable.
	SafeWeeklyIncrease = 0.10
)

// RiskLevel labels an acute:chronic workload ratio.
type RiskLevel string

const (
	RiskLow        RiskLevel = "low"
	RiskModerate   RiskLevel = "moderate"
	RiskHigh       RiskLevel = "high"
	RiskDetraining RiskLevel = "detraining"
)

// ScoredActivity is one dated training-load score, the input unit for
// workload analysis.
type ScoredActivity struct {
	Date  time.Time
	Type  string
	Score float64
}

// WorkloadWindow is the acute:chronic picture for one activity population.
type WorkloadWindow struct {
	AcuteLoad   float64 // 7-day load sum
	ChronicLoad float64 // 28-day load sum divided by 4, a weekly average
	Ratio       float64
	Risk        RiskLevel
}

// ProgressionTargets are safe weekly-load guideposts derived from the
// chronic baseline.
type ProgressionTargets struct {
	TargetWeeklyLoad   float64 // chronic baseline held steady
	MaxSafeWeeklyLoad  float64 // chronic baseline at the ratio ceiling
	SafeWeeklyIncrease float64 // fraction of chronic baseline
}

// WorkloadReport is the full workload assessment: overall window, per-sport
// windows, the combined risk across all of them, and progression targets.
type WorkloadReport struct {
	Overall  WorkloadWindow
	BySport  map[Sport]WorkloadWindow
	Combined RiskLevel
	Targets  ProgressionTargets
}

// ComputeWindow builds the workload window from scored activities, counting
// scores dated within (asOf-window, asOf]. An empty chronic baseline yields
// ratio 1.0 when there is acute load and 0.0 when there is none.
func ComputeWindow(history []ScoredActivity, asOf time.Time) WorkloadWindow {
	acuteStart := asOf.AddDate(0, 0, -AcuteWindowDays)
	chronicStart := asOf.AddDate(0, 0, -ChronicWindowDays)

	var acute, chronicSum float64
	for _, a := range history {
		if a.Date.After(asOf) || !a.Date.After(chronicStart) {
			continue
		}
		chronicSum += a.Score
		if a.Date.After(acuteStart) {
			acute += a.Score
		}
	}
	chronic := chronicSum / 4.0
	ratio := workloadRatio(acute, chronic)

	return WorkloadWindow{
		AcuteLoad:   acute,
		ChronicLoad: chronic,
		Ratio:       ratio,
		Risk:        classifyRatio(ratio),
	}
}

// workloadRatio divides acute by chronic load. Without a chronic baseline
// the ratio is 1.0 when any acute load exists and 0.0 otherwise, so a brand
// new athlete is neither flagged as spiking nor as detraining.
func workloadRatio(acute, chronic float64) float64 {
	switch {
	case chronic > 0:
		return acute / chronic
	case acute > 0:
		return 1.0
	default:
		return 0.0
	}
}

func classifyRatio(ratio float64) RiskLevel {
	switch {
	case ratio > RatioCeiling:
		return RiskHigh
	case ratio < RatioFloor:
		return RiskDetraining
	case ratio > 1.2:
		return RiskModerate
	default:
		return RiskLow
	}
}

// riskSeverity orders risk levels for the combined assessment. Detraining
// and moderate share a severity tier; the combined label for that tier is
// moderate.
var riskSeverity = map[RiskLevel]int{
	RiskLow:        0,
	RiskModerate:   1,
	RiskDetraining: 1,
	RiskHigh:       2,
}

var severityLabel = [3]RiskLevel{RiskLow, RiskModerate, RiskHigh}

// ComputeReport builds the full workload report as of the given time:
// overall and per-sport windows, the maximum-severity combined risk, and
// progression targets anchored on the overall chronic baseline.
func ComputeReport(history []ScoredActivity, asOf time.Time) WorkloadReport {
	overall := ComputeWindow(history, asOf)

	bySport := map[Sport][]ScoredActivity{}
	for _, a := range history {
		s := SportOf(a.Type)
		bySport[s] = append(bySport[s], a)
	}
	windows := map[Sport]WorkloadWindow{}
	maxSeverity := riskSeverity[overall.Risk]
	for _, sport := range []Sport{SportRunning, SportCycling, SportOther} {
		w := ComputeWindow(bySport[sport], asOf)
		windows[sport] = w
		if s := riskSeverity[w.Risk]; s > maxSeverity {
			maxSeverity = s
		}
	}

	return WorkloadReport{
		Overall:  overall,
		BySport:  windows,
		Combined: severityLabel[maxSeverity],
		Targets: ProgressionTargets{
			TargetWeeklyLoad:   overall.ChronicLoad * RatioOptimal,
			MaxSafeWeeklyLoad:  overall.ChronicLoad * RatioCeiling,
			SafeWeeklyIncrease: SafeWeeklyIncrease,
		},
	}
}
