package analysis

import "math"

// StandardDurations are the window lengths, in seconds, evaluated when
// building an effort curve. Each duration is independent: a record for one
// says nothing about any other.
var StandardDurations = []int{30, 60, 120, 300, 480, 600, 900, 1200, 1800, 2400, 2700, 3600}

// MinSpanFraction is the minimum covered fraction of the target window for a
// candidate effort to count. Recording gaps inside the window are tolerated
// as long as the endpoints span at least this much of it.
const MinSpanFraction = 0.95

// minSamplesForRolling is the series length below which NormalizedPower falls
// back to a plain arithmetic mean.
const minSamplesForRolling = 30

// EffortRecord is the best sustained output found for one window length.
type EffortRecord struct {
	DurationSeconds int
	Value           float64 // mean watts or mean m/s over the window
	StartIndex      int
	EndIndex        int
}

// EffortCurve maps window length in seconds to the best effort found for it.
// Durations with no qualifying window are absent.
type EffortCurve map[int]EffortRecord

// At returns the record for the given duration, or nil if the curve has none.
func (c EffortCurve) At(durationSeconds int) *EffortRecord {
	if r, ok := c[durationSeconds]; ok {
		return &r
	}
	return nil
}

// BestEffort finds the window of at least durationSeconds with the highest
// mean of positive values. Zero and negative samples (coasting, sensor
// dropouts) are excluded from the mean but still occupy time. Runs in O(n)
// with two pointers over prefix sums. Returns nil when the series is too
// short or no window contains a positive sample.
func BestEffort(values []float64, time []int, durationSeconds int) *EffortRecord {
	n := len(time)
	if n == 0 || len(values) != n || durationSeconds <= 0 {
		return nil
	}
	minSpan := MinSpanFraction * float64(durationSeconds)
	if float64(time[n-1]-time[0]) < minSpan {
		return nil
	}

	// Prefix sums over positive samples only.
	sum := make([]float64, n+1)
	cnt := make([]int, n+1)
	for i, v := range values {
		sum[i+1] = sum[i]
		cnt[i+1] = cnt[i]
		if v > 0 {
			sum[i+1] += v
			cnt[i+1]++
		}
	}

	var best *EffortRecord
	j := 0
	for i := 0; i < n; i++ {
		if j < i {
			j = i
		}
		target := time[i] + durationSeconds
		for j < n-1 && time[j] < target {
			j++
		}
		if float64(time[j]-time[i]) < minSpan {
			continue
		}
		c := cnt[j+1] - cnt[i]
		if c == 0 {
			continue
		}
		mean := (sum[j+1] - sum[i]) / float64(c)
		if best == nil || mean > best.Value {
			best = &EffortRecord{
				DurationSeconds: durationSeconds,
				Value:           mean,
				StartIndex:      i,
				EndIndex:        j,
			}
		}
	}
	return best
}

// BestPaceEffort finds the window of at least durationSeconds with the
// highest mean speed, computed from the cumulative distance delta across the
// window rather than from instantaneous samples. Returns nil when the series
// is too short or no window covers any distance.
func BestPaceEffort(distance []float64, time []int, durationSeconds int) *EffortRecord {
	n := len(time)
	if n == 0 || len(distance) != n || durationSeconds <= 0 {
		return nil
	}
	minSpan := MinSpanFraction * float64(durationSeconds)
	if float64(time[n-1]-time[0]) < minSpan {
		return nil
	}

	var best *EffortRecord
	j := 0
	for i := 0; i < n; i++ {
		if j < i {
			j = i
		}
		target := time[i] + durationSeconds
		for j < n-1 && time[j] < target {
			j++
		}
		span := float64(time[j] - time[i])
		if span < minSpan {
			continue
		}
		covered := distance[j] - distance[i]
		if covered <= 0 {
			continue
		}
		speed := covered / span
		if best == nil || speed > best.Value {
			best = &EffortRecord{
				DurationSeconds: durationSeconds,
				Value:           speed,
				StartIndex:      i,
				EndIndex:        j,
			}
		}
	}
	return best
}

// PowerCurve builds the best-effort power curve over StandardDurations.
func PowerCurve(power []float64, time []int) EffortCurve {
	curve := EffortCurve{}
	for _, d := range StandardDurations {
		if r := BestEffort(power, time, d); r != nil {
			curve[d] = *r
		}
	}
	return curve
}

// PaceCurve builds the best-effort speed curve over StandardDurations using
// cumulative distance.
func PaceCurve(distance []float64, time []int) EffortCurve {
	curve := EffortCurve{}
	for _, d := range StandardDurations {
		if r := BestPaceEffort(distance, time, d); r != nil {
			curve[d] = *r
		}
	}
	return curve
}

// StreamAnalysis is the per-activity product of stream analysis: effort
// curves for whichever series were present, plus heart-rate observations.
type StreamAnalysis struct {
	Power        EffortCurve
	Pace         EffortCurve
	MaxHeartrate float64 // 0 when no heart-rate series
	AvgHeartrate float64
}

// AnalyzeStream validates the stream and extracts effort curves and
// heart-rate aggregates from whichever series are present.
func AnalyzeStream(stream ActivityStream) (StreamAnalysis, error) {
	if err := stream.Validate(); err != nil {
		return StreamAnalysis{}, err
	}

	var out StreamAnalysis
	if stream.HasPower() {
		out.Power = PowerCurve(stream.Power, stream.Time)
	}
	if stream.HasDistance() {
		out.Pace = PaceCurve(stream.Distance, stream.Time)
	}
	if stream.HasHeartrate() {
		var sum float64
		for _, hr := range stream.Heartrate {
			sum += hr
			if hr > out.MaxHeartrate {
				out.MaxHeartrate = hr
			}
		}
		out.AvgHeartrate = sum / float64(len(stream.Heartrate))
	}
	return out, nil
}

// NormalizedPower computes normalized power: a 30-sample rolling mean of the
// power series, raised to the 4th power, averaged, then taken to the 4th
// root. Series shorter than 30 samples fall back to the arithmetic mean.
// Returns 0 for an empty series.
func NormalizedPower(power []float64) float64 {
	n := len(power)
	if n == 0 {
		return 0
	}
	if n < minSamplesForRolling {
		var sum float64
		for _, p := range power {
			sum += p
		}
		return sum / float64(n)
	}

	var windowSum, fourthSum float64
	for i := 0; i < minSamplesForRolling; i++ {
		windowSum += power[i]
	}
	windows := n - minSamplesForRolling + 1
	for i := 0; ; i++ {
		mean := windowSum / float64(minSamplesForRolling)
		fourthSum += mean * mean * mean * mean
		if i == windows-1 {
			break
		}
		windowSum += power[i+minSamplesForRolling] - power[i]
	}
	return math.Pow(fourthSum/float64(windows), 0.25)
}
