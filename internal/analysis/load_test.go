package analysis

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func steadyStream(n int, power, hr float64) *ActivityStream {
	s := &ActivityStream{Time: make([]int, n)}
	for i := 0; i < n; i++ {
		s.Time[i] = i
	}
	if power > 0 {
		s.Power = make([]float64, n)
		for i := range s.Power {
			s.Power[i] = power
		}
	}
	if hr > 0 {
		s.Heartrate = make([]float64, n)
		for i := range s.Heartrate {
			s.Heartrate[i] = hr
		}
	}
	return s
}

func TestComputeLoad(t *testing.T) {
	t.Run("zero moving time short-circuits everything", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Ride", MovingTimeSeconds: 0},
			Thresholds{FTPWatts: fp(250)},
			steadyStream(60, 250, 150),
			&WellnessSample{HRV: fp(60)},
		)
		if got.Score != 0 || got.Method != "no_time" {
			t.Errorf("got (%.1f, %q), want (0, no_time)", got.Score, got.Method)
		}
	})

	t.Run("ride at FTP for an hour scores 100 TSS", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Ride", MovingTimeSeconds: 3600},
			Thresholds{FTPWatts: fp(250)},
			steadyStream(120, 250, 0),
			nil,
		)
		if got.Method != "TSS" {
			t.Fatalf("Method = %q, want TSS", got.Method)
		}
		if math.Abs(got.Score-100) > 0.1 {
			t.Errorf("Score = %.2f, want 100", got.Score)
		}
	})

	t.Run("run at threshold pace for an hour scores 100 rTSS", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Run", DistanceMeters: 10800, MovingTimeSeconds: 3600},
			Thresholds{FTHPMps: fp(3.0)},
			nil,
			nil,
		)
		if got.Method != "rTSS" {
			t.Fatalf("Method = %q, want rTSS", got.Method)
		}
		if math.Abs(got.Score-100) > 0.1 {
			t.Errorf("Score = %.2f, want 100", got.Score)
		}
	})

	t.Run("hike with HR uses MET-scaled TRIMP", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Hike", MovingTimeSeconds: 3600},
			Thresholds{MaxHR: fp(190), RestingHR: fp(50)},
			steadyStream(60, 0, 150),
			nil,
		)
		if got.Method != "TRIMP" {
			t.Fatalf("Method = %q, want TRIMP", got.Method)
		}
		// frac = 100/140, base = 60*frac*0.5*e^(1.5*frac), scaled by 0.55.
		if math.Abs(got.Score-34.41) > 0.05 {
			t.Errorf("Score = %.2f, want ~34.41", got.Score)
		}
	})

	t.Run("TRIMP capped for long moderate sessions", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Run", MovingTimeSeconds: 4 * 3600},
			Thresholds{MaxHR: fp(190), RestingHR: fp(50)},
			steadyStream(60, 0, 185),
			nil,
		)
		limit := 240 * 1.2
		if got.Score > limit+0.001 {
			t.Errorf("Score = %.2f exceeds cap %.1f", got.Score, limit)
		}
	})

	t.Run("running intensity distribution without thresholds", func(t *testing.T) {
		n := 1000
		s := &ActivityStream{
			Time:     make([]int, n),
			Distance: make([]float64, n),
		}
		for i := 0; i < n; i++ {
			s.Time[i] = i
			s.Distance[i] = float64(i) * 3.5
		}
		got := ComputeLoad(
			ActivitySummary{Type: "Run", DistanceMeters: 3500, MovingTimeSeconds: 3600},
			Thresholds{},
			s,
			nil,
		)
		// Steady pace lands above the activity's own derived threshold pace,
		// so the whole run classifies as high intensity.
		if got.Method != "running_intensity_high_intensity" {
			t.Fatalf("Method = %q, want running_intensity_high_intensity", got.Method)
		}
		if math.Abs(got.Score-180) > 0.1 {
			t.Errorf("Score = %.2f, want 180", got.Score)
		}
	})

	t.Run("HR reserve banding with default thresholds", func(t *testing.T) {
		got := ComputeLoad(
			ActivitySummary{Type: "Kayaking", MovingTimeSeconds: 3600},
			Thresholds{},
			steadyStream(60, 0, 150),
			nil,
		)
		// frac = (150-60)/130 ~ 0.69, aerobic_base band.
		if got.Method != "hr_intensity_aerobic_base" {
			t.Fatalf("Method = %q, want hr_intensity_aerobic_base", got.Method)
		}
		if math.Abs(got.Score-80) > 0.1 {
			t.Errorf("Score = %.2f, want 80", got.Score)
		}
	})

	t.Run("conservative fallback scales by sport and caps time", func(t *testing.T) {
		tests := []struct {
			name      string
			aType     string
			seconds   int
			wantScore float64
		}{
			{"one hour run", "Run", 3600, 100},
			{"one hour walk", "Walk", 3600, 30},
			{"four hour hike has diminishing time factor", "Hike", 4 * 3600, 120}, // (2+1)*0.4*100
			{"unknown type", "Yoga", 3600, 80},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := ComputeLoad(
					ActivitySummary{Type: tt.aType, MovingTimeSeconds: tt.seconds},
					Thresholds{}, nil, nil,
				)
				if got.Method != "conservative_time_based" {
					t.Fatalf("Method = %q, want conservative_time_based", got.Method)
				}
				if math.Abs(got.Score-tt.wantScore) > 0.1 {
					t.Errorf("Score = %.2f, want %.1f", got.Score, tt.wantScore)
				}
			})
		}
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		activity := ActivitySummary{Type: "Ride", MovingTimeSeconds: 5400}
		th := Thresholds{FTPWatts: fp(240)}
		s := steadyStream(300, 220, 145)
		a := ComputeLoad(activity, th, s, nil)
		b := ComputeLoad(activity, th, s, nil)
		if a != b {
			t.Errorf("non-deterministic result: %+v vs %+v", a, b)
		}
	})
}

func TestWellnessModifiers(t *testing.T) {
	t.Run("all negative signals give the lower bound", func(t *testing.T) {
		w := &WellnessSample{HRV: fp(10), SleepScore: fp(50), ReadinessScore: fp(40)}
		got := ComputeLoad(
			ActivitySummary{Type: "Run", MovingTimeSeconds: 3600},
			Thresholds{}, nil, w,
		)
		// 0.8 * 0.85 * 0.8 = 0.544 applied to the 100-point conservative base.
		if math.Abs(got.Score-54.4) > 0.01 {
			t.Errorf("Score = %.3f, want 54.4", got.Score)
		}
		want := "conservative_time_based_wellness_low_hrv_poor_sleep_low_readiness"
		if got.Method != want {
			t.Errorf("Method = %q, want %q", got.Method, want)
		}
	})

	t.Run("all positive signals give the upper bound", func(t *testing.T) {
		w := &WellnessSample{HRV: fp(60), SleepScore: fp(90), ReadinessScore: fp(90)}
		got := ComputeLoad(
			ActivitySummary{Type: "Run", MovingTimeSeconds: 3600},
			Thresholds{}, nil, w,
		)
		// 1.1 * 1.05 * 1.1 = 1.2705.
		if math.Abs(got.Score-127.05) > 0.01 {
			t.Errorf("Score = %.3f, want 127.05", got.Score)
		}
		want := "conservative_time_based_wellness_high_hrv_great_sleep_high_readiness"
		if got.Method != want {
			t.Errorf("Method = %q, want %q", got.Method, want)
		}
	})

	t.Run("neutral signals leave score and tag alone", func(t *testing.T) {
		w := &WellnessSample{HRV: fp(35), SleepScore: fp(75), ReadinessScore: fp(65)}
		got := ComputeLoad(
			ActivitySummary{Type: "Run", MovingTimeSeconds: 3600},
			Thresholds{}, nil, w,
		)
		if math.Abs(got.Score-100) > 0.01 || got.Method != "conservative_time_based" {
			t.Errorf("got (%.2f, %q), want (100, conservative_time_based)", got.Score, got.Method)
		}
	})

	t.Run("modifiers apply to stream-based scores too", func(t *testing.T) {
		w := &WellnessSample{ReadinessScore: fp(90)}
		got := ComputeLoad(
			ActivitySummary{Type: "Ride", MovingTimeSeconds: 3600},
			Thresholds{FTPWatts: fp(250)},
			steadyStream(120, 250, 0),
			w,
		)
		if got.Method != "TSS_wellness_high_readiness" {
			t.Fatalf("Method = %q, want TSS_wellness_high_readiness", got.Method)
		}
		if math.Abs(got.Score-110) > 0.1 {
			t.Errorf("Score = %.2f, want 110", got.Score)
		}
	})
}

func TestSportOf(t *testing.T) {
	tests := []struct {
		aType string
		want  Sport
	}{
		{"Run", SportRunning},
		{"TrailRun", SportRunning},
		{"VirtualRun", SportRunning},
		{"Ride", SportCycling},
		{"VirtualRide", SportCycling},
		{"MountainBikeRide", SportCycling},
		{"Hike", SportOther},
		{"Swim", SportOther},
		{"", SportOther},
	}
	for _, tt := range tests {
		if got := SportOf(tt.aType); got != tt.want {
			t.Errorf("SportOf(%q) = %q, want %q", tt.aType, got, tt.want)
		}
	}
}
