package analysis

import (
	"math"
	"testing"
)

func curveOf(entries map[int]float64) EffortCurve {
	c := EffortCurve{}
	for d, v := range entries {
		c[d] = EffortRecord{DurationSeconds: d, Value: v}
	}
	return c
}

func TestEstimateFTP(t *testing.T) {
	tests := []struct {
		name       string
		curve      map[int]float64
		wantValue  float64
		wantMethod string
		wantNil    bool
	}{
		{
			name:       "60min effort taken at face value",
			curve:      map[int]float64{3600: 250},
			wantValue:  250,
			wantMethod: "60min_power",
		},
		{
			name:       "longer duration preferred over higher projection",
			curve:      map[int]float64{3600: 250, 300: 400},
			wantValue:  250,
			wantMethod: "60min_power",
		},
		{
			name:       "40min effort discounted",
			curve:      map[int]float64{2400: 260},
			wantValue:  252.2,
			wantMethod: "40min_power_adjusted",
		},
		{
			name:       "20min test factor",
			curve:      map[int]float64{1200: 280},
			wantValue:  266,
			wantMethod: "20min_test",
		},
		{
			name:       "5min effort heavily discounted",
			curve:      map[int]float64{300: 320},
			wantValue:  272,
			wantMethod: "5min_power_adjusted",
		},
		{
			name:    "implausibly low power rejected",
			curve:   map[int]float64{3600: 40},
			wantNil: true,
		},
		{
			name:    "empty curve",
			curve:   map[int]float64{},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateFTP(curveOf(tt.curve))
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an estimate")
			}
			if math.Abs(got.Value-tt.wantValue) > 0.01 {
				t.Errorf("Value = %.2f, want %.2f", got.Value, tt.wantValue)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", got.Method, tt.wantMethod)
			}
		})
	}
}

func TestEstimateFTHP(t *testing.T) {
	tests := []struct {
		name       string
		curve      map[int]float64
		wantValue  float64
		wantMethod string
		wantNil    bool
	}{
		{
			name:       "60min pace taken at face value",
			curve:      map[int]float64{3600: 3.0},
			wantValue:  3.0,
			wantMethod: "60min_threshold",
		},
		{
			name:       "30min discounted",
			curve:      map[int]float64{1800: 3.0},
			wantValue:  2.91,
			wantMethod: "30min_test",
		},
		{
			name:       "15min conservative",
			curve:      map[int]float64{900: 3.5},
			wantValue:  3.15,
			wantMethod: "15min_conservative",
		},
		{
			name:    "below plausibility floor rejected",
			curve:   map[int]float64{1200: 2.0}, // floor for 20min is 2.5 m/s
			wantNil: true,
		},
		{
			name:    "empty curve",
			curve:   map[int]float64{},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateFTHP(curveOf(tt.curve))
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an estimate")
			}
			if math.Abs(got.Value-tt.wantValue) > 0.001 {
				t.Errorf("Value = %.3f, want %.3f", got.Value, tt.wantValue)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Method = %q, want %q", got.Method, tt.wantMethod)
			}
		})
	}
}

func TestBestEstimate(t *testing.T) {
	if got := BestEstimate(nil); got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}

	estimates := []ThresholdEstimate{
		{Value: 240, Method: "20min_test"},
		{Value: 255, Method: "60min_power"},
		{Value: 250, Method: "40min_power_adjusted"},
	}
	got := BestEstimate(estimates)
	if got == nil || got.Value != 255 {
		t.Fatalf("BestEstimate = %+v, want the 255 estimate", got)
	}
	if got.Method != "60min_power" {
		t.Errorf("Method = %q, want 60min_power", got.Method)
	}
}

func TestShouldUpdate(t *testing.T) {
	existing := 250.0
	tests := []struct {
		name      string
		existing  *float64
		candidate float64
		want      bool
	}{
		{"nothing stored", nil, 200, true},
		{"nothing stored and zero candidate", nil, 0, false},
		{"exactly at margin", &existing, 250 * 1.02, false},
		{"just past margin", &existing, 250 * 1.03, true},
		{"small regression", &existing, 245, false},
		{"equal value", &existing, 250, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldUpdate(tt.existing, tt.candidate); got != tt.want {
				t.Errorf("ShouldUpdate(%v, %.1f) = %v, want %v", tt.existing, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestEstimateMaxHR(t *testing.T) {
	if got := EstimateMaxHR([]float64{95, 80, 60}); got != nil {
		t.Errorf("expected nil when nothing exceeds the floor, got %v", *got)
	}
	got := EstimateMaxHR([]float64{95, 150, 188, 172})
	if got == nil || *got != 188 {
		t.Fatalf("EstimateMaxHR = %v, want 188", got)
	}
}

func TestEstimateRestingHR(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("wellness percentile preferred", func(t *testing.T) {
		samples := []WellnessSample{
			{RestingHR: f(52)},
			{RestingHR: f(48)},
			{RestingHR: f(55)},
			{RestingHR: f(50)},
		}
		got, method := EstimateRestingHR(samples, f(190), "male")
		if got == nil || *got != 48 {
			t.Fatalf("resting HR = %v, want 48", got)
		}
		if method != "wellness_10th_percentile" {
			t.Errorf("method = %q, want wellness_10th_percentile", method)
		}
	})

	t.Run("implausible samples filtered out", func(t *testing.T) {
		samples := []WellnessSample{
			{RestingHR: f(20)},  // below range
			{RestingHR: f(150)}, // above range
			{RestingHR: f(50)},
			{RestingHR: f(52)},
		}
		got, method := EstimateRestingHR(samples, f(190), "male")
		// Only two plausible samples left, so fall back to max HR offset.
		if got == nil || *got != 45 {
			t.Fatalf("resting HR = %v, want 45 from fallback", got)
		}
		if method != "max_hr_offset_estimate" {
			t.Errorf("method = %q, want max_hr_offset_estimate", method)
		}
	})

	t.Run("gender-conditioned fallback", func(t *testing.T) {
		got, _ := EstimateRestingHR(nil, f(190), "male")
		if got == nil || *got != 45 {
			t.Errorf("male fallback = %v, want 45", got)
		}
		got, _ = EstimateRestingHR(nil, f(190), "female")
		if got == nil || *got != 50 {
			t.Errorf("female fallback = %v, want 50", got)
		}
		got, _ = EstimateRestingHR(nil, f(230), "male")
		if got == nil || *got != 60 {
			t.Errorf("male fallback with high max = %v, want 60", got)
		}
	})

	t.Run("no data at all", func(t *testing.T) {
		got, method := EstimateRestingHR(nil, nil, "male")
		if got != nil || method != "" {
			t.Errorf("expected nil and empty method, got %v %q", got, method)
		}
	})
}
