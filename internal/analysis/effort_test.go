package analysis

import (
	"math"
	"testing"
)

func constantSeries(n int, v float64) ([]float64, []int) {
	values := make([]float64, n)
	time := make([]int, n)
	for i := range values {
		values[i] = v
		time[i] = i
	}
	return values, time
}

func TestBestEffort(t *testing.T) {
	t.Run("constant series returns the constant", func(t *testing.T) {
		values, time := constantSeries(600, 200)
		r := BestEffort(values, time, 300)
		if r == nil {
			t.Fatal("expected an effort record")
		}
		if math.Abs(r.Value-200) > 0.001 {
			t.Errorf("Value = %.3f, want 200", r.Value)
		}
		if r.DurationSeconds != 300 {
			t.Errorf("DurationSeconds = %d, want 300", r.DurationSeconds)
		}
	})

	t.Run("finds embedded interval", func(t *testing.T) {
		values, time := constantSeries(600, 100)
		for i := 200; i < 300; i++ {
			values[i] = 300
		}
		r := BestEffort(values, time, 60)
		if r == nil {
			t.Fatal("expected an effort record")
		}
		if math.Abs(r.Value-300) > 0.001 {
			t.Errorf("Value = %.3f, want 300 (interval only)", r.Value)
		}
		if r.StartIndex < 200 || r.EndIndex >= 300 {
			t.Errorf("window [%d,%d] not inside interval [200,300)", r.StartIndex, r.EndIndex)
		}
	})

	t.Run("excludes non-positive samples from the mean", func(t *testing.T) {
		values, time := constantSeries(120, 200)
		for i := 0; i < 120; i += 2 {
			values[i] = 0 // coasting every other second
		}
		r := BestEffort(values, time, 60)
		if r == nil {
			t.Fatal("expected an effort record")
		}
		if math.Abs(r.Value-200) > 0.001 {
			t.Errorf("Value = %.3f, want 200 (zeros excluded)", r.Value)
		}
	})

	t.Run("nil when series shorter than window", func(t *testing.T) {
		values, time := constantSeries(100, 200)
		if r := BestEffort(values, time, 300); r != nil {
			t.Errorf("expected nil for 100s series with 300s window, got %+v", r)
		}
	})

	t.Run("nil when no positive samples", func(t *testing.T) {
		values, time := constantSeries(600, 0)
		if r := BestEffort(values, time, 300); r != nil {
			t.Errorf("expected nil for all-zero series, got %+v", r)
		}
	})

	t.Run("tolerates recording gaps within span rule", func(t *testing.T) {
		// 1-second samples with a gap: timestamps jump from 100 to 130.
		var values []float64
		var time []int
		for ts := 0; ts <= 100; ts++ {
			values = append(values, 250)
			time = append(time, ts)
		}
		for ts := 130; ts <= 400; ts++ {
			values = append(values, 250)
			time = append(time, ts)
		}
		r := BestEffort(values, time, 300)
		if r == nil {
			t.Fatal("expected an effort record across the gap")
		}
		if math.Abs(r.Value-250) > 0.001 {
			t.Errorf("Value = %.3f, want 250", r.Value)
		}
	})
}

func TestBestPaceEffort(t *testing.T) {
	t.Run("constant speed", func(t *testing.T) {
		n := 700
		distance := make([]float64, n)
		time := make([]int, n)
		for i := range distance {
			distance[i] = float64(i) * 3.0
			time[i] = i
		}
		r := BestPaceEffort(distance, time, 600)
		if r == nil {
			t.Fatal("expected an effort record")
		}
		if math.Abs(r.Value-3.0) > 0.001 {
			t.Errorf("Value = %.3f m/s, want 3.0", r.Value)
		}
	})

	t.Run("finds fastest segment", func(t *testing.T) {
		n := 400
		distance := make([]float64, n)
		time := make([]int, n)
		d := 0.0
		for i := range distance {
			speed := 3.0
			if i >= 100 && i < 200 {
				speed = 5.0
			}
			d += speed
			distance[i] = d
			time[i] = i
		}
		r := BestPaceEffort(distance, time, 60)
		if r == nil {
			t.Fatal("expected an effort record")
		}
		if math.Abs(r.Value-5.0) > 0.01 {
			t.Errorf("Value = %.3f m/s, want ~5.0", r.Value)
		}
	})

	t.Run("nil when no distance covered", func(t *testing.T) {
		n := 200
		distance := make([]float64, n)
		time := make([]int, n)
		for i := range time {
			time[i] = i
		}
		if r := BestPaceEffort(distance, time, 60); r != nil {
			t.Errorf("expected nil for zero-distance series, got %+v", r)
		}
	})
}

func TestPowerCurve(t *testing.T) {
	values, time := constantSeries(1000, 220)
	curve := PowerCurve(values, time)

	// 999 seconds of data qualifies windows up to 900s (95% span rule) but
	// nothing longer.
	if curve.At(900) == nil {
		t.Error("expected a 900s record")
	}
	if curve.At(1200) != nil {
		t.Error("did not expect a 1200s record for a 999s series")
	}
	for d, r := range curve {
		if math.Abs(r.Value-220) > 0.001 {
			t.Errorf("duration %d: Value = %.3f, want 220", d, r.Value)
		}
	}
}

func TestAnalyzeStream(t *testing.T) {
	t.Run("rejects mismatched lengths", func(t *testing.T) {
		s := ActivityStream{Time: []int{0, 1, 2}, Power: []float64{100}}
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
		if _, err := AnalyzeStream(s); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("rejects non-monotonic time", func(t *testing.T) {
		s := ActivityStream{Time: []int{0, 2, 1}}
		if _, err := AnalyzeStream(s); err == nil {
			t.Fatal("expected error for non-monotonic time")
		}
	})

	t.Run("extracts heart rate aggregates", func(t *testing.T) {
		s := ActivityStream{
			Time:      []int{0, 1, 2, 3},
			Heartrate: []float64{120, 150, 180, 150},
		}
		out, err := AnalyzeStream(s)
		if err != nil {
			t.Fatalf("AnalyzeStream: %v", err)
		}
		if out.MaxHeartrate != 180 {
			t.Errorf("MaxHeartrate = %.1f, want 180", out.MaxHeartrate)
		}
		if math.Abs(out.AvgHeartrate-150) > 0.001 {
			t.Errorf("AvgHeartrate = %.1f, want 150", out.AvgHeartrate)
		}
	})
}

func TestNormalizedPower(t *testing.T) {
	t.Run("constant series equals the constant", func(t *testing.T) {
		power := make([]float64, 120)
		for i := range power {
			power[i] = 250
		}
		np := NormalizedPower(power)
		if math.Abs(np-250) > 0.01 {
			t.Errorf("NormalizedPower = %.2f, want 250", np)
		}
	})

	t.Run("short series falls back to arithmetic mean", func(t *testing.T) {
		np := NormalizedPower([]float64{100, 200})
		if math.Abs(np-150) > 0.001 {
			t.Errorf("NormalizedPower = %.2f, want 150", np)
		}
	})

	t.Run("empty series is zero", func(t *testing.T) {
		if np := NormalizedPower(nil); np != 0 {
			t.Errorf("NormalizedPower = %.2f, want 0", np)
		}
	})

	t.Run("weights surges above the mean", func(t *testing.T) {
		// Half at 100W, half at 300W: NP must exceed the 200W average.
		power := make([]float64, 600)
		for i := range power {
			if i < 300 {
				power[i] = 100
			} else {
				power[i] = 300
			}
		}
		np := NormalizedPower(power)
		if np <= 200 {
			t.Errorf("NormalizedPower = %.2f, want > 200 for surging power", np)
		}
	})
}
