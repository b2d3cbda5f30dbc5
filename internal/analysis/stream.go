package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates malformed stream data that cannot be analyzed.
// Degenerate-but-valid inputs (too short, all zeros) never produce it; they
// yield empty results instead.
var ErrInvalidInput = errors.New("invalid stream data")

// ActivityStream holds the parallel per-sample series recorded during an
// activity. Time is the only required series; every other slice is either
// empty or the same length as Time.
type ActivityStream struct {
	Time      []int     // seconds from activity start, non-decreasing
	Power     []float64 // watts
	Velocity  []float64 // meters per second
	Heartrate []float64 // beats per minute
	Distance  []float64 // cumulative meters
	Altitude  []float64 // meters
}

// Validate checks the structural invariants of the stream: monotonic
// non-decreasing time and matching series lengths. It returns an error
// wrapping ErrInvalidInput on the first violation found.
func (s ActivityStream) Validate() error {
	for i := 1; i < len(s.Time); i++ {
		if s.Time[i] < s.Time[i-1] {
			return fmt.Errorf("%w: time not monotonic at index %d", ErrInvalidInput, i)
		}
	}

	series := []struct {
		name string
		n    int
	}{
		{"power", len(s.Power)},
		{"velocity", len(s.Velocity)},
		{"heartrate", len(s.Heartrate)},
		{"distance", len(s.Distance)},
		{"altitude", len(s.Altitude)},
	}
	for _, sr := range series {
		if sr.n != 0 && sr.n != len(s.Time) {
			return fmt.Errorf("%w: %s has %d samples, time has %d", ErrInvalidInput, sr.name, sr.n, len(s.Time))
		}
	}
	return nil
}

// HasPower reports whether the stream carries a usable power series.
func (s ActivityStream) HasPower() bool { return len(s.Power) == len(s.Time) && len(s.Power) > 0 }

// HasHeartrate reports whether the stream carries a usable heart-rate series.
func (s ActivityStream) HasHeartrate() bool {
	return len(s.Heartrate) == len(s.Time) && len(s.Heartrate) > 0
}

// HasDistance reports whether the stream carries a usable distance series.
func (s ActivityStream) HasDistance() bool {
	return len(s.Distance) == len(s.Time) && len(s.Distance) > 0
}
