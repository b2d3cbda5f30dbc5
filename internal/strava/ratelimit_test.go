package strava

import (
	"net/http"
	"testing"
)

func TestUpdateFromHeaders(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Limit", "100,1000")
	h.Set("X-RateLimit-Usage", "34,512")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != 66 {
		t.Errorf("short remaining = %d, want 66", short)
	}
	if daily != 488 {
		t.Errorf("daily remaining = %d, want 488", daily)
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in          string
		short, daily int
		ok          bool
	}{
		{"100,1000", 100, 1000, true},
		{"34, 512", 34, 512, true},
		{"", 0, 0, false},
		{"100", 0, 0, false},
		{"a,b", 0, 0, false},
	}
	for _, tt := range tests {
		short, daily, ok := parsePair(tt.in)
		if short != tt.short || daily != tt.daily || ok != tt.ok {
			t.Errorf("parsePair(%q) = %d, %d, %v; want %d, %d, %v",
				tt.in, short, daily, ok, tt.short, tt.daily, tt.ok)
		}
	}
}
