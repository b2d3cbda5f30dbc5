package store

import (
	"errors"
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func testActivity(id int64, start time.Time) Activity {
	return Activity{
		ID:           id,
		AthleteID:    42,
		Name:         "Morning Run",
		Type:         "Run",
		StartDate:    start,
		Distance:     10000,
		MovingTime:   3000,
		ElapsedTime:  3100,
		HasHeartrate: true,
	}
}

func TestAuth(t *testing.T) {
	db := NewTestDB(t)

	if _, err := db.GetAuth(); !errors.Is(err, ErrNoAuth) {
		t.Fatalf("expected ErrNoAuth, got %v", err)
	}

	a := Auth{AthleteID: 42, AccessToken: "at", RefreshToken: "rt", ExpiresAt: 1000}
	if err := db.SaveAuth(a); err != nil {
		t.Fatalf("SaveAuth: %v", err)
	}

	got, err := db.GetAuth()
	if err != nil {
		t.Fatalf("GetAuth: %v", err)
	}
	if got != a {
		t.Errorf("GetAuth = %+v, want %+v", got, a)
	}

	// Saving again replaces the singleton.
	a.AccessToken = "at2"
	if err := db.SaveAuth(a); err != nil {
		t.Fatalf("SaveAuth replace: %v", err)
	}
	got, _ = db.GetAuth()
	if got.AccessToken != "at2" {
		t.Errorf("AccessToken = %q, want at2", got.AccessToken)
	}
}

func TestActivities(t *testing.T) {
	db := NewTestDB(t)
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	a := testActivity(1, start)
	if err := db.UpsertActivity(a); err != nil {
		t.Fatalf("UpsertActivity: %v", err)
	}

	got, err := db.GetActivity(1)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if got.Name != "Morning Run" || !got.StartDate.Equal(start) {
		t.Errorf("GetActivity = %+v", got)
	}

	if _, err := db.GetActivity(99); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("expected ErrActivityNotFound, got %v", err)
	}

	t.Run("re-upsert preserves computed score", func(t *testing.T) {
		if err := db.SaveScore(1, 85.5, "rTSS"); err != nil {
			t.Fatalf("SaveScore: %v", err)
		}
		a.Name = "Renamed Run"
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("UpsertActivity: %v", err)
		}
		got, _ := db.GetActivity(1)
		if got.Name != "Renamed Run" {
			t.Errorf("Name = %q, want Renamed Run", got.Name)
		}
		if got.UTLScore == nil || *got.UTLScore != 85.5 || got.UTLMethod == nil || *got.UTLMethod != "rTSS" {
			t.Errorf("score lost on re-upsert: %+v", got)
		}
	})

	t.Run("needing scores excludes scored activities", func(t *testing.T) {
		if err := db.UpsertActivity(testActivity(2, start.AddDate(0, 0, 1))); err != nil {
			t.Fatal(err)
		}
		pending, err := db.GetActivitiesNeedingScores()
		if err != nil {
			t.Fatalf("GetActivitiesNeedingScores: %v", err)
		}
		if len(pending) != 1 || pending[0].ID != 2 {
			t.Errorf("pending = %+v, want just activity 2", pending)
		}
	})

	t.Run("clear scores makes everything pending", func(t *testing.T) {
		if err := db.ClearScores(); err != nil {
			t.Fatalf("ClearScores: %v", err)
		}
		pending, _ := db.GetActivitiesNeedingScores()
		if len(pending) != 2 {
			t.Errorf("pending = %d activities, want 2", len(pending))
		}
	})

	t.Run("score for unknown activity", func(t *testing.T) {
		if err := db.SaveScore(99, 10, "TSS"); !errors.Is(err, ErrActivityNotFound) {
			t.Errorf("expected ErrActivityNotFound, got %v", err)
		}
	})
}

func TestStreams(t *testing.T) {
	db := NewTestDB(t)
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	if err := db.UpsertActivity(testActivity(1, start)); err != nil {
		t.Fatal(err)
	}

	points := []StreamPoint{
		{TimeOffset: 0, Heartrate: fp(120), Distance: fp(0)},
		{TimeOffset: 1, Heartrate: fp(125), Distance: fp(3.1), Watts: fp(210)},
		{TimeOffset: 2, Heartrate: fp(130), Distance: fp(6.3)},
	}
	if err := db.SaveStreams(1, points); err != nil {
		t.Fatalf("SaveStreams: %v", err)
	}

	got, err := db.GetStreams(1)
	if err != nil {
		t.Fatalf("GetStreams: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d points, want 3", len(got))
	}
	if got[1].Watts == nil || *got[1].Watts != 210 {
		t.Errorf("point 1 watts = %v, want 210", got[1].Watts)
	}
	if got[2].Watts != nil {
		t.Errorf("point 2 watts = %v, want nil", got[2].Watts)
	}

	a, _ := db.GetActivity(1)
	if !a.StreamsSynced {
		t.Error("SaveStreams should mark streams_synced")
	}

	ok, err := db.HasStreams(1)
	if err != nil || !ok {
		t.Errorf("HasStreams = %v, %v; want true", ok, err)
	}
	ok, _ = db.HasStreams(2)
	if ok {
		t.Error("HasStreams(2) = true, want false")
	}

	// Saving again replaces rather than appends.
	if err := db.SaveStreams(1, points[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetStreams(1)
	if len(got) != 1 {
		t.Errorf("got %d points after replace, want 1", len(got))
	}
}

func TestThresholds(t *testing.T) {
	db := NewTestDB(t)

	if _, err := db.GetThresholds(); !errors.Is(err, ErrNoThresholds) {
		t.Fatalf("expected ErrNoThresholds, got %v", err)
	}

	method := "20min_test"
	th := Thresholds{FTPWatts: fp(250), FTPMethod: &method, MaxHR: fp(188)}
	if err := db.SaveThresholds(th); err != nil {
		t.Fatalf("SaveThresholds: %v", err)
	}

	got, err := db.GetThresholds()
	if err != nil {
		t.Fatalf("GetThresholds: %v", err)
	}
	if got.FTPWatts == nil || *got.FTPWatts != 250 {
		t.Errorf("FTPWatts = %v, want 250", got.FTPWatts)
	}
	if got.FTHPMps != nil {
		t.Errorf("FTHPMps = %v, want nil", got.FTHPMps)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestWellness(t *testing.T) {
	db := NewTestDB(t)

	days := []WellnessDay{
		{Date: "2025-05-01", RestingHR: fp(48), HRV: fp(55)},
		{Date: "2025-05-02", RestingHR: fp(50), SleepScore: fp(80)},
		{Date: "2025-05-03", Readiness: fp(70)},
	}
	for _, d := range days {
		if err := db.UpsertWellness(d); err != nil {
			t.Fatalf("UpsertWellness: %v", err)
		}
	}

	got, err := db.GetWellness("2025-05-02")
	if err != nil {
		t.Fatalf("GetWellness: %v", err)
	}
	if got == nil || got.RestingHR == nil || *got.RestingHR != 50 {
		t.Errorf("GetWellness = %+v", got)
	}

	missing, err := db.GetWellness("2025-06-01")
	if err != nil || missing != nil {
		t.Errorf("GetWellness missing day = %+v, %v; want nil, nil", missing, err)
	}

	rng, err := db.GetWellnessRange("2025-05-01", "2025-05-02")
	if err != nil {
		t.Fatalf("GetWellnessRange: %v", err)
	}
	if len(rng) != 2 || rng[0].Date != "2025-05-01" {
		t.Errorf("GetWellnessRange = %+v", rng)
	}
}

func TestSyncState(t *testing.T) {
	db := NewTestDB(t)

	v, err := db.GetSyncState(SyncKeyLastActivitySync)
	if err != nil || v != "" {
		t.Fatalf("GetSyncState empty = %q, %v", v, err)
	}

	if err := db.SetSyncState(SyncKeyLastActivitySync, "12345"); err != nil {
		t.Fatalf("SetSyncState: %v", err)
	}
	if err := db.SetSyncState(SyncKeyLastActivitySync, "67890"); err != nil {
		t.Fatalf("SetSyncState update: %v", err)
	}

	v, _ = db.GetSyncState(SyncKeyLastActivitySync)
	if v != "67890" {
		t.Errorf("GetSyncState = %q, want 67890", v)
	}
}
