package service

import (
	"time"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/store"
	"trainload/internal/strava"
)

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity) store.Activity {
	activity := store.Activity{
		ID:           a.ID,
		AthleteID:    a.Athlete.ID,
		Name:         a.Name,
		Type:         a.Type,
		StartDate:    a.StartDate,
		Distance:     a.Distance,
		MovingTime:   a.MovingTime,
		ElapsedTime:  a.ElapsedTime,
		DeviceWatts:  a.DeviceWatts,
		HasHeartrate: a.HasHeartrate,
	}

	if a.TotalElevationGain > 0 {
		activity.TotalElevationGain = &a.TotalElevationGain
	}
	if a.AverageSpeed > 0 {
		activity.AverageSpeed = &a.AverageSpeed
	}
	if a.AverageHeartrate > 0 {
		activity.AverageHeartrate = &a.AverageHeartrate
	}
	if a.MaxHeartrate > 0 {
		activity.MaxHeartrate = &a.MaxHeartrate
	}
	if a.AverageWatts > 0 {
		activity.AverageWatts = &a.AverageWatts
	}

	return activity
}

// convertStreams converts Strava API streams to store stream points
func convertStreams(activityID int64, s *strava.Streams) []store.StreamPoint {
	if s == nil || s.Time == nil {
		return nil
	}

	length := len(s.Time.Data)
	points := make([]store.StreamPoint, length)

	at := func(sd *strava.StreamData[float64], i int) *float64 {
		if sd == nil || i >= len(sd.Data) {
			return nil
		}
		v := sd.Data[i]
		return &v
	}

	for i := 0; i < length; i++ {
		points[i] = store.StreamPoint{
			ActivityID:     activityID,
			TimeOffset:     s.Time.Data[i],
			Heartrate:      at(s.Heartrate, i),
			Watts:          at(s.Watts, i),
			VelocitySmooth: at(s.VelocitySmooth, i),
			Distance:       at(s.Distance, i),
			Altitude:       at(s.Altitude, i),
		}
	}

	return points
}

// toAnalysisStream rebuilds the parallel series from stored stream points.
// Series where every sample is nil are left empty.
func toAnalysisStream(points []store.StreamPoint) analysis.ActivityStream {
	n := len(points)
	if n == 0 {
		return analysis.ActivityStream{}
	}

	s := analysis.ActivityStream{Time: make([]int, n)}
	var hasHR, hasWatts, hasVel, hasDist, hasAlt bool
	for _, p := range points {
		hasHR = hasHR || p.Heartrate != nil
		hasWatts = hasWatts || p.Watts != nil
		hasVel = hasVel || p.VelocitySmooth != nil
		hasDist = hasDist || p.Distance != nil
		hasAlt = hasAlt || p.Altitude != nil
	}
	if hasHR {
		s.Heartrate = make([]float64, n)
	}
	if hasWatts {
		s.Power = make([]float64, n)
	}
	if hasVel {
		s.Velocity = make([]float64, n)
	}
	if hasDist {
		s.Distance = make([]float64, n)
	}
	if hasAlt {
		s.Altitude = make([]float64, n)
	}

	for i, p := range points {
		s.Time[i] = p.TimeOffset
		if hasHR && p.Heartrate != nil {
			s.Heartrate[i] = *p.Heartrate
		}
		if hasWatts && p.Watts != nil {
			s.Power[i] = *p.Watts
		}
		if hasVel && p.VelocitySmooth != nil {
			s.Velocity[i] = *p.VelocitySmooth
		}
		if hasDist && p.Distance != nil {
			s.Distance[i] = *p.Distance
		}
		if hasAlt && p.Altitude != nil {
			s.Altitude[i] = *p.Altitude
		}
	}
	return s
}

// effectiveThresholds merges stored calibration results with manual config
// overrides. A non-zero config value always wins over an estimate.
func effectiveThresholds(athlete config.AthleteConfig, stored store.Thresholds) analysis.Thresholds {
	t := analysis.Thresholds{
		FTPWatts:  stored.FTPWatts,
		FTHPMps:   stored.FTHPMps,
		MaxHR:     stored.MaxHR,
		RestingHR: stored.RestingHR,
		UpdatedAt: stored.UpdatedAt,
	}
	if athlete.FTPWatts > 0 {
		v := athlete.FTPWatts
		t.FTPWatts = &v
	}
	if athlete.FTHPMps > 0 {
		v := athlete.FTHPMps
		t.FTHPMps = &v
	}
	if athlete.MaxHR > 0 {
		v := athlete.MaxHR
		t.MaxHR = &v
	}
	if athlete.RestingHR > 0 {
		v := athlete.RestingHR
		t.RestingHR = &v
	}
	return t
}

// toWellnessSample converts a stored wellness day for analysis.
func toWellnessSample(w store.WellnessDay) analysis.WellnessSample {
	date, _ := time.Parse("2006-01-02", w.Date)
	return analysis.WellnessSample{
		Date:           date,
		RestingHR:      w.RestingHR,
		HRV:            w.HRV,
		SleepScore:     w.SleepScore,
		ReadinessScore: w.Readiness,
	}
}
