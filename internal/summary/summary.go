// Package summary folds per-day logs into the totals returned by Simulate.
// Rounding to two decimal places happens here and only here: the state
// machine itself works in full-precision float64 hours and miles so that
// rounding error never accumulates across a multi-day trip.
package summary

import (
	"math"
	"time"

	"github.com/draymaster/eld-planner/internal/domain"
)

// Build turns the written daily logs into the DailySummary slice and the
// trip-wide totals of an ELDSchedule. Per day, drive_hours sums DRIVING
// durations; on_duty_hours sums DRIVING and ON_DUTY durations together;
// miles sums DRIVING distance. Trip totals are the sum of the per-day
// values.
func Build(tripID string, start, end time.Time, days []domain.DailyLog) *domain.ELDSchedule {
	summaries := make([]domain.DailySummary, 0, len(days))

	var driveHours, onDutyHours, totalMiles float64
	for _, day := range days {
		s := domain.DailySummary{Date: day.Date, Logs: day.Segments}
		for _, seg := range day.Segments {
			switch seg.Status {
			case domain.StatusDriving:
				s.DriveHours += seg.DurationHours
				s.OnDutyHours += seg.DurationHours
				s.Miles += seg.Miles
			case domain.StatusOnDuty:
				s.OnDutyHours += seg.DurationHours
			}
		}
		driveHours += s.DriveHours
		onDutyHours += s.OnDutyHours
		totalMiles += s.Miles

		s.DriveHours = round2(s.DriveHours)
		s.OnDutyHours = round2(s.OnDutyHours)
		s.Miles = round2(s.Miles)
		summaries = append(summaries, s)
	}

	return &domain.ELDSchedule{
		TripID:           tripID,
		StartTime:        start,
		EndTime:          end,
		TotalMiles:       round2(totalMiles),
		TotalDriveHours:  round2(driveHours),
		TotalOnDutyHours: round2(onDutyHours),
		TotalDays:        len(days),
		DailySummaries:   summaries,
	}
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	if v < 0 {
		return -round2(-v)
	}
	return math.Floor(v*100+0.5) / 100
}
