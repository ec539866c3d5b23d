package summary_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/summary"
)

func TestBuild_FoldsDrivingAndOnDutyIntoOnDutyHours(t *testing.T) {
	start := time.Date(2026, 1, 5, 6, 30, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)

	days := []domain.DailyLog{
		{
			Date: "2026-01-05",
			Segments: []domain.LogSegment{
				{Status: domain.StatusOnDuty, DurationHours: 0.5, Note: "Pre-trip /TIV"},
				{Status: domain.StatusDriving, DurationHours: 4, Miles: 200},
				{Status: domain.StatusOffDuty, DurationHours: 0.5, Note: "30-min break"},
				{Status: domain.StatusDriving, DurationHours: 3, Miles: 150},
			},
		},
	}

	schedule := summary.Build("trip-1", start, end, days)

	require.Len(t, schedule.DailySummaries, 1)
	day := schedule.DailySummaries[0]

	assert.InDelta(t, 7, day.DriveHours, 0.0001)
	assert.InDelta(t, 7.5, day.OnDutyHours, 0.0001)
	assert.InDelta(t, 350, day.Miles, 0.0001)

	assert.InDelta(t, 7, schedule.TotalDriveHours, 0.0001)
	assert.InDelta(t, 7.5, schedule.TotalOnDutyHours, 0.0001)
	assert.InDelta(t, 350, schedule.TotalMiles, 0.0001)
	assert.Equal(t, 1, schedule.TotalDays)
}

func TestBuild_RoundsHalfAwayFromZero(t *testing.T) {
	days := []domain.DailyLog{
		{
			Date: "2026-01-05",
			Segments: []domain.LogSegment{
				{Status: domain.StatusDriving, DurationHours: 1.125, Miles: 1.125},
			},
		},
	}

	schedule := summary.Build("trip-2", time.Time{}, time.Time{}, days)

	assert.Equal(t, 1.13, schedule.DailySummaries[0].DriveHours)
	assert.Equal(t, 1.13, schedule.DailySummaries[0].Miles)
}

func TestBuild_MultipleDaysSumIntoTripTotals(t *testing.T) {
	days := []domain.DailyLog{
		{Date: "2026-01-05", Segments: []domain.LogSegment{{Status: domain.StatusDriving, DurationHours: 5, Miles: 250}}},
		{Date: "2026-01-06", Segments: []domain.LogSegment{{Status: domain.StatusDriving, DurationHours: 6, Miles: 300}}},
	}

	schedule := summary.Build("trip-3", time.Time{}, time.Time{}, days)

	assert.Equal(t, 2, schedule.TotalDays)
	assert.InDelta(t, 11, schedule.TotalDriveHours, 0.0001)
	assert.InDelta(t, 550, schedule.TotalMiles, 0.0001)
}
