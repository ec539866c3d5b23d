package hos

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/geo"
	"github.com/draymaster/eld-planner/internal/summary"
	"github.com/draymaster/eld-planner/pkg/config"
	apperrors "github.com/draymaster/eld-planner/pkg/errors"
	"github.com/draymaster/eld-planner/pkg/logger"
)

// Simulate runs the trip-wide HOS simulation and returns the resulting
// ELDSchedule, plus every break/fuel/daily/weekly recovery action it fired
// along the way (for callers that announce them, e.g. as domain events).
// today fixes the calendar date the trip's first shift opens on; callers
// inject it explicitly so runs are reproducible in tests.
func Simulate(ctx context.Context, trip domain.TripInput, fetcher domain.RouteFetcher, today time.Time, rules *config.HOSRules, log *logger.Logger) (*domain.ELDSchedule, []RecoveryEvent, error) {
	if rules == nil {
		rules = config.DefaultHOSRules()
	}
	if log == nil {
		log = logger.Default()
	}
	if err := validateTrip(trip, rules); err != nil {
		return nil, nil, err
	}

	st := newState(rules, trip.Current, trip.AccumulatedWeeklyHours, today, log)

	if !sameLocation(trip.Current, trip.Pickup) {
		st.runDrivePhase(ctx, fetcher, trip.Current, trip.Pickup)
	}
	st.runActivity(rules.PickupDropoffTime, "Pickup activity", false)

	if !sameLocation(trip.Pickup, trip.Dropoff) {
		st.runDrivePhase(ctx, fetcher, trip.Pickup, trip.Dropoff)
	}
	st.runActivity(rules.PickupDropoffTime, "Dropoff activity", true)

	st.terminate()

	schedule := summary.Build(trip.ID, st.shiftStart, st.now, st.writer.Days())
	return schedule, st.recoveryEvents, nil
}

func validateTrip(trip domain.TripInput, rules *config.HOSRules) error {
	if trip.Current.Lat == 0 && trip.Current.Lon == 0 && trip.Pickup.Lat == 0 && trip.Pickup.Lon == 0 && trip.Dropoff.Lat == 0 && trip.Dropoff.Lon == 0 {
		return apperrors.InvalidTripInputError("trip requires current, pickup, and dropoff coordinates")
	}
	if trip.AccumulatedWeeklyHours < 0 || trip.AccumulatedWeeklyHours >= rules.MaxWeekly.Hours() {
		return apperrors.InvalidTripInputError(
			fmt.Sprintf("accumulated_weekly_hours must be in [0, %.0f)", rules.MaxWeekly.Hours()))
	}
	return nil
}

// runActivity flushes the accumulator and emits the fixed-duration on-duty
// segment for a pickup or dropoff stop.
func (st *state) runActivity(duration time.Duration, note string, isDropoff bool) {
	st.acc.Flush()
	start := st.now
	end := start.Add(duration)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOnDuty,
		Start:         start,
		End:           end,
		DurationHours: duration.Hours(),
		Location:      st.truckLocation,
		Note:          note,
	})
	st.counters.RecordOnDuty(duration.Hours())
	st.now = end
	if isDropoff {
		st.destinationReached = true
	}
}

// runDrivePhase fetches the route from -> to and walks every non-negligible
// step. A route-client failure is recovered locally with a diagnostic
// segment and the phase is otherwise skipped.
func (st *state) runDrivePhase(ctx context.Context, fetcher domain.RouteFetcher, from, to domain.Location) {
	route, err := fetcher.Route(ctx, from, to)
	if err != nil {
		st.acc.Flush()
		start := st.now
		end := start.Add(5 * time.Minute)
		st.acc.Emit(domain.LogSegment{
			Status:        domain.StatusOnDuty,
			Start:         start,
			End:           end,
			DurationHours: 5.0 / 60.0,
			Location:      st.truckLocation,
			Note:          fmt.Sprintf("Error fetching route: %s", err.Error()),
		})
		st.counters.RecordOnDuty(5.0 / 60.0)
		st.now = end
		st.log.Warnw("route fetch failed, skipping drive phase", "from", from, "to", to, "error", err)
		return
	}

	for _, step := range route.Steps {
		if step.Negligible() {
			continue
		}
		st.runStep(step)
	}
}

type limitCandidate struct {
	name  string
	hours float64
}

// runStep drains one route step against the four resource counters,
// re-entering on a day boundary and returning as soon as either the step is
// fully consumed or a limit fires partway through it.
func (st *state) runStep(step domain.RouteStep) {
	for {
		stepEnd := st.now.Add(durationFromHours(step.Hours))
		if truncateToDate(stepEnd).After(st.currentDay) {
			st.dayChange()
			continue
		}

		tFuel := math.Inf(1)
		if step.Miles > 0 {
			milesLeft := st.counters.RemainingMilesBeforeFuel()
			tFuel = milesLeft / step.Miles * step.Hours
		}

		candidates := []limitCandidate{
			{"break", st.counters.RemainingBeforeBreak()},
			{"fuel", tFuel},
			{"daily", st.counters.RemainingDriveToday()},
			{"weekly", st.counters.RemainingWeekly()},
		}
		best := candidates[0]
		best.hours = positiveOrInf(best.hours)
		for _, c := range candidates[1:] {
			c.hours = positiveOrInf(c.hours)
			if c.hours < best.hours {
				best = c
			}
		}

		if best.hours < step.Hours {
			frac := best.hours / step.Hours
			partialMiles := frac * step.Miles

			driveStart := st.now
			driveEnd := st.now.Add(durationFromHours(best.hours))
			interpLoc := geo.Interpolate(step.Start, step.End, frac)

			st.acc.RecordDriving(driveStart, driveEnd, st.truckLocation, interpLoc, partialMiles)
			st.counters.RecordDriving(best.hours, partialMiles)
			st.now = driveEnd
			st.truckLocation = interpLoc
			st.acc.Flush()

			switch best.name {
			case "break":
				st.emitBreak()
			case "fuel":
				st.emitFuel()
			case "daily":
				st.dayChange()
			case "weekly":
				st.emitWeeklyRestart()
			}
			return
		}

		driveStart := st.now
		driveEnd := st.now.Add(durationFromHours(step.Hours))
		st.acc.RecordDriving(driveStart, driveEnd, st.truckLocation, step.End, step.Miles)
		st.counters.RecordDriving(step.Hours, step.Miles)
		st.now = driveEnd
		st.truckLocation = step.End
		return
	}
}

func (st *state) emitBreak() {
	st.recordRecovery("break")
	start := st.now
	end := start.Add(st.rules.BreakDuration)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOffDuty,
		Start:         start,
		End:           end,
		DurationHours: st.rules.BreakDuration.Hours(),
		Location:      st.truckLocation,
		Note:          "30-min break",
	})
	st.counters.ResetBreak()
	st.counters.RecordOnDuty(st.rules.BreakDuration.Hours())
	st.now = end
}

func (st *state) emitFuel() {
	st.recordRecovery("fuel")
	start := st.now
	end := start.Add(st.rules.FuelDuration)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOnDuty,
		Start:         start,
		End:           end,
		DurationHours: st.rules.FuelDuration.Hours(),
		Location:      st.truckLocation,
		Note:          "Fuel stop",
	})
	st.counters.ResetFuel()
	st.counters.RecordOnDuty(st.rules.FuelDuration.Hours())
	st.now = end
}

// emitWeeklyRestart applies the 34-hour restart. It deliberately does not
// emit the standard pre-trip segment that a daily rollover would: the
// restart clears the weekly/daily counters but the driver's next action is
// still to continue the current drive phase from where it left off.
func (st *state) emitWeeklyRestart() {
	st.recordRecovery("weekly")
	start := st.now
	end := start.Add(st.rules.WeeklyRestart)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOffDuty,
		Start:         start,
		End:           end,
		DurationHours: st.rules.WeeklyRestart.Hours(),
		Location:      st.truckLocation,
		Note:          "34-hr restart period",
	})
	st.counters.ResetWeekly()
	st.now = end
	st.currentDay = truncateToDate(end)
	st.dayCount++
}

// dayChange closes the day out with an overnight rest (sleeper berth unless
// the destination has already been reached) and opens the next day with the
// standard pre-trip inspection.
func (st *state) dayChange() {
	st.recordRecovery("daily")
	st.acc.Flush()

	restStatus := domain.StatusSleeper
	if st.destinationReached {
		restStatus = domain.StatusOffDuty
	}

	nextDay := st.currentDay.AddDate(0, 0, 1)
	nextShiftStart := nextDay.Add(st.rules.ShiftStartTime)

	st.acc.Emit(domain.LogSegment{
		Status:        restStatus,
		Start:         st.now,
		End:           nextShiftStart,
		DurationHours: nextShiftStart.Sub(st.now).Hours(),
		Location:      st.truckLocation,
		Note:          "Post-trip TIV/Overnight rest",
	})

	preTripEnd := nextShiftStart.Add(st.rules.PreTripInspection)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOnDuty,
		Start:         nextShiftStart,
		End:           preTripEnd,
		DurationHours: st.rules.PreTripInspection.Hours(),
		Location:      st.truckLocation,
		Note:          "Pre-trip /TIV",
	})

	st.counters.ResetDaily()
	st.currentDay = nextDay
	st.now = preTripEnd
	st.dayCount++
}

// terminate closes the trip out after the dropoff phase: the accumulator is
// flushed and, if the destination was reached, the rest of the day is
// logged off duty.
func (st *state) terminate() {
	st.acc.Flush()
	if !st.destinationReached {
		return
	}
	end := endOfDayInclusive(st.currentDay)
	if end.After(st.now) {
		st.acc.Emit(domain.LogSegment{
			Status:        domain.StatusOffDuty,
			Start:         st.now,
			End:           end,
			DurationHours: end.Sub(st.now).Hours(),
			Location:      st.truckLocation,
			Note:          "Post-trip TIV-5mins/Off duty",
		})
		st.now = end
	}
}

func durationFromHours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func positiveOrInf(v float64) float64 {
	if v <= 0 {
		return math.Inf(1)
	}
	return v
}
