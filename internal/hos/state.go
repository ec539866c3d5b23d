// Package hos implements the HOS-constrained trip simulator: the
// deterministic state machine that walks a routed path, drains it against
// four simultaneous resource counters, and inserts rest/fuel/overnight/
// restart events whenever one of them would be exceeded.
package hos

import (
	"time"

	"github.com/draymaster/eld-planner/internal/accumulator"
	"github.com/draymaster/eld-planner/internal/counters"
	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/logwriter"
	"github.com/draymaster/eld-planner/pkg/config"
	"github.com/draymaster/eld-planner/pkg/logger"
)

// RecoveryEvent records one firing of a break/fuel/daily/weekly recovery
// action during a simulation run, so the service layer can announce it
// without the pure simulator taking a dependency on Kafka.
type RecoveryEvent struct {
	Kind string // "break", "fuel", "daily", "weekly"
	At   time.Time
}

// state is the SimulatorState: the single mutable value threaded through
// one trip's run. It is owned exclusively by the goroutine executing
// Simulate and is never shared.
type state struct {
	rules *config.HOSRules
	log   *logger.Logger

	now                 time.Time
	truckLocation       domain.Location
	currentDay          time.Time // truncated to midnight, local
	dayCount            int
	destinationReached  bool
	shiftStart          time.Time

	counters       *counters.Counters
	acc            *accumulator.Accumulator
	writer         *logwriter.Writer
	recoveryEvents []RecoveryEvent
}

// recordRecovery appends a fired recovery action at the simulator's current
// virtual clock.
func (st *state) recordRecovery(kind string) {
	st.recoveryEvents = append(st.recoveryEvents, RecoveryEvent{Kind: kind, At: st.now})
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// newState builds the SimulatorState and emits the two fixed segments every
// trip opens with: the off-duty period before shift start and the pre-trip
// inspection.
func newState(rules *config.HOSRules, start domain.Location, weeklyHours float64, today time.Time, log *logger.Logger) *state {
	day := truncateToDate(today)
	writer := logwriter.New()
	acc := accumulator.New(writer)

	st := &state{
		rules:         rules,
		log:           log,
		currentDay:    day,
		truckLocation: start,
		counters:      counters.New(rules, weeklyHours),
		acc:           acc,
		writer:        writer,
	}

	shiftStart := day.Add(rules.ShiftStartTime)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOffDuty,
		Start:         day,
		End:           shiftStart,
		DurationHours: shiftStart.Sub(day).Hours(),
		Location:      start,
		Note:          "Off duty - Before shift start",
	})

	preTripEnd := shiftStart.Add(rules.PreTripInspection)
	st.acc.Emit(domain.LogSegment{
		Status:        domain.StatusOnDuty,
		Start:         shiftStart,
		End:           preTripEnd,
		DurationHours: rules.PreTripInspection.Hours(),
		Location:      start,
		Note:          "Pre-trip /TIV",
	})

	st.shiftStart = shiftStart
	st.now = preTripEnd
	return st
}

func endOfDayInclusive(day time.Time) time.Time {
	return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

func sameLocation(a, b domain.Location) bool {
	return a.Lat == b.Lat && a.Lon == b.Lon
}
