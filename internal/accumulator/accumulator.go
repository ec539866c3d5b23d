// Package accumulator coalesces consecutive driving chunks into a single
// log segment and hands finished segments to the log writer. It holds at
// most one open segment at a time.
package accumulator

import (
	"time"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/logwriter"
)

// Accumulator is the Segment Accumulator: it extends an open driving
// segment across consecutive route steps and flushes it to the Log Writer
// the moment the simulator needs to insert anything else.
type Accumulator struct {
	writer *logwriter.Writer
	open   *domain.LogSegment
}

// New creates an Accumulator writing through to writer.
func New(writer *logwriter.Writer) *Accumulator {
	return &Accumulator{writer: writer}
}

// RecordDriving extends the open segment if it is already an uninterrupted
// DRIVING run ending at start; otherwise it flushes whatever is open and
// begins a new one.
func (a *Accumulator) RecordDriving(start, end time.Time, startLoc, endLoc domain.Location, miles float64) {
	if a.open != nil && a.open.Status == domain.StatusDriving && a.open.End.Equal(start) {
		a.open.End = end
		a.open.DurationHours = a.open.End.Sub(a.open.Start).Hours()
		a.open.Location = endLoc
		a.open.Miles += miles
		return
	}

	a.Flush()
	a.open = &domain.LogSegment{
		Status:        domain.StatusDriving,
		Start:         start,
		End:           end,
		DurationHours: end.Sub(start).Hours(),
		Location:      startLoc,
		Miles:         miles,
	}
}

// Flush closes whatever segment is open, handing it to the Log Writer, and
// clears the open slot. It is a no-op if nothing is open.
func (a *Accumulator) Flush() {
	if a.open == nil {
		return
	}
	a.writer.Append(*a.open)
	a.open = nil
}

// Emit flushes the open segment (per the "flush before any inserted event"
// invariant) and then writes seg directly; seg is never coalesced.
func (a *Accumulator) Emit(seg domain.LogSegment) {
	a.Flush()
	a.writer.Append(seg)
}
