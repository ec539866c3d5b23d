// Package logwriter buckets the segments the simulator produces into
// per-calendar-day logs, splitting any segment that straddles midnight so
// that every DailyLog's segments fall entirely within one date.
package logwriter

import (
	"time"

	"github.com/draymaster/eld-planner/internal/domain"
)

const dateLayout = "2006-01-02"

// Writer accumulates LogSegments into DailyLogs in chronological order.
type Writer struct {
	days    []*domain.DailyLog
	byDate  map[string]*domain.DailyLog
}

// New creates an empty Writer.
func New() *Writer {
	return &Writer{byDate: make(map[string]*domain.DailyLog)}
}

// Append records seg, splitting it at every midnight it crosses. A segment
// spanning N calendar days becomes N segments, each pro-rated by the
// fraction of the original duration (and, for driving segments, the
// fraction of the original miles) it covers; every piece after the first
// carries the "(continued from previous day)" note.
func (w *Writer) Append(seg domain.LogSegment) {
	remaining := seg
	first := true

	for {
		dayEnd := endOfDay(remaining.Start)
		if !remaining.End.After(dayEnd) {
			w.appendWhole(remaining, first)
			return
		}

		head := remaining
		head.End = dayEnd
		head.DurationHours = hoursBetween(head.Start, head.End)
		if seg.DurationHours > 0 {
			frac := head.DurationHours / seg.DurationHours
			head.Miles = seg.Miles * frac
		}
		w.appendWhole(head, first)

		remaining.Start = dayEnd
		remaining.DurationHours = hoursBetween(remaining.Start, remaining.End)
		if seg.DurationHours > 0 {
			frac := remaining.DurationHours / seg.DurationHours
			remaining.Miles = seg.Miles * frac
		}
		first = false
	}
}

func (w *Writer) appendWhole(seg domain.LogSegment, first bool) {
	if !first {
		if seg.Note != "" {
			seg.Note = seg.Note + " (continued from previous day)"
		} else {
			seg.Note = "(continued from previous day)"
		}
	}

	key := seg.Start.Format(dateLayout)
	day, ok := w.byDate[key]
	if !ok {
		day = &domain.DailyLog{Date: key}
		w.byDate[key] = day
		w.days = append(w.days, day)
	}
	day.Segments = append(day.Segments, seg)
}

// Days returns the accumulated logs in chronological order.
func (w *Writer) Days() []domain.DailyLog {
	out := make([]domain.DailyLog, len(w.days))
	for i, d := range w.days {
		out[i] = *d
	}
	return out
}

// endOfDay returns the exclusive upper bound of t's calendar day: the literal
// 00:00:00 instant of the next day. A head segment split at this boundary
// therefore carries an End one instant past its own Start's date; the day
// bucketing in appendWhole keys on Start, not End, so the split piece still
// files under the correct day.
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func hoursBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours()
}
