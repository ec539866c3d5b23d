// Package counters tracks the four running resource counters the HOS state
// machine compares against its limits on every routed step: drive time since
// the last break, drive and on-duty time since the last daily reset, and
// drive time since the last 34-hour restart.
package counters

import "github.com/draymaster/eld-planner/pkg/config"

// Counters holds the resource counters the simulator drains as it walks a
// route and resets when a recovery event (break, fuel stop, daily rollover,
// weekly restart) fires.
type Counters struct {
	rules *config.HOSRules

	driveSinceBreak float64 // hours, resets on break or a weekly restart (not at daily rollover)
	driveToday      float64 // hours, resets at daily rollover
	onDutyToday     float64 // hours (driving + on-duty), resets at daily rollover
	driveThisWeek   float64 // hours, resets on 34-hour restart
	milesSinceFuel  float64 // miles, resets on fuel stop
}

// New creates a Counters seeded with the trip's carried-over weekly drive
// hours.
func New(rules *config.HOSRules, startingWeeklyHours float64) *Counters {
	return &Counters{
		rules:         rules,
		driveThisWeek: startingWeeklyHours,
	}
}

// RecordDriving advances every counter by a chunk of driving time and its
// associated distance. Callers must never pass a chunk that would push any
// counter past its limit; the state machine splits drive segments at the
// nearest limit before calling this.
func (c *Counters) RecordDriving(hours, miles float64) {
	c.driveSinceBreak += hours
	c.driveToday += hours
	c.onDutyToday += hours
	c.driveThisWeek += hours
	c.milesSinceFuel += miles
}

// RecordOnDuty advances the daily on-duty counter for non-driving on-duty
// work (pickup, dropoff, pre-trip inspection, fuel/break overhead,
// diagnostic segments). It does not count toward the weekly drive limit or
// the since-break counter.
func (c *Counters) RecordOnDuty(hours float64) {
	c.onDutyToday += hours
}

// RemainingBeforeBreak returns how many more hours may be driven before the
// 8-hour break threshold is hit.
func (c *Counters) RemainingBeforeBreak() float64 {
	return c.rules.MaxDriveBeforeBreak.Hours() - c.driveSinceBreak
}

// RemainingDriveToday returns how many more hours may be driven today.
func (c *Counters) RemainingDriveToday() float64 {
	return c.rules.MaxDrivePerDay.Hours() - c.driveToday
}

// RemainingOnDutyToday returns how many more on-duty hours remain today.
func (c *Counters) RemainingOnDutyToday() float64 {
	return c.rules.MaxOnDutyPerDay.Hours() - c.onDutyToday
}

// RemainingMilesBeforeFuel returns how many more miles may be driven before
// a fuel stop is required.
func (c *Counters) RemainingMilesBeforeFuel() float64 {
	return c.rules.FuelStopDistanceMi - c.milesSinceFuel
}

// RemainingWeekly returns how many more drive hours remain in the rolling
// 70-hour weekly window.
func (c *Counters) RemainingWeekly() float64 {
	return c.rules.MaxWeekly.Hours() - c.driveThisWeek
}

// ResetBreak clears the drive-since-break counter after a 30-minute break.
func (c *Counters) ResetBreak() {
	c.driveSinceBreak = 0
}

// ResetFuel clears the miles-since-fuel counter after a fuel stop.
func (c *Counters) ResetFuel() {
	c.milesSinceFuel = 0
}

// ResetDaily clears the per-day counters at a daily rollover.
func (c *Counters) ResetDaily() {
	c.driveToday = 0
	c.onDutyToday = 0
}

// ResetWeekly clears the weekly drive counter, the daily counters, and the
// since-break counter after a 34-hour restart.
func (c *Counters) ResetWeekly() {
	c.driveThisWeek = 0
	c.driveToday = 0
	c.onDutyToday = 0
	c.driveSinceBreak = 0
}

// WeeklyHours reports the current rolling weekly drive total.
func (c *Counters) WeeklyHours() float64 {
	return c.driveThisWeek
}
