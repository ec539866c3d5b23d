package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// wireTimeLayout is the timestamp format used on the wire: local time,
// no timezone suffix, per the service's response contract.
const wireTimeLayout = "2006-01-02T15:04:05"

// RouteFetcher abstracts the upstream routing service so the simulator
// never depends on the concrete HTTP client or its caching decorator.
type RouteFetcher interface {
	Route(ctx context.Context, from, to Location) (*Route, error)
}

// Location is a geographic point with an advisory name.
type Location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

// NamedAt synthesizes the standard "Location at {lat}, {lon}" label used for
// any point the simulator interpolates rather than one supplied by a caller.
func NamedAt(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon, Name: fmt.Sprintf("Location at %.4f, %.4f", lat, lon)}
}

// RouteStep is one maneuver of a routed path. Invariant: step i+1's Start
// equals step i's End; the final step's End equals the route destination.
type RouteStep struct {
	Start    Location `json:"start"`
	End      Location `json:"end"`
	Miles    float64  `json:"miles"`
	Hours    float64  `json:"hours"`
	RoadName string   `json:"road_name,omitempty"`
}

// Negligible reports whether this step is too short to affect the
// simulation and should be skipped.
func (s RouteStep) Negligible() bool {
	return s.Miles < 0.1 || s.Hours < 0.01
}

// Route is the canonical, unit-normalized output of the Route Client.
type Route struct {
	TotalMiles float64     `json:"total_miles"`
	TotalHours float64     `json:"total_hours"`
	Steps      []RouteStep `json:"steps"`
}

// TripInput is the read-only request to plan a trip.
type TripInput struct {
	ID                     string   `json:"id"`
	Current                Location `json:"current"`
	Pickup                 Location `json:"pickup"`
	Dropoff                Location `json:"dropoff"`
	AccumulatedWeeklyHours float64  `json:"accumulated_weekly_hours"`
}

// DutyStatus is one of the four ELD duty statuses.
type DutyStatus string

const (
	StatusDriving DutyStatus = "DRIVING"
	StatusOnDuty  DutyStatus = "ON_DUTY"
	StatusOffDuty DutyStatus = "OFF_DUTY"
	StatusSleeper DutyStatus = "SLEEPER"
)

// Code returns the literal ELD status code used on the wire (D/ON/OFF/SB).
func (s DutyStatus) Code() string {
	switch s {
	case StatusDriving:
		return "D"
	case StatusOnDuty:
		return "ON"
	case StatusOffDuty:
		return "OFF"
	case StatusSleeper:
		return "SB"
	default:
		return string(s)
	}
}

// ParseDutyStatusCode inverts Code, recovering the DutyStatus a wire code
// (D/ON/OFF/SB) denotes.
func ParseDutyStatusCode(code string) DutyStatus {
	switch code {
	case "D":
		return StatusDriving
	case "ON":
		return StatusOnDuty
	case "OFF":
		return StatusOffDuty
	case "SB":
		return StatusSleeper
	default:
		return DutyStatus(code)
	}
}

// LogSegment is one entry in a day's duty log.
//
// Invariants: DurationHours == (End-Start) in hours; Miles == 0 whenever
// Status != StatusDriving; each segment lies within the calendar date of its
// Start (segments spanning midnight are split by the Log Writer before they
// ever reach a DailyLog; the piece before the split ends at exactly 00:00:00
// of the next day).
type LogSegment struct {
	Status        DutyStatus
	Start         time.Time
	End           time.Time
	DurationHours float64
	Location      Location
	Miles         float64
	Note          string
}

// logSegmentWire is the on-the-wire shape of a LogSegment: status as its
// literal code, timestamps with no timezone suffix, Note renamed to the
// plural "notes".
type logSegmentWire struct {
	Status        string   `json:"status"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	DurationHours float64  `json:"duration"`
	Location      Location `json:"location"`
	Miles         float64  `json:"miles"`
	Notes         string   `json:"notes"`
}

// MarshalJSON renders the spec wire contract: status as its literal code
// (D/ON/OFF/SB) and timestamps as "2006-01-02T15:04:05" with no timezone
// suffix.
func (s LogSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(logSegmentWire{
		Status:        s.Status.Code(),
		StartTime:     s.Start.Format(wireTimeLayout),
		EndTime:       s.End.Format(wireTimeLayout),
		DurationHours: s.DurationHours,
		Location:      s.Location,
		Miles:         s.Miles,
		Notes:         s.Note,
	})
}

// UnmarshalJSON inverts MarshalJSON, so a schedule round-trips through
// storage without losing the duty-status code or timestamp precision.
func (s *LogSegment) UnmarshalJSON(data []byte) error {
	var wire logSegmentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	start, err := time.Parse(wireTimeLayout, wire.StartTime)
	if err != nil {
		return fmt.Errorf("log segment start_time: %w", err)
	}
	end, err := time.Parse(wireTimeLayout, wire.EndTime)
	if err != nil {
		return fmt.Errorf("log segment end_time: %w", err)
	}
	s.Status = ParseDutyStatusCode(wire.Status)
	s.Start = start
	s.End = end
	s.DurationHours = wire.DurationHours
	s.Location = wire.Location
	s.Miles = wire.Miles
	s.Note = wire.Notes
	return nil
}

// DailyLog is the ordered, contiguous sequence of segments for one calendar
// date.
type DailyLog struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Segments []LogSegment `json:"segments"`
}

// DailySummary folds a day's segments into totals.
type DailySummary struct {
	Date        string       `json:"date"`
	DriveHours  float64      `json:"drive_hours"`
	OnDutyHours float64      `json:"on_duty_hours"`
	Miles       float64      `json:"miles"`
	Logs        []LogSegment `json:"logs"`
}

// ELDSchedule is the response of Simulate.
type ELDSchedule struct {
	TripID           string
	StartTime        time.Time
	EndTime          time.Time
	TotalMiles       float64
	TotalDriveHours  float64
	TotalOnDutyHours float64
	TotalDays        int
	DailySummaries   []DailySummary
}

// eldScheduleWire is the on-the-wire shape of an ELDSchedule: snake_case
// field names and timestamps with no timezone suffix.
type eldScheduleWire struct {
	TripID           string         `json:"trip_id"`
	StartTime        string         `json:"start_time"`
	EndTime          string         `json:"end_time"`
	TotalMiles       float64        `json:"total_miles"`
	TotalDriveHours  float64        `json:"total_drive_hours"`
	TotalOnDutyHours float64        `json:"total_on_duty_hours"`
	TotalDays        int            `json:"total_days"`
	DailySummaries   []DailySummary `json:"daily_summaries"`
}

// MarshalJSON renders the spec wire contract.
func (e ELDSchedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(eldScheduleWire{
		TripID:           e.TripID,
		StartTime:        e.StartTime.Format(wireTimeLayout),
		EndTime:          e.EndTime.Format(wireTimeLayout),
		TotalMiles:       e.TotalMiles,
		TotalDriveHours:  e.TotalDriveHours,
		TotalOnDutyHours: e.TotalOnDutyHours,
		TotalDays:        e.TotalDays,
		DailySummaries:   e.DailySummaries,
	})
}

// UnmarshalJSON inverts MarshalJSON.
func (e *ELDSchedule) UnmarshalJSON(data []byte) error {
	var wire eldScheduleWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	start, err := time.Parse(wireTimeLayout, wire.StartTime)
	if err != nil {
		return fmt.Errorf("schedule start_time: %w", err)
	}
	end, err := time.Parse(wireTimeLayout, wire.EndTime)
	if err != nil {
		return fmt.Errorf("schedule end_time: %w", err)
	}
	e.TripID = wire.TripID
	e.StartTime = start
	e.EndTime = end
	e.TotalMiles = wire.TotalMiles
	e.TotalDriveHours = wire.TotalDriveHours
	e.TotalOnDutyHours = wire.TotalOnDutyHours
	e.TotalDays = wire.TotalDays
	e.DailySummaries = wire.DailySummaries
	return nil
}
