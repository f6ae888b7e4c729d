// Package gtlib provides the core structures and scheduling logic for the
// GrabTube client: schedule definitions, the recurrence calculator, execution
// records and the schedule store.
package gtlib

import (
	"time"
)

// ScheduleType identifies the kind of recurrence a schedule carries.
type ScheduleType string

const (
	// TypeOneTime executes once at a specific date and time.
	TypeOneTime ScheduleType = "ONE_TIME"
	// TypeRecurring executes repeatedly on a calendar pattern.
	TypeRecurring ScheduleType = "RECURRING"
	// TypePeriodic executes every fixed interval of time.
	TypePeriodic ScheduleType = "PERIODIC"
	// TypeCollection periodically re-fetches a video collection URL.
	TypeCollection ScheduleType = "COLLECTION"
)

// RecurrencePattern is the calendar pattern of a RECURRING schedule.
type RecurrencePattern string

const (
	PatternDaily   RecurrencePattern = "DAILY"
	PatternWeekly  RecurrencePattern = "WEEKLY"
	PatternMonthly RecurrencePattern = "MONTHLY"
	PatternYearly  RecurrencePattern = "YEARLY"
)

// TimeUnit is the unit of a periodic schedule's interval.
type TimeUnit string

const (
	UnitMinutes TimeUnit = "MINUTES"
	UnitHours   TimeUnit = "HOURS"
	UnitDays    TimeUnit = "DAYS"
	UnitWeeks   TimeUnit = "WEEKS"
	UnitMonths  TimeUnit = "MONTHS"
)

// Weekday is a day of the week with Monday = 0 through Sunday = 6.
// The ordering is significant: the weekly calculator resolves ties by the
// smallest non-negative day offset from the reference weekday.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{
	"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY",
	"FRIDAY", "SATURDAY", "SUNDAY",
}

// String returns the upper-case English name of the weekday.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "INVALID"
	}
	return weekdayNames[w]
}

// ParseWeekday converts an upper-case English weekday name to a Weekday.
func ParseWeekday(name string) (Weekday, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), true
		}
	}
	return 0, false
}

// fromGoWeekday converts time.Weekday (Sunday = 0) to Weekday (Monday = 0).
func fromGoWeekday(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// Schedule is a user-defined recurrence rule that periodically creates
// download jobs on the remote server.
//
// The timing definition lives entirely in Recurrence; a Schedule with a nil
// Recurrence is dormant and can never produce a next execution. The
// bookkeeping fields (LastExecutedAt, NextExecutionAt, ExecutionCount) are
// mutated only by the execution service.
// Schedule marshals to and from a flat JSON object (see codec.go) so the
// wire format stays compatible with existing clients.
type Schedule struct {
	// Id is the unique identifier of the schedule.
	Id string
	// Name is a user-chosen display name.
	Name string
	// Description is an optional free-text note.
	Description string
	// Recurrence defines when the schedule fires.
	Recurrence Recurrence
	// EndDate stops the schedule once passed. Zero means no end date.
	EndDate time.Time
	// MaxExecutions caps the number of firings. Zero means unlimited.
	MaxExecutions int
	// IsActive is the user-togglable enable flag.
	IsActive bool
	// CreatedAt is when the schedule was created.
	CreatedAt time.Time
	// LastExecutedAt is when the schedule last fired. Zero means never.
	LastExecutedAt time.Time
	// NextExecutionAt is a cached next-execution time. Zero means "recompute".
	// The due selector never trusts it without re-validating.
	NextExecutionAt time.Time
	// ExecutionCount is the number of firing attempts so far.
	ExecutionCount int
	// Metadata carries job-construction parameters (url, quality, format,
	// folder, collectionUrl).
	Metadata map[string]string
}

// Type returns the schedule type derived from its recurrence variant.
// A schedule without a recurrence reports an empty type.
func (s *Schedule) Type() ScheduleType {
	if s.Recurrence == nil {
		return ""
	}
	return s.Recurrence.Type()
}

// IsExpired reports whether the schedule can never become due again:
// its end date has passed or its execution budget is spent. Expiry is
// monotonic once tripped.
func (s *Schedule) IsExpired(now time.Time) bool {
	if !s.EndDate.IsZero() && s.EndDate.Before(now) {
		return true
	}
	if s.MaxExecutions > 0 && s.ExecutionCount >= s.MaxExecutions {
		return true
	}
	return false
}

// ShouldExecute reports whether an occurrence of the schedule falls within
// tolerance of now. The occurrence is recomputed from one tolerance width in
// the past, so a poll arriving just after the occurrence still catches it.
// An occurrence the schedule already executed at or after does not fire
// again. Dormant schedules report false.
func (s *Schedule) ShouldExecute(now time.Time, tolerance time.Duration) bool {
	// Nudge the reference back so an occurrence exactly tolerance ago is
	// still strictly after it.
	next, ok := s.NextExecution(now.Add(-tolerance - time.Nanosecond))
	if !ok {
		return false
	}
	if next.After(now.Add(tolerance)) {
		return false
	}
	if !s.LastExecutedAt.IsZero() && !s.LastExecutedAt.Before(next) {
		return false
	}
	return true
}

// TimeOfDay is a wall-clock time-of-day anchor (hour and minute).
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// MakeTimeOfDay extracts the time-of-day of t in t's own location.
func MakeTimeOfDay(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Valid reports whether the time-of-day lies in 00:00–23:59.
func (td TimeOfDay) Valid() bool {
	return td.Hour >= 0 && td.Hour <= 23 && td.Minute >= 0 && td.Minute <= 59
}

// on returns the instant of td on the calendar day of date, in loc.
func (td TimeOfDay) on(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, td.Hour, td.Minute, 0, 0, loc)
}
