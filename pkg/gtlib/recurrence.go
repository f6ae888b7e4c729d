package gtlib

import (
	"fmt"
	"sort"
	"time"
)

// Recurrence is the timing definition of a schedule, one concrete variant
// per schedule kind. Variants are constructed through the New* functions,
// which validate their fields up front; an invalid definition is never
// representable, so the calculator has no "which nil combination is legal"
// ambiguity to resolve.
type Recurrence interface {
	// Type reports the schedule type this variant implements.
	Type() ScheduleType
	// Pattern reports the calendar pattern, or "" for non-calendar kinds.
	Pattern() RecurrencePattern

	// nextAfter computes the next occurrence for the owning schedule
	// strictly relevant to ref. All calendar math happens in ref's
	// location; schedules are wall-clock, not fixed UTC instants.
	nextAfter(s *Schedule, ref time.Time) (time.Time, bool)
}

// NextExecution computes the next eligible execution time of the schedule
// after ref, or false if the schedule cannot produce a future occurrence.
// It is a pure function of the schedule and ref; it never reads the wall
// clock.
func (s *Schedule) NextExecution(ref time.Time) (time.Time, bool) {
	if s.Recurrence == nil {
		return time.Time{}, false
	}
	return s.Recurrence.nextAfter(s, ref)
}

// OneTime fires exactly once at a calendar date and time-of-day.
type OneTime struct {
	Date      time.Time
	TimeOfDay TimeOfDay
}

// NewOneTime creates a one-time recurrence at the given instant's calendar
// date and time-of-day.
func NewOneTime(at time.Time) *OneTime {
	return &OneTime{Date: at, TimeOfDay: MakeTimeOfDay(at)}
}

func (o *OneTime) Type() ScheduleType         { return TypeOneTime }
func (o *OneTime) Pattern() RecurrencePattern { return "" }

func (o *OneTime) nextAfter(_ *Schedule, ref time.Time) (time.Time, bool) {
	if o.Date.IsZero() || !o.TimeOfDay.Valid() {
		return time.Time{}, false
	}
	at := o.TimeOfDay.on(o.Date.In(ref.Location()), ref.Location())
	if at.After(ref) {
		return at, true
	}
	// One-time schedules do not recur; a past instant means never.
	return time.Time{}, false
}

// Daily fires every day at a fixed time-of-day.
type Daily struct {
	TimeOfDay TimeOfDay
}

// NewDaily creates a daily recurrence at the given time-of-day.
func NewDaily(td TimeOfDay) (*Daily, error) {
	if !td.Valid() {
		return nil, fmt.Errorf("daily: %w: time of day %02d:%02d", ErrInvalidRecurrence, td.Hour, td.Minute)
	}
	return &Daily{TimeOfDay: td}, nil
}

func (d *Daily) Type() ScheduleType         { return TypeRecurring }
func (d *Daily) Pattern() RecurrencePattern { return PatternDaily }

func (d *Daily) nextAfter(_ *Schedule, ref time.Time) (time.Time, bool) {
	if !d.TimeOfDay.Valid() {
		return time.Time{}, false
	}
	today := d.TimeOfDay.on(ref, ref.Location())
	if today.After(ref) {
		return today, true
	}
	return today.AddDate(0, 0, 1), true
}

// Weekly fires on a set of weekdays at a fixed time-of-day.
type Weekly struct {
	TimeOfDay TimeOfDay
	Days      []Weekday
}

// NewWeekly creates a weekly recurrence. The day set must be non-empty and
// is stored sorted Monday-first with duplicates removed.
func NewWeekly(td TimeOfDay, days []Weekday) (*Weekly, error) {
	if !td.Valid() {
		return nil, fmt.Errorf("weekly: %w: time of day %02d:%02d", ErrInvalidRecurrence, td.Hour, td.Minute)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("weekly: %w: empty weekday set", ErrInvalidRecurrence)
	}
	seen := make(map[Weekday]bool, len(days))
	var uniq []Weekday
	for _, d := range days {
		if d < Monday || d > Sunday {
			return nil, fmt.Errorf("weekly: %w: weekday %d", ErrInvalidRecurrence, d)
		}
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })
	return &Weekly{TimeOfDay: td, Days: uniq}, nil
}

func (w *Weekly) Type() ScheduleType         { return TypeRecurring }
func (w *Weekly) Pattern() RecurrencePattern { return PatternWeekly }

func (w *Weekly) nextAfter(_ *Schedule, ref time.Time) (time.Time, bool) {
	if !w.TimeOfDay.Valid() || len(w.Days) == 0 {
		return time.Time{}, false
	}
	target := make(map[Weekday]bool, len(w.Days))
	for _, d := range w.Days {
		target[d] = true
	}
	// Walk day offsets 0..7: the smallest offset whose same-day candidate
	// is strictly after ref wins. Offset 7 covers the wrap back to today's
	// weekday next week.
	for off := 0; off <= 7; off++ {
		day := ref.AddDate(0, 0, off)
		if !target[fromGoWeekday(day.Weekday())] {
			continue
		}
		at := w.TimeOfDay.on(day, ref.Location())
		if at.After(ref) {
			return at, true
		}
	}
	return time.Time{}, false
}

// Monthly fires on a day of the month at a fixed time-of-day. Days beyond
// a month's length clamp to that month's last day.
type Monthly struct {
	TimeOfDay  TimeOfDay
	DayOfMonth int
}

// NewMonthly creates a monthly recurrence on the given day (1-31).
func NewMonthly(td TimeOfDay, dayOfMonth int) (*Monthly, error) {
	if !td.Valid() {
		return nil, fmt.Errorf("monthly: %w: time of day %02d:%02d", ErrInvalidRecurrence, td.Hour, td.Minute)
	}
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil, fmt.Errorf("monthly: %w: day of month %d", ErrInvalidRecurrence, dayOfMonth)
	}
	return &Monthly{TimeOfDay: td, DayOfMonth: dayOfMonth}, nil
}

func (m *Monthly) Type() ScheduleType         { return TypeRecurring }
func (m *Monthly) Pattern() RecurrencePattern { return PatternMonthly }

func (m *Monthly) nextAfter(_ *Schedule, ref time.Time) (time.Time, bool) {
	if !m.TimeOfDay.Valid() || m.DayOfMonth < 1 || m.DayOfMonth > 31 {
		return time.Time{}, false
	}
	y, mo, _ := ref.Date()
	at := m.monthCandidate(y, mo, ref.Location())
	if at.After(ref) {
		return at, true
	}
	// First of next month, then clamp again for its length.
	ny, nmo, _ := time.Date(y, mo, 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0).Date()
	return m.monthCandidate(ny, nmo, ref.Location()), true
}

func (m *Monthly) monthCandidate(year int, month time.Month, loc *time.Location) time.Time {
	day := m.DayOfMonth
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, m.TimeOfDay.Hour, m.TimeOfDay.Minute, 0, 0, loc)
}

// Yearly fires once a year on a month and day at a fixed time-of-day.
type Yearly struct {
	Month     time.Month
	Day       int
	TimeOfDay TimeOfDay
}

// NewYearly creates a yearly recurrence on the given month/day.
func NewYearly(month time.Month, day int, td TimeOfDay) (*Yearly, error) {
	if !td.Valid() {
		return nil, fmt.Errorf("yearly: %w: time of day %02d:%02d", ErrInvalidRecurrence, td.Hour, td.Minute)
	}
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return nil, fmt.Errorf("yearly: %w: date %s %d", ErrInvalidRecurrence, month, day)
	}
	return &Yearly{Month: month, Day: day, TimeOfDay: td}, nil
}

func (y *Yearly) Type() ScheduleType         { return TypeRecurring }
func (y *Yearly) Pattern() RecurrencePattern { return PatternYearly }

func (y *Yearly) nextAfter(_ *Schedule, ref time.Time) (time.Time, bool) {
	if !y.TimeOfDay.Valid() || y.Day < 1 || y.Day > 31 {
		return time.Time{}, false
	}
	at := y.yearCandidate(ref.Year(), ref.Location())
	if at.After(ref) {
		return at, true
	}
	return y.yearCandidate(ref.Year()+1, ref.Location()), true
}

func (y *Yearly) yearCandidate(year int, loc *time.Location) time.Time {
	day := y.Day
	if last := daysIn(year, y.Month); day > last {
		day = last
	}
	return time.Date(year, y.Month, day, y.TimeOfDay.Hour, y.TimeOfDay.Minute, 0, 0, loc)
}

// Every fires at a fixed interval, anchored to the schedule's last
// execution (or its creation if it never ran). Collection marks the
// variant as a COLLECTION schedule; the timing is identical.
//
// MONTHS are approximated as 30 days. This matches the stored schedule
// data of existing clients and is deliberately not calendar-accurate;
// calendar months are available through the MONTHLY pattern.
type Every struct {
	Interval   int
	Unit       TimeUnit
	Collection bool
}

// NewEvery creates a periodic recurrence firing every interval units.
func NewEvery(interval int, unit TimeUnit) (*Every, error) {
	return newEvery(interval, unit, false)
}

// NewCollection creates a periodic recurrence for a video collection.
func NewCollection(interval int, unit TimeUnit) (*Every, error) {
	return newEvery(interval, unit, true)
}

func newEvery(interval int, unit TimeUnit, collection bool) (*Every, error) {
	if interval < 1 {
		return nil, fmt.Errorf("periodic: %w: interval %d", ErrInvalidRecurrence, interval)
	}
	if unitDuration(unit) == 0 {
		return nil, fmt.Errorf("periodic: %w: time unit %q", ErrInvalidRecurrence, unit)
	}
	return &Every{Interval: interval, Unit: unit, Collection: collection}, nil
}

func (e *Every) Type() ScheduleType {
	if e.Collection {
		return TypeCollection
	}
	return TypePeriodic
}

func (e *Every) Pattern() RecurrencePattern { return "" }

// Duration returns the interval as a fixed duration.
func (e *Every) Duration() time.Duration {
	return time.Duration(e.Interval) * unitDuration(e.Unit)
}

func (e *Every) nextAfter(s *Schedule, ref time.Time) (time.Time, bool) {
	if e.Interval < 1 || unitDuration(e.Unit) == 0 {
		return time.Time{}, false
	}
	anchor := s.LastExecutedAt
	if anchor.IsZero() {
		anchor = s.CreatedAt
	}
	if anchor.IsZero() {
		return time.Time{}, false
	}
	next := anchor.Add(e.Duration())
	if next.After(ref) {
		return next, true
	}
	// Re-anchor to ref so a long-inactive schedule does not produce a
	// backlog of past-due candidates. Missed occurrences are dropped;
	// catch-up is the execution service's decision, not the calculator's.
	return ref.Add(e.Duration()), true
}

func unitDuration(u TimeUnit) time.Duration {
	switch u {
	case UnitMinutes:
		return time.Minute
	case UnitHours:
		return time.Hour
	case UnitDays:
		return 24 * time.Hour
	case UnitWeeks:
		return 7 * 24 * time.Hour
	case UnitMonths:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
