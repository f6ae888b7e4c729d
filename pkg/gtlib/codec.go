package gtlib

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// recurrenceFields is the flat, nullable representation of a Recurrence
// variant. It is the exchange form shared by the JSON codec and the sqlite
// store; decodeRecurrence is the single place that decides which flat field
// combinations are legal.
type recurrenceFields struct {
	Type       ScheduleType
	Pattern    RecurrencePattern
	StartDate  int64 // epoch seconds of the ONE_TIME calendar date, 0 if unset
	TimeOfDay  int   // minutes since midnight, -1 if unset
	WeekDays   []Weekday
	DayOfMonth int
	Month      int // yearly month 1-12
	Day        int // yearly day of month
	Interval   int
	TimeUnit   TimeUnit
}

func encodeRecurrence(r Recurrence) recurrenceFields {
	f := recurrenceFields{TimeOfDay: -1}
	switch v := r.(type) {
	case *OneTime:
		f.Type = TypeOneTime
		f.StartDate = v.Date.Unix()
		f.TimeOfDay = v.TimeOfDay.Hour*60 + v.TimeOfDay.Minute
	case *Daily:
		f.Type = TypeRecurring
		f.Pattern = PatternDaily
		f.TimeOfDay = v.TimeOfDay.Hour*60 + v.TimeOfDay.Minute
	case *Weekly:
		f.Type = TypeRecurring
		f.Pattern = PatternWeekly
		f.TimeOfDay = v.TimeOfDay.Hour*60 + v.TimeOfDay.Minute
		f.WeekDays = v.Days
	case *Monthly:
		f.Type = TypeRecurring
		f.Pattern = PatternMonthly
		f.TimeOfDay = v.TimeOfDay.Hour*60 + v.TimeOfDay.Minute
		f.DayOfMonth = v.DayOfMonth
	case *Yearly:
		f.Type = TypeRecurring
		f.Pattern = PatternYearly
		f.TimeOfDay = v.TimeOfDay.Hour*60 + v.TimeOfDay.Minute
		f.Month = int(v.Month)
		f.Day = v.Day
	case *Every:
		f.Type = v.Type()
		f.Interval = v.Interval
		f.TimeUnit = v.Unit
	}
	return f
}

// decodeRecurrence rebuilds a Recurrence variant from its flat form. Any
// combination that does not exactly match one variant fails; callers decide
// whether that is a hard error (user input) or a dormant schedule (storage).
func decodeRecurrence(f recurrenceFields) (Recurrence, error) {
	td := TimeOfDay{Hour: f.TimeOfDay / 60, Minute: f.TimeOfDay % 60}
	switch f.Type {
	case TypeOneTime:
		if f.StartDate == 0 || f.TimeOfDay < 0 {
			return nil, fmt.Errorf("one-time: %w: missing start date or time", ErrInvalidRecurrence)
		}
		return &OneTime{Date: time.Unix(f.StartDate, 0), TimeOfDay: td}, nil
	case TypeRecurring:
		if f.TimeOfDay < 0 {
			return nil, fmt.Errorf("recurring: %w: missing start time", ErrInvalidRecurrence)
		}
		switch f.Pattern {
		case PatternDaily:
			return NewDaily(td)
		case PatternWeekly:
			return NewWeekly(td, f.WeekDays)
		case PatternMonthly:
			return NewMonthly(td, f.DayOfMonth)
		case PatternYearly:
			return NewYearly(time.Month(f.Month), f.Day, td)
		default:
			return nil, fmt.Errorf("recurring: %w: pattern %q", ErrInvalidRecurrence, f.Pattern)
		}
	case TypePeriodic:
		return NewEvery(f.Interval, f.TimeUnit)
	case TypeCollection:
		return NewCollection(f.Interval, f.TimeUnit)
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidRecurrence, f.Type)
	}
}

// scheduleJSON is the wire form of a Schedule. Timestamps are epoch
// seconds, the time-of-day anchor is "HH:MM", and weekdays are upper-case
// names, matching the stored format of existing clients.
type scheduleJSON struct {
	Id                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Type              ScheduleType      `json:"type"`
	StartDate         *int64            `json:"start_date,omitempty"`
	StartTime         string            `json:"start_time,omitempty"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern,omitempty"`
	WeekDays          []string          `json:"week_days,omitempty"`
	DayOfMonth        int               `json:"day_of_month,omitempty"`
	Month             int               `json:"month,omitempty"`
	Day               int               `json:"day,omitempty"`
	Interval          int               `json:"interval,omitempty"`
	TimeUnit          TimeUnit          `json:"time_unit,omitempty"`
	EndDate           *int64            `json:"end_date,omitempty"`
	MaxExecutions     int               `json:"max_executions,omitempty"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         int64             `json:"created_at"`
	LastExecutedAt    *int64            `json:"last_executed_at,omitempty"`
	NextExecutionAt   *int64            `json:"next_execution_at,omitempty"`
	ExecutionCount    int               `json:"execution_count"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func optEpoch(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	v := t.Unix()
	return &v
}

func epochTime(v *int64) time.Time {
	if v == nil || *v == 0 {
		return time.Time{}
	}
	return time.Unix(*v, 0)
}

// MarshalJSON encodes the schedule in its flat wire form.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	f := encodeRecurrence(s.Recurrence)
	w := scheduleJSON{
		Id:                s.Id,
		Name:              s.Name,
		Description:       s.Description,
		Type:              f.Type,
		RecurrencePattern: f.Pattern,
		DayOfMonth:        f.DayOfMonth,
		Month:             f.Month,
		Day:               f.Day,
		Interval:          f.Interval,
		TimeUnit:          f.TimeUnit,
		EndDate:           optEpoch(s.EndDate),
		MaxExecutions:     s.MaxExecutions,
		IsActive:          s.IsActive,
		CreatedAt:         s.CreatedAt.Unix(),
		LastExecutedAt:    optEpoch(s.LastExecutedAt),
		NextExecutionAt:   optEpoch(s.NextExecutionAt),
		ExecutionCount:    s.ExecutionCount,
		Metadata:          s.Metadata,
	}
	if f.StartDate != 0 {
		w.StartDate = &f.StartDate
	}
	if f.TimeOfDay >= 0 {
		w.StartTime = fmt.Sprintf("%02d:%02d", f.TimeOfDay/60, f.TimeOfDay%60)
	}
	for _, d := range f.WeekDays {
		w.WeekDays = append(w.WeekDays, d.String())
	}
	return json.Marshal(&w)
}

// UnmarshalJSON decodes the flat wire form back into a tagged schedule.
// An invalid timing definition is a hard error here: wire input is user
// input, and silently materializing a dormant schedule would hide the
// mistake.
func (s *Schedule) UnmarshalJSON(b []byte) error {
	var w scheduleJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	f := recurrenceFields{
		Type:       w.Type,
		Pattern:    w.RecurrencePattern,
		TimeOfDay:  -1,
		DayOfMonth: w.DayOfMonth,
		Month:      w.Month,
		Day:        w.Day,
		Interval:   w.Interval,
		TimeUnit:   w.TimeUnit,
	}
	if w.StartDate != nil {
		f.StartDate = *w.StartDate
	}
	if w.StartTime != "" {
		td, err := ParseTimeOfDay(w.StartTime)
		if err != nil {
			return err
		}
		f.TimeOfDay = td.Hour*60 + td.Minute
	}
	for _, name := range w.WeekDays {
		d, ok := ParseWeekday(name)
		if !ok {
			return fmt.Errorf("%w: weekday %q", ErrInvalidRecurrence, name)
		}
		f.WeekDays = append(f.WeekDays, d)
	}
	rec, err := decodeRecurrence(f)
	if err != nil {
		return err
	}
	*s = Schedule{
		Id:              w.Id,
		Name:            w.Name,
		Description:     w.Description,
		Recurrence:      rec,
		EndDate:         epochTime(w.EndDate),
		MaxExecutions:   w.MaxExecutions,
		IsActive:        w.IsActive,
		CreatedAt:       time.Unix(w.CreatedAt, 0),
		LastExecutedAt:  epochTime(w.LastExecutedAt),
		NextExecutionAt: epochTime(w.NextExecutionAt),
		ExecutionCount:  w.ExecutionCount,
		Metadata:        w.Metadata,
	}
	return nil
}

// ParseTimeOfDay parses a "HH:MM" wall-clock anchor.
func ParseTimeOfDay(v string) (TimeOfDay, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidRecurrence, v)
	}
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidRecurrence, v)
	}
	td := TimeOfDay{Hour: h, Minute: m}
	if !td.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: time of day %q", ErrInvalidRecurrence, v)
	}
	return td, nil
}
