package gtlib

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestSchedule_JSONRoundTrip(t *testing.T) {
	weekly, err := NewWeekly(TimeOfDay{Hour: 7, Minute: 45}, []Weekday{Monday, Friday})
	if err != nil {
		t.Fatal(err)
	}
	every, err := NewCollection(12, UnitHours)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		s    Schedule
	}{
		{
			"one-time",
			Schedule{
				Id:         "s1",
				Name:       "late night grab",
				Recurrence: NewOneTime(at(2026, time.March, 10, 23, 0)),
				IsActive:   true,
				CreatedAt:  at(2026, time.March, 1, 0, 0),
				Metadata:   map[string]string{MetaURL: "https://example.com/v/1"},
			},
		},
		{
			"weekly with limits",
			Schedule{
				Id:             "s2",
				Name:           "weekday mornings",
				Description:    "news roundup",
				Recurrence:     weekly,
				EndDate:        at(2026, time.December, 31, 0, 0),
				MaxExecutions:  50,
				IsActive:       true,
				CreatedAt:      at(2026, time.January, 1, 0, 0),
				LastExecutedAt: at(2026, time.February, 2, 7, 45),
				ExecutionCount: 5,
				Metadata:       map[string]string{MetaURL: "https://example.com/v/2", MetaQuality: "720p"},
			},
		},
		{
			"collection",
			Schedule{
				Id:         "s3",
				Name:       "channel sweep",
				Recurrence: every,
				IsActive:   false,
				CreatedAt:  at(2026, time.April, 1, 12, 0),
				Metadata:   map[string]string{MetaCollectionURL: "https://example.com/c/9"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(&tt.s)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Schedule
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Id != tt.s.Id || got.Name != tt.s.Name || got.Description != tt.s.Description {
				t.Errorf("identity fields changed: %+v", got)
			}
			if got.Type() != tt.s.Type() {
				t.Errorf("Type() = %q, want %q", got.Type(), tt.s.Type())
			}
			if got.IsActive != tt.s.IsActive || got.MaxExecutions != tt.s.MaxExecutions ||
				got.ExecutionCount != tt.s.ExecutionCount {
				t.Errorf("bookkeeping fields changed: %+v", got)
			}
			if !got.EndDate.Equal(tt.s.EndDate) || !got.LastExecutedAt.Equal(tt.s.LastExecutedAt) {
				t.Errorf("timestamps changed: %+v", got)
			}
			ref := at(2026, time.January, 15, 0, 0)
			wantNext, wantOk := tt.s.NextExecution(ref)
			gotNext, gotOk := got.NextExecution(ref)
			if wantOk != gotOk || (wantOk && !wantNext.Equal(gotNext)) {
				t.Errorf("recurrence changed: next = %v, %v; want %v, %v", gotNext, gotOk, wantNext, wantOk)
			}
			for k, v := range tt.s.Metadata {
				if got.Metadata[k] != v {
					t.Errorf("metadata[%q] = %q, want %q", k, got.Metadata[k], v)
				}
			}
		})
	}
}

func TestSchedule_UnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown type", `{"id":"x","type":"SOMETIMES","created_at":1}`},
		{"recurring without pattern", `{"id":"x","type":"RECURRING","start_time":"08:00","created_at":1}`},
		{"recurring without time", `{"id":"x","type":"RECURRING","recurrence_pattern":"DAILY","created_at":1}`},
		{"weekly empty days", `{"id":"x","type":"RECURRING","recurrence_pattern":"WEEKLY","start_time":"08:00","created_at":1}`},
		{"bad weekday", `{"id":"x","type":"RECURRING","recurrence_pattern":"WEEKLY","start_time":"08:00","week_days":["FUNDAY"],"created_at":1}`},
		{"one-time without date", `{"id":"x","type":"ONE_TIME","start_time":"08:00","created_at":1}`},
		{"periodic zero interval", `{"id":"x","type":"PERIODIC","time_unit":"HOURS","created_at":1}`},
		{"bad start time", `{"id":"x","type":"RECURRING","recurrence_pattern":"DAILY","start_time":"25:99","created_at":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Schedule
			err := json.Unmarshal([]byte(tt.body), &s)
			if !errors.Is(err, ErrInvalidRecurrence) {
				t.Errorf("err = %v, want ErrInvalidRecurrence", err)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", TimeOfDay{0, 0}, false},
		{"23:59", TimeOfDay{23, 59}, false},
		{"7:05", TimeOfDay{7, 5}, false},
		{"24:00", TimeOfDay{}, true},
		{"12:60", TimeOfDay{}, true},
		{"noon", TimeOfDay{}, true},
		{"", TimeOfDay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
