package cmd

import (
	"testing"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    gtlib.TimeOfDay
		wantErr bool
	}{
		{in: "00:00", want: gtlib.TimeOfDay{}},
		{in: "09:30", want: gtlib.TimeOfDay{Hour: 9, Minute: 30}},
		{in: "23:59", want: gtlib.TimeOfDay{Hour: 23, Minute: 59}},
		{in: "24:00", wantErr: true},
		{in: "9:30pm", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTimeOfDay(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTimeOfDay(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWeekdays(t *testing.T) {
	tests := []struct {
		in      string
		want    []gtlib.Weekday
		wantErr bool
	}{
		{in: "mon", want: []gtlib.Weekday{gtlib.Monday}},
		{in: "mon,wed,fri", want: []gtlib.Weekday{gtlib.Monday, gtlib.Wednesday, gtlib.Friday}},
		{in: " sat , sun ", want: []gtlib.Weekday{gtlib.Saturday, gtlib.Sunday}},
		{in: "funday", wantErr: true},
		{in: "", wantErr: true},
		{in: ",,", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseWeekdays(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWeekdays(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseWeekdays(%q): %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseWeekdays(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseWeekdays(%q)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParseEvery(t *testing.T) {
	tests := []struct {
		in       string
		wantN    int
		wantUnit gtlib.TimeUnit
		wantErr  bool
	}{
		{in: "30m", wantN: 30, wantUnit: gtlib.UnitMinutes},
		{in: "12h", wantN: 12, wantUnit: gtlib.UnitHours},
		{in: "3d", wantN: 3, wantUnit: gtlib.UnitDays},
		{in: "2w", wantN: 2, wantUnit: gtlib.UnitWeeks},
		{in: "1mo", wantN: 1, wantUnit: gtlib.UnitMonths},
		{in: "0m", wantErr: true},
		{in: "-5h", wantErr: true},
		{in: "10", wantErr: true},
		{in: "h", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		n, unit, err := parseEvery(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseEvery(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseEvery(%q): %v", tt.in, err)
			continue
		}
		if n != tt.wantN || unit != tt.wantUnit {
			t.Errorf("parseEvery(%q) = %d %s, want %d %s", tt.in, n, unit, tt.wantN, tt.wantUnit)
		}
	}
}

func resetScheduleFlags() {
	schedName, schedDescription = "", ""
	schedAt, schedDaily, schedWeekly, schedYearly, schedEvery, schedTime = "", "", "", "", "", ""
	schedMonthly, schedMaxExec = 0, 0
	schedCollection, schedPaused = false, false
	schedEndDate = ""
	schedQuality, schedFormat, schedFolder = "", "", ""
}

func TestBuildSchedule(t *testing.T) {
	t.Run("daily", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "nightly news"
		schedDaily = "06:30"
		schedQuality = "720p"

		sched, err := buildSchedule("https://example.com/v/1")
		if err != nil {
			t.Fatal(err)
		}
		if sched.Type() != gtlib.TypeRecurring {
			t.Errorf("unexpected type: %s", sched.Type())
		}
		if !sched.IsActive {
			t.Error("schedule should be active by default")
		}
		if sched.Metadata[gtlib.MetaURL] != "https://example.com/v/1" {
			t.Errorf("unexpected url metadata: %v", sched.Metadata)
		}
		if sched.Metadata[gtlib.MetaQuality] != "720p" {
			t.Errorf("unexpected quality metadata: %v", sched.Metadata)
		}
	})

	t.Run("collection", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "channel sync"
		schedEvery = "6h"
		schedCollection = true
		schedPaused = true

		sched, err := buildSchedule("https://example.com/c/9")
		if err != nil {
			t.Fatal(err)
		}
		if sched.IsActive {
			t.Error("--paused should create an inactive schedule")
		}
		if sched.Metadata[gtlib.MetaCollectionURL] != "https://example.com/c/9" {
			t.Errorf("collection url not stored: %v", sched.Metadata)
		}
		if _, ok := sched.Metadata[gtlib.MetaURL]; ok {
			t.Error("plain url key should not be set for collections")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		resetScheduleFlags()
		schedDaily = "06:30"
		if _, err := buildSchedule("https://example.com/v/1"); err == nil {
			t.Error("expected error for missing --name")
		}
	})

	t.Run("no timing", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "x"
		if _, err := buildSchedule("https://example.com/v/1"); err == nil {
			t.Error("expected error when no timing flag is set")
		}
	})

	t.Run("conflicting timing", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "x"
		schedDaily = "06:30"
		schedEvery = "2h"
		if _, err := buildSchedule("https://example.com/v/1"); err == nil {
			t.Error("expected error for conflicting timing flags")
		}
	})

	t.Run("collection without every", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "x"
		schedDaily = "06:30"
		schedCollection = true
		if _, err := buildSchedule("https://example.com/v/1"); err == nil {
			t.Error("expected error for --collection without --every")
		}
	})

	t.Run("end date", func(t *testing.T) {
		resetScheduleFlags()
		schedName = "x"
		schedDaily = "06:30"
		schedEndDate = "2030-12-31"

		sched, err := buildSchedule("https://example.com/v/1")
		if err != nil {
			t.Fatal(err)
		}
		if sched.EndDate.IsZero() {
			t.Fatal("end date not set")
		}
		if sched.EndDate.Day() != 31 || sched.EndDate.Hour() != 23 {
			t.Errorf("end date should cover the whole day, got %s", sched.EndDate)
		}
	})
}
