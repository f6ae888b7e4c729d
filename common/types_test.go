package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

func TestScheduleParamsJSON(t *testing.T) {
	daily, err := gtlib.NewDaily(gtlib.TimeOfDay{Hour: 9, Minute: 0})
	if err != nil {
		t.Fatal(err)
	}
	p := ScheduleParams{
		Schedule: &gtlib.Schedule{
			Id:         "s1",
			Name:       "morning fetch",
			Recurrence: daily,
			IsActive:   true,
			CreatedAt:  time.Unix(1767225600, 0),
			Metadata:   map[string]string{gtlib.MetaURL: "https://example.com/v/1"},
		},
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out ScheduleParams
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Schedule.Id != "s1" || out.Schedule.Type() != gtlib.TypeRecurring {
		t.Fatalf("unexpected round trip: %+v", out.Schedule)
	}
}

func TestDownloadParamsJSON(t *testing.T) {
	p := DownloadParams{
		Url:       "https://example.com/v/2",
		Quality:   "720p",
		Format:    "mp4",
		AutoStart: true,
	}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out DownloadParams
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Url != p.Url || out.Quality != p.Quality {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}
