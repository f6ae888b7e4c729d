package gtlib

import (
	"errors"
	"testing"
	"time"
)

func TestSchedule_BuildSubmitRequest(t *testing.T) {
	coll, err := NewCollection(1, UnitDays)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		s       Schedule
		want    SubmitRequest
		wantErr error
	}{
		{
			name: "defaults applied",
			s: Schedule{
				Recurrence: NewOneTime(at(2026, time.March, 1, 10, 0)),
				Metadata:   map[string]string{MetaURL: "https://example.com/v/1"},
			},
			want: SubmitRequest{
				URL:       "https://example.com/v/1",
				Quality:   DefaultQuality,
				Format:    DefaultFormat,
				AutoStart: true,
			},
		},
		{
			name: "explicit metadata wins",
			s: Schedule{
				Recurrence: NewOneTime(at(2026, time.March, 1, 10, 0)),
				Metadata: map[string]string{
					MetaURL:     "https://example.com/v/2",
					MetaQuality: "720p",
					MetaFormat:  "webm",
					MetaFolder:  "music",
				},
			},
			want: SubmitRequest{
				URL:       "https://example.com/v/2",
				Quality:   "720p",
				Format:    "webm",
				Folder:    "music",
				AutoStart: true,
			},
		},
		{
			name: "collection reads collection url",
			s: Schedule{
				Recurrence: coll,
				Metadata: map[string]string{
					MetaURL:           "https://example.com/v/ignored",
					MetaCollectionURL: "https://example.com/c/1",
				},
			},
			want: SubmitRequest{
				URL:       "https://example.com/c/1",
				Quality:   DefaultQuality,
				Format:    DefaultFormat,
				AutoStart: true,
			},
		},
		{
			name: "missing url",
			s: Schedule{
				Recurrence: NewOneTime(at(2026, time.March, 1, 10, 0)),
				Metadata:   map[string]string{MetaQuality: "best"},
			},
			wantErr: ErrNoActionableURL,
		},
		{
			name: "collection missing collection url",
			s: Schedule{
				Recurrence: coll,
				Metadata:   map[string]string{MetaURL: "https://example.com/v/3"},
			},
			wantErr: ErrNoActionableURL,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.s.BuildSubmitRequest()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildSubmitRequest() error: %v", err)
			}
			if *got != tt.want {
				t.Errorf("BuildSubmitRequest() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}
