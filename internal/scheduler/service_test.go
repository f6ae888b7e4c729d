package scheduler

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

// memStore is an in-memory ScheduleStore with per-call error injection.
type memStore struct {
	mu        sync.Mutex
	schedules map[string]*gtlib.Schedule
	records   []*gtlib.ScheduledDownload

	selectErr error
	recordErr error
	markErr   error
}

func newMemStore() *memStore {
	return &memStore{schedules: make(map[string]*gtlib.Schedule)}
}

func (m *memStore) Schedule(id string) (*gtlib.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, gtlib.ErrScheduleNotFound
	}
	return s, nil
}

func (m *memStore) Schedules() ([]*gtlib.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*gtlib.Schedule
	for _, s := range m.schedules {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) ActiveSchedules() ([]*gtlib.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*gtlib.Schedule
	for _, s := range m.schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) SaveSchedule(s *gtlib.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.Id] = s
	return nil
}

func (m *memStore) DeleteSchedule(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.schedules, id)
	return nil
}

func (m *memStore) SetActive(id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return gtlib.ErrScheduleNotFound
	}
	s.IsActive = active
	return nil
}

func (m *memStore) SchedulesToExecute(lower, upper int64) ([]*gtlib.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	var out []*gtlib.Schedule
	for _, s := range m.schedules {
		if !s.IsActive {
			continue
		}
		if s.NextExecutionAt.IsZero() || s.NextExecutionAt.Unix() <= upper {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].NextExecutionAt, out[j].NextExecutionAt
		if a.IsZero() != b.IsZero() {
			return a.IsZero()
		}
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func (m *memStore) SetNextExecution(id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return gtlib.ErrScheduleNotFound
	}
	s.NextExecutionAt = at
	return nil
}

func (m *memStore) MarkExecuted(id string, executedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	s, ok := m.schedules[id]
	if !ok {
		return gtlib.ErrScheduleNotFound
	}
	s.LastExecutedAt = executedAt
	s.ExecutionCount++
	s.NextExecutionAt = time.Time{}
	return nil
}

func (m *memStore) RecordExecution(rec *gtlib.ScheduledDownload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Records(scheduleId string) ([]*gtlib.ScheduledDownload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*gtlib.ScheduledDownload
	for _, r := range m.records {
		if r.ScheduleId == scheduleId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) DeleteOldRecords(olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*gtlib.ScheduledDownload
	var n int64
	for _, r := range m.records {
		if r.IsExecuted && r.ExecutedAt.Before(olderThan) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return n, nil
}

func (m *memStore) ExecutionStats() (*gtlib.ExecutionStats, error) {
	return &gtlib.ExecutionStats{}, nil
}

func (m *memStore) Close() error { return nil }

// stubSubmitter scripts job submissions.
type stubSubmitter struct {
	mu    sync.Mutex
	calls []*gtlib.SubmitRequest
	err   error
}

func (f *stubSubmitter) Submit(_ context.Context, req *gtlib.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, req)
	return "job-1", nil
}

func (f *stubSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testService(st *memStore, sub *stubSubmitter, cfg Config) *Service {
	return NewService(st, sub, log.New(io.Discard, "", 0), nil, cfg)
}

func dailyAt(t *testing.T, id string, hour, minute int) *gtlib.Schedule {
	t.Helper()
	d, err := gtlib.NewDaily(gtlib.TimeOfDay{Hour: hour, Minute: minute})
	if err != nil {
		t.Fatal(err)
	}
	return &gtlib.Schedule{
		Id:         id,
		Name:       "daily " + id,
		Recurrence: d,
		IsActive:   true,
		Metadata:   map[string]string{gtlib.MetaURL: "https://example.com/v/" + id},
	}
}

// A daily schedule created at 08:00 fires when polled at 09:01, within the
// one-minute tolerance, exactly once.
func TestService_DailyFiresWithinTolerance(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	monday := time.Date(2026, time.May, 4, 0, 0, 0, 0, time.Local)
	s := dailyAt(t, "s1", 9, 0)
	s.CreatedAt = monday.Add(8 * time.Hour)
	st.schedules["s1"] = s

	svc.tick(context.Background(), monday.Add(9*time.Hour+time.Minute))

	if got := sub.count(); got != 1 {
		t.Fatalf("submissions = %d, want 1", got)
	}
	if s.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", s.ExecutionCount)
	}
	if len(st.records) != 1 || !st.records[0].IsSuccessful {
		t.Fatalf("records = %+v", st.records)
	}
	if st.records[0].DownloadId != "job-1" {
		t.Errorf("DownloadId = %q", st.records[0].DownloadId)
	}
}

// A periodic schedule fires once past its interval and is not re-selected
// after bookkeeping advanced.
func TestService_PeriodicNoDoubleFire(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	e, err := gtlib.NewEvery(2, gtlib.UnitHours)
	if err != nil {
		t.Fatal(err)
	}
	t0 := time.Date(2026, time.June, 10, 12, 0, 0, 0, time.Local)
	s := &gtlib.Schedule{
		Id:             "p1",
		Name:           "periodic",
		Recurrence:     e,
		IsActive:       true,
		CreatedAt:      t0.Add(-time.Hour),
		LastExecutedAt: t0,
		Metadata:       map[string]string{gtlib.MetaURL: "https://example.com/v/p1"},
	}
	st.schedules["p1"] = s

	svc.tick(context.Background(), t0.Add(2*time.Hour+30*time.Second))
	if got := sub.count(); got != 1 {
		t.Fatalf("submissions after first tick = %d, want 1", got)
	}

	svc.tick(context.Background(), t0.Add(2*time.Hour+35*time.Second))
	if got := sub.count(); got != 1 {
		t.Errorf("submissions after second tick = %d, want 1 (no re-fire)", got)
	}
}

// A submission failure still writes a failed record and advances the
// execution counter.
func TestService_SubmitFailureAdvancesBookkeeping(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{err: errors.New("server unreachable")}
	svc := testService(st, sub, Config{})

	s := dailyAt(t, "s1", 9, 0)
	st.schedules["s1"] = s

	day := time.Date(2026, time.May, 4, 9, 0, 30, 0, time.Local)
	svc.tick(context.Background(), day)

	if len(st.records) != 1 {
		t.Fatalf("records = %d, want 1", len(st.records))
	}
	rec := st.records[0]
	if !rec.IsExecuted || rec.IsSuccessful || rec.DownloadId != "" {
		t.Errorf("record = %+v, want executed unsuccessful without download id", rec)
	}
	if rec.ErrorMessage != "server unreachable" {
		t.Errorf("ErrorMessage = %q", rec.ErrorMessage)
	}
	if s.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", s.ExecutionCount)
	}
}

// A one-time schedule whose instant already passed is never selected.
func TestService_PastOneTimeNeverFires(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	past := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.Local)
	s := &gtlib.Schedule{
		Id:         "o1",
		Name:       "one shot",
		Recurrence: gtlib.NewOneTime(past),
		IsActive:   true,
		Metadata:   map[string]string{gtlib.MetaURL: "https://example.com/v/o1"},
	}
	st.schedules["o1"] = s

	for i := 0; i < 5; i++ {
		svc.tick(context.Background(), past.Add(time.Duration(i+1)*time.Hour))
	}
	if got := sub.count(); got != 0 {
		t.Errorf("submissions = %d, want 0", got)
	}
	if s.ExecutionCount != 0 {
		t.Errorf("ExecutionCount = %d, want 0", s.ExecutionCount)
	}
}

// Metadata without a URL records a failure and skips submission, but the
// occurrence still counts as attempted.
func TestService_MissingURL(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	s := dailyAt(t, "s1", 9, 0)
	s.Metadata = map[string]string{gtlib.MetaQuality: "720p"}
	st.schedules["s1"] = s

	svc.tick(context.Background(), time.Date(2026, time.May, 4, 9, 0, 30, 0, time.Local))

	if got := sub.count(); got != 0 {
		t.Fatalf("submissions = %d, want 0", got)
	}
	if len(st.records) != 1 || st.records[0].IsSuccessful {
		t.Fatalf("records = %+v", st.records)
	}
	if s.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", s.ExecutionCount)
	}
}

// A selector failure aborts the whole tick.
func TestService_SelectorFailureAbortsTick(t *testing.T) {
	st := newMemStore()
	st.selectErr = errors.New("database is locked")
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	st.schedules["s1"] = dailyAt(t, "s1", 9, 0)
	svc.tick(context.Background(), time.Date(2026, time.May, 4, 9, 0, 30, 0, time.Local))

	if got := sub.count(); got != 0 {
		t.Errorf("submissions = %d, want 0", got)
	}
}

// A storage failure on one schedule does not stop the remaining due
// schedules in the same tick.
func TestService_StorageFailureIsolation(t *testing.T) {
	st := newMemStore()
	st.recordErr = errors.New("disk full")
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	st.schedules["s1"] = dailyAt(t, "s1", 9, 0)
	st.schedules["s2"] = dailyAt(t, "s2", 9, 0)

	svc.tick(context.Background(), time.Date(2026, time.May, 4, 9, 0, 30, 0, time.Local))

	if got := sub.count(); got != 2 {
		t.Errorf("submissions = %d, want 2 despite record failures", got)
	}
}

func TestService_StartStopIdempotent(t *testing.T) {
	st := newMemStore()
	svc := testService(st, &stubSubmitter{}, Config{TickInterval: time.Hour})

	if svc.Running() {
		t.Fatal("running before Start")
	}
	svc.Start()
	svc.Start()
	if !svc.Running() {
		t.Fatal("not running after Start")
	}
	svc.Stop()
	svc.Stop()
	if svc.Running() {
		t.Fatal("running after Stop")
	}

	// Restart works.
	svc.Start()
	if !svc.Running() {
		t.Fatal("not running after restart")
	}
	svc.Stop()
}

func TestService_ExecuteNow(t *testing.T) {
	st := newMemStore()
	sub := &stubSubmitter{}
	svc := testService(st, sub, Config{})

	s := dailyAt(t, "s1", 23, 59)
	st.schedules["s1"] = s

	rec, err := svc.ExecuteNow(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ExecuteNow: %v", err)
	}
	if !rec.IsSuccessful || rec.DownloadId != "job-1" {
		t.Errorf("record = %+v", rec)
	}
	if s.ExecutionCount != 1 {
		t.Errorf("ExecutionCount = %d, want 1", s.ExecutionCount)
	}
}

func TestService_ExecuteNow_Refused(t *testing.T) {
	st := newMemStore()
	svc := testService(st, &stubSubmitter{}, Config{})

	inactive := dailyAt(t, "i1", 9, 0)
	inactive.IsActive = false
	st.schedules["i1"] = inactive

	expired := dailyAt(t, "e1", 9, 0)
	expired.MaxExecutions = 1
	expired.ExecutionCount = 1
	st.schedules["e1"] = expired

	tests := []struct {
		id   string
		want error
	}{
		{"i1", ErrScheduleInactive},
		{"e1", ErrScheduleExpired},
		{"missing", gtlib.ErrScheduleNotFound},
	}
	for _, tt := range tests {
		if _, err := svc.ExecuteNow(context.Background(), tt.id); !errors.Is(err, tt.want) {
			t.Errorf("ExecuteNow(%q) = %v, want %v", tt.id, err, tt.want)
		}
	}
}

func TestService_OnExecutedCallback(t *testing.T) {
	st := newMemStore()
	var got []*gtlib.ScheduledDownload
	svc := testService(st, &stubSubmitter{}, Config{
		OnExecuted: func(rec *gtlib.ScheduledDownload) { got = append(got, rec) },
	})

	st.schedules["s1"] = dailyAt(t, "s1", 9, 0)
	svc.tick(context.Background(), time.Date(2026, time.May, 4, 9, 0, 30, 0, time.Local))

	if len(got) != 1 || got[0].ScheduleId != "s1" {
		t.Errorf("callback records = %+v", got)
	}
}
