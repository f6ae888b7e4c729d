package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/grabtube/grabtube/internal/monitoring"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

// DefaultTickInterval is the polling cadence of the execution loop.
const DefaultTickInterval = 60 * time.Second

var (
	ErrScheduleInactive = errors.New("schedule is not active")
	ErrScheduleExpired  = errors.New("schedule has expired")
)

// Config tunes the execution service. Zero values pick the defaults.
type Config struct {
	TickInterval time.Duration
	Tolerance    time.Duration

	// CatchUpMissed makes Start execute schedules whose cached occurrence
	// passed while the daemon was down, once each, instead of silently
	// rolling them forward.
	CatchUpMissed bool

	// OnExecuted is called after every attempt with the finished audit
	// record, from the loop goroutine. Used to fan out events to
	// attached clients.
	OnExecuted func(rec *gtlib.ScheduledDownload)
}

// Service owns the polling loop. Start and Stop are safe to call from any
// goroutine; within a tick, due schedules execute sequentially.
type Service struct {
	store   gtlib.ScheduleStore
	submit  gtlib.Submitter
	sel     *Selector
	log     *log.Logger
	metrics *monitoring.Metrics
	cfg     Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewService(store gtlib.ScheduleStore, submit gtlib.Submitter, l *log.Logger, m *monitoring.Metrics, cfg Config) *Service {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return &Service{
		store:   store,
		submit:  submit,
		sel:     NewSelector(store, cfg.Tolerance),
		log:     l,
		metrics: m,
		cfg:     cfg,
	}
}

// Start launches the polling loop. Calling Start on a running service is a
// no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop cancels the loop and blocks until it has exited. An execution in
// flight finishes; no new poll is issued. Stopping a stopped service is a
// no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	if s.cfg.CatchUpMissed {
		s.catchUpMissed(ctx)
	}
	s.tick(ctx, time.Now())
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

// tick runs one poll cycle. A selector failure aborts the whole cycle (the
// next timer fire retries); a failure on one schedule only skips that
// schedule.
func (s *Service) tick(ctx context.Context, now time.Time) {
	start := time.Now()
	due, err := s.sel.SelectDue(now)
	if err != nil {
		s.log.Printf("scheduler: %v\n", err)
		return
	}
	for _, sched := range due {
		if _, err := s.executeOne(ctx, sched, time.Now()); err != nil {
			s.log.Printf("scheduler: schedule %s: %v\n", sched.Id, err)
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveTick(time.Since(start).Seconds())
		if actives, err := s.store.ActiveSchedules(); err == nil {
			s.metrics.SetActiveSchedules(len(actives))
		}
	}
}

// catchUpMissed fires, once each, active schedules whose cached occurrence
// passed beyond tolerance while no loop was running.
func (s *Service) catchUpMissed(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-s.cfg.Tolerance)
	candidates, err := s.store.SchedulesToExecute(0, cutoff.Unix())
	if err != nil {
		s.log.Printf("scheduler: catch-up query: %v\n", err)
		return
	}
	for _, sched := range candidates {
		if sched.IsExpired(now) || sched.NextExecutionAt.IsZero() {
			continue
		}
		if !sched.NextExecutionAt.Before(cutoff) {
			continue
		}
		s.log.Printf("scheduler: catching up schedule %s missed at %s\n",
			sched.Id, sched.NextExecutionAt.Format(time.RFC3339))
		if _, err := s.executeOne(ctx, sched, time.Now()); err != nil {
			s.log.Printf("scheduler: schedule %s: %v\n", sched.Id, err)
		}
	}
}

// ExecuteNow runs one schedule immediately, skipping due detection and
// tolerance. Bookkeeping advances exactly as for a timed firing. Inactive
// and expired schedules are refused.
func (s *Service) ExecuteNow(ctx context.Context, scheduleId string) (*gtlib.ScheduledDownload, error) {
	sched, err := s.store.Schedule(scheduleId)
	if err != nil {
		return nil, err
	}
	if !sched.IsActive {
		return nil, ErrScheduleInactive
	}
	if sched.IsExpired(time.Now()) {
		return nil, ErrScheduleExpired
	}
	return s.executeOne(ctx, sched, time.Now())
}

// executeOne performs one firing attempt: build the request, submit, write
// the audit record, advance bookkeeping. Bookkeeping advances whether or
// not submission succeeded, so a failed occurrence is not retried until its
// next computed occurrence. Only storage failures are returned.
func (s *Service) executeOne(ctx context.Context, sched *gtlib.Schedule, now time.Time) (*gtlib.ScheduledDownload, error) {
	rec := gtlib.NewRecord(sched.Id, now)
	req, err := sched.BuildSubmitRequest()
	if err != nil {
		rec.Fail(err.Error(), time.Now())
	} else if id, err := s.submit.Submit(ctx, req); err != nil {
		rec.Fail(err.Error(), time.Now())
	} else {
		rec.Succeed(id, time.Now())
	}

	if s.metrics != nil {
		if rec.IsSuccessful {
			s.metrics.DownloadSubmitted()
			s.metrics.ExecutionSucceeded()
		} else {
			s.metrics.ExecutionFailed()
		}
	}

	var errs []error
	if err := s.store.RecordExecution(rec); err != nil {
		errs = append(errs, fmt.Errorf("record execution: %w", err))
	}
	if err := s.store.MarkExecuted(sched.Id, rec.ExecutedAt); err != nil {
		errs = append(errs, fmt.Errorf("mark executed: %w", err))
	} else {
		sched.LastExecutedAt = rec.ExecutedAt
		sched.ExecutionCount++
		if next, ok := sched.NextExecution(rec.ExecutedAt); ok {
			if err := s.store.SetNextExecution(sched.Id, next); err != nil {
				errs = append(errs, fmt.Errorf("cache next occurrence: %w", err))
			}
		}
	}

	if s.cfg.OnExecuted != nil {
		s.cfg.OnExecuted(rec)
	}
	return rec, errors.Join(errs...)
}
