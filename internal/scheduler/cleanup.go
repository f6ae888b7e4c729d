package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adhocore/gronx"

	"github.com/grabtube/grabtube/internal/monitoring"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

const (
	// DefaultCleanupSpec prunes the execution history every night at 03:30.
	DefaultCleanupSpec = "30 3 * * *"

	// DefaultRetention keeps a month of executed audit records.
	DefaultRetention = 30 * 24 * time.Hour

	// maxSleepCap bounds a single timer sleep so NTP steps, DST
	// transitions and system sleep cannot stall the job for long.
	maxSleepCap = 60 * time.Second
)

// Cleanup deletes executed audit records older than the retention window on
// a cron cadence.
type Cleanup struct {
	store     gtlib.ScheduleStore
	log       *log.Logger
	metrics   *monitoring.Metrics
	spec      string
	retention time.Duration
}

func NewCleanup(store gtlib.ScheduleStore, l *log.Logger, m *monitoring.Metrics, spec string, retention time.Duration) (*Cleanup, error) {
	if spec == "" {
		spec = DefaultCleanupSpec
	}
	if !gronx.IsValid(spec) {
		return nil, fmt.Errorf("invalid cleanup cron expression %q", spec)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cleanup{store: store, log: l, metrics: m, spec: spec, retention: retention}, nil
}

// Run blocks until ctx is cancelled, sweeping each time the cron expression
// fires.
func (c *Cleanup) Run(ctx context.Context) {
	for {
		next, err := gronx.NextTickAfter(c.spec, time.Now(), false)
		if err != nil {
			c.log.Printf("cleanup: %v\n", err)
			return
		}
		if !c.sleepUntil(ctx, next) {
			return
		}
		c.sweep(time.Now())
	}
}

// sleepUntil waits for the target instant in capped increments, re-checking
// the wall clock after each one. Returns false if ctx was cancelled.
func (c *Cleanup) sleepUntil(ctx context.Context, target time.Time) bool {
	for {
		dur := time.Until(target)
		if dur <= 0 {
			return true
		}
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		timer := time.NewTimer(dur)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func (c *Cleanup) sweep(now time.Time) {
	n, err := c.store.DeleteOldRecords(now.Add(-c.retention))
	if err != nil {
		c.log.Printf("cleanup: %v\n", err)
		return
	}
	if n > 0 {
		c.log.Printf("cleanup: removed %d execution records\n", n)
	}
	if c.metrics != nil {
		c.metrics.RecordsPruned(n)
	}
}
