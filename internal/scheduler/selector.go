package scheduler

import (
	"fmt"
	"time"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

const (
	// DefaultTolerance is the due window around a poll instant.
	DefaultTolerance = time.Minute

	// defaultWindow pads the storage range query around the poll instant.
	// Wider than the tolerance so clock skew between the cached value and
	// the recomputation never hides a due schedule.
	defaultWindow = 5 * time.Minute
)

// Selector finds schedules that are due at a given instant. The storage
// range query is only a pruning hint; every candidate's occurrence is
// recomputed so manual edits take effect on the very next poll.
type Selector struct {
	store     gtlib.ScheduleStore
	tolerance time.Duration
	window    time.Duration
}

func NewSelector(store gtlib.ScheduleStore, tolerance time.Duration) *Selector {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Selector{store: store, tolerance: tolerance, window: defaultWindow}
}

// SelectDue returns the schedules due at ref, ordered as storage returned
// them (ascending cached occurrence, uncached first). Expired schedules are
// excluded even when their cached occurrence still looks current.
func (sel *Selector) SelectDue(ref time.Time) ([]*gtlib.Schedule, error) {
	lower := ref.Add(-sel.window).Unix()
	upper := ref.Add(sel.window).Unix()
	candidates, err := sel.store.SchedulesToExecute(lower, upper)
	if err != nil {
		return nil, fmt.Errorf("due selection query: %w", err)
	}

	due := make([]*gtlib.Schedule, 0, len(candidates))
	for _, s := range candidates {
		if s.IsExpired(ref) {
			continue
		}
		if s.ShouldExecute(ref, sel.tolerance) {
			due = append(due, s)
			continue
		}
		// Not due: refresh a stale cache so the range query keeps
		// pruning. Best effort, the cache is only a hint.
		if next, ok := s.NextExecution(ref); ok && !next.Equal(s.NextExecutionAt) {
			_ = sel.store.SetNextExecution(s.Id, next)
		}
	}
	return due, nil
}
