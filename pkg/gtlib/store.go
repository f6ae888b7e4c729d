package gtlib

import "time"

// ScheduleStore is durable storage for schedule definitions, their
// execution records and the tracked-download cache.
//
// The store is expected to serialize conflicting writes: user edits and
// the execution service's bookkeeping updates may interleave, and row-level
// atomicity (MarkExecuted in particular) is what keeps them from corrupting
// each other.
type ScheduleStore interface {
	// Schedule returns the schedule with the given id, or
	// ErrScheduleNotFound.
	Schedule(id string) (*Schedule, error)
	// Schedules returns all schedules, newest first.
	Schedules() ([]*Schedule, error)
	// ActiveSchedules returns all active schedules, newest first.
	ActiveSchedules() ([]*Schedule, error)
	// SaveSchedule inserts or replaces a schedule definition.
	SaveSchedule(s *Schedule) error
	// DeleteSchedule removes a schedule and its execution records.
	DeleteSchedule(id string) error
	// SetActive toggles the user enable flag.
	SetActive(id string, active bool) error

	// SchedulesToExecute returns active schedules whose cached
	// next-execution time is unset or at most upper (epoch seconds),
	// ascending by that time. It is an optimization hint: callers must
	// re-validate with the calculator.
	SchedulesToExecute(lower, upper int64) ([]*Schedule, error)
	// SetNextExecution refreshes the cached next-execution time.
	SetNextExecution(id string, at time.Time) error
	// MarkExecuted atomically sets lastExecutedAt, increments the
	// execution count and clears the cached next-execution time.
	MarkExecuted(id string, executedAt time.Time) error

	// RecordExecution inserts or replaces an execution record. Records
	// are fully populated before the call; the store never sees a
	// partial one.
	RecordExecution(rec *ScheduledDownload) error
	// Records returns a schedule's execution records, newest first.
	Records(scheduleId string) ([]*ScheduledDownload, error)
	// DeleteOldRecords deletes executed records finished before the
	// cutoff and reports how many were removed.
	DeleteOldRecords(olderThan time.Time) (int64, error)

	// ExecutionStats aggregates schedule and execution counts.
	ExecutionStats() (*ExecutionStats, error)

	Close() error
}

// DownloadStore caches the remote download list locally.
type DownloadStore interface {
	// Download returns the cached job with the given id, or
	// ErrDownloadNotFound.
	Download(id string) (*Download, error)
	// Downloads returns all cached jobs, newest first.
	Downloads() ([]*Download, error)
	// SaveDownload inserts or replaces a cached job.
	SaveDownload(d *Download) error
	// DeleteDownload drops a job from the cache.
	DeleteDownload(id string) error
	// DeleteFinishedDownloads drops all terminal jobs from the cache.
	DeleteFinishedDownloads() (int64, error)
}
