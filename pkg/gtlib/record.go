package gtlib

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledDownload is the audit record of one firing attempt of a
// Schedule. It is written once per attempt, success or failure, and never
// mutated afterwards except to fill in the outcome fields at the end of
// that same attempt.
type ScheduledDownload struct {
	// Id is the unique identifier of the record.
	Id string `json:"id"`
	// ScheduleId references the owning schedule.
	ScheduleId string `json:"schedule_id"`
	// DownloadId is the job identifier returned by the server, or ""
	// if no job was created.
	DownloadId string `json:"download_id"`
	// ScheduledAt is when the engine decided to fire.
	ScheduledAt time.Time `json:"scheduled_at"`
	// ExecutedAt is when the attempt finished. Zero until then.
	ExecutedAt time.Time `json:"executed_at,omitzero"`
	// IsExecuted reports whether the attempt ran to completion.
	IsExecuted bool `json:"is_executed"`
	// IsSuccessful reports whether a job was submitted successfully.
	IsSuccessful bool `json:"is_successful"`
	// ErrorMessage carries the failure cause, if any.
	ErrorMessage string `json:"error_message,omitempty"`
	// Result is an optional key/value payload describing the outcome.
	Result map[string]string `json:"result,omitempty"`
}

// NewRecord creates a fresh, not-yet-executed record for one firing
// attempt of the given schedule.
func NewRecord(scheduleId string, scheduledAt time.Time) *ScheduledDownload {
	return &ScheduledDownload{
		Id:          uuid.NewString(),
		ScheduleId:  scheduleId,
		ScheduledAt: scheduledAt,
	}
}

// Succeed marks the record as a successful submission of downloadId.
func (r *ScheduledDownload) Succeed(downloadId string, at time.Time) {
	r.DownloadId = downloadId
	r.ExecutedAt = at
	r.IsExecuted = true
	r.IsSuccessful = true
}

// Fail marks the record as a failed attempt with the given cause.
func (r *ScheduledDownload) Fail(cause string, at time.Time) {
	r.DownloadId = ""
	r.ExecutedAt = at
	r.IsExecuted = true
	r.IsSuccessful = false
	r.ErrorMessage = cause
}

// ExecutionStats aggregates schedule and execution counts for display.
type ExecutionStats struct {
	TotalSchedules       int `json:"total_schedules"`
	ActiveSchedules      int `json:"active_schedules"`
	TotalExecutions      int `json:"total_executions"`
	SuccessfulExecutions int `json:"successful_executions"`
}
