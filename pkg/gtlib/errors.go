package gtlib

import "errors"

var (
	ErrInvalidRecurrence = errors.New("invalid recurrence definition")

	ErrScheduleNotFound = errors.New("schedule not found")
	ErrRecordNotFound   = errors.New("execution record not found")
	ErrDownloadNotFound = errors.New("download not found")

	ErrNoActionableURL = errors.New("schedule metadata has no actionable url")
)
