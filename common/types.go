package common

import "github.com/grabtube/grabtube/pkg/gtlib"

type InputScheduleId struct {
	ScheduleId string `json:"schedule_id"`
}

type InputDownloadId struct {
	DownloadId string `json:"download_id"`
}

type ScheduleParams struct {
	Schedule *gtlib.Schedule `json:"schedule"`
}

type ScheduleResponse struct {
	Schedule *gtlib.Schedule `json:"schedule"`
}

type ListSchedulesParams struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

type ListSchedulesResponse struct {
	Schedules []*gtlib.Schedule `json:"schedules"`
}

type ToggleScheduleParams struct {
	ScheduleId string `json:"schedule_id"`
	Active     bool   `json:"active"`
}

type RunScheduleResponse struct {
	RecordId   string `json:"record_id"`
	DownloadId string `json:"download_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ScheduleExecutedResponse is broadcast to attached clients after a
// schedule firing attempt, successful or not.
type ScheduleExecutedResponse struct {
	ScheduleId string `json:"schedule_id"`
	RecordId   string `json:"record_id"`
	DownloadId string `json:"download_id,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type ScheduleHistoryResponse struct {
	Records []*gtlib.ScheduledDownload `json:"records"`
}

type ScheduleStatsResponse struct {
	Stats *gtlib.ExecutionStats `json:"stats"`
}

type DownloadParams struct {
	Url       string `json:"url"`
	Quality   string `json:"quality,omitempty"`
	Format    string `json:"format,omitempty"`
	Folder    string `json:"folder,omitempty"`
	AutoStart bool   `json:"auto_start"`
}

type DownloadResponse struct {
	DownloadId string `json:"download_id"`
}

type DownloadingResponse struct {
	DownloadId string            `json:"download_id"`
	Action     DownloadingAction `json:"action"`
	Progress   float64           `json:"progress,omitempty"`
	Speed      string            `json:"speed,omitempty"`
	Eta        string            `json:"eta,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type ListParams struct {
	ActiveOnly bool `json:"active_only,omitempty"`
}

type ListResponse struct {
	Downloads []*gtlib.Download `json:"downloads"`
}

type ClearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

type VersionResponse struct {
	Version string `json:"version"`
}
