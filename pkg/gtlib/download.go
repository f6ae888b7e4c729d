package gtlib

import "time"

// DownloadStatus is the remote job state reported by the download server.
type DownloadStatus string

const (
	StatusPending        DownloadStatus = "pending"
	StatusExtractingInfo DownloadStatus = "extracting_info"
	StatusDownloading    DownloadStatus = "downloading"
	StatusProcessing     DownloadStatus = "processing"
	StatusCompleted      DownloadStatus = "completed"
	StatusFailed         DownloadStatus = "failed"
	StatusCanceled       DownloadStatus = "canceled"
	StatusPaused         DownloadStatus = "paused"
)

// IsActive reports whether the server is still working on the job.
func (s DownloadStatus) IsActive() bool {
	return s == StatusExtractingInfo || s == StatusDownloading || s == StatusProcessing
}

// IsFinished reports whether the job reached a terminal state.
func (s DownloadStatus) IsFinished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// CanCancel reports whether the job can still be canceled.
func (s DownloadStatus) CanCancel() bool {
	return s == StatusPending || s == StatusPaused || s.IsActive()
}

// Download is the locally tracked view of a remote download job. It is a
// cache of server state, refreshed from REST responses and push events;
// the server remains authoritative.
type Download struct {
	Id              string         `json:"id"`
	Url             string         `json:"url"`
	Title           string         `json:"title"`
	Thumbnail       string         `json:"thumbnail,omitempty"`
	Status          DownloadStatus `json:"status"`
	Progress        float64        `json:"progress"`
	Speed           int64          `json:"speed"`
	Eta             int64          `json:"eta,omitempty"`
	DownloadedBytes int64          `json:"downloaded_bytes"`
	TotalBytes      int64          `json:"total_bytes,omitempty"`
	Quality         string         `json:"quality"`
	Format          string         `json:"format"`
	Folder          string         `json:"folder,omitempty"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	AddedAt         time.Time      `json:"added_at"`
	CompletedAt     time.Time      `json:"completed_at,omitzero"`
	OutputPath      string         `json:"output_path,omitempty"`
}
