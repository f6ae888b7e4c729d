package common

import "time"

const (
	// MaxMessageSize bounds a single framed socket message.
	MaxMessageSize = 8 << 20

	// DefaultTCPPort is the socket server's TCP fallback port.
	DefaultTCPPort = 3848

	// TCPHost is the loopback host the TCP fallback binds and dials.
	TCPHost = "127.0.0.1"

	// DefaultDialTimeout bounds a client's connection attempt.
	DefaultDialTimeout = 5 * time.Second
)

type UpdateType string

const (
	UPDATE_VERSION         UpdateType = "version"
	UPDATE_ATTACH          UpdateType = "attach"
	UPDATE_DOWNLOAD        UpdateType = "download"
	UPDATE_DOWNLOADING     UpdateType = "downloading"
	UPDATE_LIST            UpdateType = "list"
	UPDATE_CANCEL          UpdateType = "cancel"
	UPDATE_CLEAR_COMPLETED UpdateType = "clear_completed"

	UPDATE_ADD_SCHEDULE    UpdateType = "add_schedule"
	UPDATE_LIST_SCHEDULES  UpdateType = "list_schedules"
	UPDATE_GET_SCHEDULE    UpdateType = "get_schedule"
	UPDATE_UPDATE_SCHEDULE UpdateType = "update_schedule"
	UPDATE_DELETE_SCHEDULE UpdateType = "delete_schedule"
	UPDATE_TOGGLE_SCHEDULE UpdateType = "toggle_schedule"
	UPDATE_RUN_SCHEDULE    UpdateType = "run_schedule"
	UPDATE_SCHEDULE_HIST   UpdateType = "schedule_history"
	UPDATE_SCHEDULE_STATS  UpdateType = "schedule_stats"
)

type DownloadingAction string

const (
	DownloadQueued   DownloadingAction = "download_queued"
	DownloadProgress DownloadingAction = "download_progress"
	DownloadComplete DownloadingAction = "download_complete"
	DownloadFailed   DownloadingAction = "download_failed"
	DownloadCanceled DownloadingAction = "download_canceled"
)
