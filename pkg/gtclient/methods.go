package gtclient

import (
	"encoding/json"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

func invoke[T any](c *Client, method common.UpdateType, message any) (*T, error) {
	resp, err := c.invoke(method, message)
	if err != nil {
		return nil, err
	}
	var d T
	return &d, json.Unmarshal(resp, &d)
}

// GetDaemonVersion reports the running daemon's version.
func (c *Client) GetDaemonVersion() (*common.VersionResponse, error) {
	return invoke[common.VersionResponse](c, common.UPDATE_VERSION, nil)
}

// Attach subscribes this connection to pushed updates. The returned
// snapshot holds the download list at subscription time; follow with
// Listen to receive updates.
func (c *Client) Attach() (*common.ListResponse, error) {
	return invoke[common.ListResponse](c, common.UPDATE_ATTACH, nil)
}

// DownloadOpts carries the optional knobs of an ad hoc download.
type DownloadOpts struct {
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
	Folder  string `json:"folder,omitempty"`
	Paused  bool   `json:"paused,omitempty"`
}

// Download submits an ad hoc job for url to the download server.
func (c *Client) Download(url string, opts *DownloadOpts) (*common.DownloadResponse, error) {
	if opts == nil {
		opts = &DownloadOpts{}
	}
	return invoke[common.DownloadResponse](c, common.UPDATE_DOWNLOAD, &common.DownloadParams{
		Url:       url,
		Quality:   opts.Quality,
		Format:    opts.Format,
		Folder:    opts.Folder,
		AutoStart: !opts.Paused,
	})
}

// List returns the cached download list, restricted to unfinished
// downloads when activeOnly is set.
func (c *Client) List(activeOnly bool) (*common.ListResponse, error) {
	return invoke[common.ListResponse](c, common.UPDATE_LIST, &common.ListParams{
		ActiveOnly: activeOnly,
	})
}

// Cancel asks the download server to stop an active download.
func (c *Client) Cancel(downloadId string) (*common.DownloadResponse, error) {
	return invoke[common.DownloadResponse](c, common.UPDATE_CANCEL, &common.InputDownloadId{
		DownloadId: downloadId,
	})
}

// ClearCompleted removes finished downloads on the server and from the
// local cache.
func (c *Client) ClearCompleted() (*common.ClearCompletedResponse, error) {
	return invoke[common.ClearCompletedResponse](c, common.UPDATE_CLEAR_COMPLETED, nil)
}

// AddSchedule stores a new recurring download.
func (c *Client) AddSchedule(sched *gtlib.Schedule) (*common.ScheduleResponse, error) {
	return invoke[common.ScheduleResponse](c, common.UPDATE_ADD_SCHEDULE, &common.ScheduleParams{
		Schedule: sched,
	})
}

// ListSchedules returns stored schedules, only active ones when
// activeOnly is set.
func (c *Client) ListSchedules(activeOnly bool) (*common.ListSchedulesResponse, error) {
	return invoke[common.ListSchedulesResponse](c, common.UPDATE_LIST_SCHEDULES, &common.ListSchedulesParams{
		ActiveOnly: activeOnly,
	})
}

// GetSchedule fetches a single schedule by id.
func (c *Client) GetSchedule(scheduleId string) (*common.ScheduleResponse, error) {
	return invoke[common.ScheduleResponse](c, common.UPDATE_GET_SCHEDULE, &common.InputScheduleId{
		ScheduleId: scheduleId,
	})
}

// UpdateSchedule replaces a schedule's definition, preserving its
// execution bookkeeping.
func (c *Client) UpdateSchedule(sched *gtlib.Schedule) (*common.ScheduleResponse, error) {
	return invoke[common.ScheduleResponse](c, common.UPDATE_UPDATE_SCHEDULE, &common.ScheduleParams{
		Schedule: sched,
	})
}

// DeleteSchedule removes a schedule and its execution history.
func (c *Client) DeleteSchedule(scheduleId string) error {
	_, err := c.invoke(common.UPDATE_DELETE_SCHEDULE, &common.InputScheduleId{
		ScheduleId: scheduleId,
	})
	return err
}

// ToggleSchedule activates or pauses a schedule.
func (c *Client) ToggleSchedule(scheduleId string, active bool) (*common.ScheduleResponse, error) {
	return invoke[common.ScheduleResponse](c, common.UPDATE_TOGGLE_SCHEDULE, &common.ToggleScheduleParams{
		ScheduleId: scheduleId,
		Active:     active,
	})
}

// RunSchedule fires a schedule immediately, outside its timing. The
// response reports the outcome; a failed submission is recorded, not
// returned as a request error.
func (c *Client) RunSchedule(scheduleId string) (*common.RunScheduleResponse, error) {
	return invoke[common.RunScheduleResponse](c, common.UPDATE_RUN_SCHEDULE, &common.InputScheduleId{
		ScheduleId: scheduleId,
	})
}

// ScheduleHistory returns a schedule's execution records, newest first.
func (c *Client) ScheduleHistory(scheduleId string) (*common.ScheduleHistoryResponse, error) {
	return invoke[common.ScheduleHistoryResponse](c, common.UPDATE_SCHEDULE_HIST, &common.InputScheduleId{
		ScheduleId: scheduleId,
	})
}

// ScheduleStats returns a schedule's aggregate execution counters.
func (c *Client) ScheduleStats(scheduleId string) (*common.ScheduleStatsResponse, error) {
	return invoke[common.ScheduleStatsResponse](c, common.UPDATE_SCHEDULE_STATS, &common.InputScheduleId{
		ScheduleId: scheduleId,
	})
}
