package server

import (
	"context"
	"errors"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/google/uuid"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

// Custom JSON-RPC error codes.
const (
	codeScheduleNotFound = jrpc2.Code(-32001)
	codeDownloadNotFound = jrpc2.Code(-32002)
	codeExecutionFailed  = jrpc2.Code(-32003)
	codeInvalidParams    = jrpc2.Code(-32602)
)

// RemoteControl is the subset of the download server API the RPC layer
// drives directly.
type RemoteControl interface {
	gtlib.Submitter
	Cancel(ctx context.Context, downloadId string) error
	ClearCompleted(ctx context.Context) (int64, error)
}

// SchedulerControl lets RPC clients trigger and inspect the execution
// service.
type SchedulerControl interface {
	ExecuteNow(ctx context.Context, scheduleId string) (*gtlib.ScheduledDownload, error)
	Running() bool
}

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret    string // Auth token (required -- empty means RPC disabled)
	ListenAll bool   // If true, bind to 0.0.0.0 instead of 127.0.0.1
	Version   string // Daemon version
}

// RPCServer exposes the schedule and download API as JSON-RPC 2.0,
// reachable over HTTP (jhttp bridge) and WebSocket.
type RPCServer struct {
	bridge    jhttp.Bridge
	methods   handler.Map
	secret    string
	version   string
	store     gtlib.ScheduleStore
	downloads gtlib.DownloadStore
	remote    RemoteControl
	sched     SchedulerControl
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version          string `json:"version"`
	SchedulerRunning bool   `json:"schedulerRunning"`
}

// ScheduleParam wraps a full schedule definition.
type ScheduleParam struct {
	Schedule *gtlib.Schedule `json:"schedule"`
}

// ScheduleResult is the response for methods returning one schedule.
type ScheduleResult struct {
	Schedule *gtlib.Schedule `json:"schedule"`
}

// ScheduleIdParam is a common input with just a schedule id.
type ScheduleIdParam struct {
	ScheduleId string `json:"scheduleId"`
}

// ScheduleListParams is the input for schedule.list.
type ScheduleListParams struct {
	ActiveOnly bool `json:"activeOnly,omitempty"`
}

// ScheduleListResult is the response for schedule.list.
type ScheduleListResult struct {
	Schedules []*gtlib.Schedule `json:"schedules"`
}

// ToggleParams is the input for schedule.toggle.
type ToggleParams struct {
	ScheduleId string `json:"scheduleId"`
	Active     bool   `json:"active"`
}

// RunNowResult is the response for schedule.runNow.
type RunNowResult struct {
	Record *gtlib.ScheduledDownload `json:"record"`
}

// HistoryResult is the response for schedule.history.
type HistoryResult struct {
	Records []*gtlib.ScheduledDownload `json:"records"`
}

// StatsResult is the response for schedule.stats.
type StatsResult struct {
	Stats *gtlib.ExecutionStats `json:"stats"`
}

// DownloadAddParams is the input for download.add.
type DownloadAddParams struct {
	URL     string `json:"url"`
	Quality string `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
	Folder  string `json:"folder,omitempty"`
}

// DownloadAddResult is the response for download.add.
type DownloadAddResult struct {
	DownloadId string `json:"downloadId"`
}

// DownloadIdParam is a common input with just a download id.
type DownloadIdParam struct {
	DownloadId string `json:"downloadId"`
}

// DownloadListResult is the response for download.list.
type DownloadListResult struct {
	Downloads []*gtlib.Download `json:"downloads"`
}

// ClearCompletedResult is the response for download.clearCompleted.
type ClearCompletedResult struct {
	Removed int64 `json:"removed"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates an RPCServer with method handlers and the HTTP
// bridge.
func NewRPCServer(cfg *RPCConfig, store gtlib.ScheduleStore, downloads gtlib.DownloadStore, remote RemoteControl, sched SchedulerControl) *RPCServer {
	rs := &RPCServer{
		secret:    cfg.Secret,
		version:   cfg.Version,
		store:     store,
		downloads: downloads,
		remote:    remote,
		sched:     sched,
	}

	rs.methods = handler.Map{
		"system.getVersion": handler.New(rs.systemGetVersion),

		"schedule.add":     handler.New(rs.scheduleAdd),
		"schedule.list":    handler.New(rs.scheduleList),
		"schedule.get":     handler.New(rs.scheduleGet),
		"schedule.update":  handler.New(rs.scheduleUpdate),
		"schedule.delete":  handler.New(rs.scheduleDelete),
		"schedule.toggle":  handler.New(rs.scheduleToggle),
		"schedule.runNow":  handler.New(rs.scheduleRunNow),
		"schedule.history": handler.New(rs.scheduleHistory),
		"schedule.stats":   handler.New(rs.scheduleStats),

		"download.add":            handler.New(rs.downloadAdd),
		"download.list":           handler.New(rs.downloadList),
		"download.cancel":         handler.New(rs.downloadCancel),
		"download.clearCompleted": handler.New(rs.downloadClearCompleted),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	running := false
	if rs.sched != nil {
		running = rs.sched.Running()
	}
	return &VersionResult{
		Version:          rs.version,
		SchedulerRunning: running,
	}, nil
}

// scheduleAdd stores a new schedule. Missing id and creation time are
// filled in; the cached next execution is primed so due selection can
// prune without recomputing.
func (rs *RPCServer) scheduleAdd(_ context.Context, p *ScheduleParam) (*ScheduleResult, error) {
	s := p.Schedule
	if s == nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: schedule"}
	}
	if s.Name == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: schedule.name"}
	}
	if s.Recurrence == nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "schedule has no timing definition"}
	}
	if s.Id == "" {
		s.Id = uuid.NewString()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if next, ok := s.NextExecution(now); ok {
		s.NextExecutionAt = next
	}
	if err := rs.store.SaveSchedule(s); err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &ScheduleResult{Schedule: s}, nil
}

func (rs *RPCServer) scheduleList(_ context.Context, p *ScheduleListParams) (*ScheduleListResult, error) {
	var (
		schedules []*gtlib.Schedule
		err       error
	)
	if p.ActiveOnly {
		schedules, err = rs.store.ActiveSchedules()
	} else {
		schedules, err = rs.store.Schedules()
	}
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &ScheduleListResult{Schedules: schedules}, nil
}

func (rs *RPCServer) scheduleGet(_ context.Context, p *ScheduleIdParam) (*ScheduleResult, error) {
	s, err := rs.store.Schedule(p.ScheduleId)
	if err != nil {
		return nil, scheduleError(err)
	}
	return &ScheduleResult{Schedule: s}, nil
}

// scheduleUpdate replaces a schedule definition, keeping the stored
// bookkeeping fields so an edit cannot reset execution history.
func (rs *RPCServer) scheduleUpdate(_ context.Context, p *ScheduleParam) (*ScheduleResult, error) {
	s := p.Schedule
	if s == nil || s.Id == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: schedule.id"}
	}
	if s.Recurrence == nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "schedule has no timing definition"}
	}
	prev, err := rs.store.Schedule(s.Id)
	if err != nil {
		return nil, scheduleError(err)
	}
	s.CreatedAt = prev.CreatedAt
	s.LastExecutedAt = prev.LastExecutedAt
	s.ExecutionCount = prev.ExecutionCount
	if next, ok := s.NextExecution(time.Now()); ok {
		s.NextExecutionAt = next
	} else {
		s.NextExecutionAt = time.Time{}
	}
	if err := rs.store.SaveSchedule(s); err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &ScheduleResult{Schedule: s}, nil
}

func (rs *RPCServer) scheduleDelete(_ context.Context, p *ScheduleIdParam) (*EmptyResult, error) {
	if err := rs.store.DeleteSchedule(p.ScheduleId); err != nil {
		return nil, scheduleError(err)
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) scheduleToggle(_ context.Context, p *ToggleParams) (*EmptyResult, error) {
	if err := rs.store.SetActive(p.ScheduleId, p.Active); err != nil {
		return nil, scheduleError(err)
	}
	return &EmptyResult{}, nil
}

// scheduleRunNow executes the schedule immediately, bypassing due-time
// checks. Activity and expiry limits still apply inside the service.
func (rs *RPCServer) scheduleRunNow(ctx context.Context, p *ScheduleIdParam) (*RunNowResult, error) {
	if rs.sched == nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: "scheduler not running"}
	}
	rec, err := rs.sched.ExecuteNow(ctx, p.ScheduleId)
	if err != nil {
		return nil, scheduleError(err)
	}
	return &RunNowResult{Record: rec}, nil
}

func (rs *RPCServer) scheduleHistory(_ context.Context, p *ScheduleIdParam) (*HistoryResult, error) {
	records, err := rs.store.Records(p.ScheduleId)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &HistoryResult{Records: records}, nil
}

func (rs *RPCServer) scheduleStats(_ context.Context) (*StatsResult, error) {
	stats, err := rs.store.ExecutionStats()
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &StatsResult{Stats: stats}, nil
}

// downloadAdd submits an ad hoc job to the download server.
func (rs *RPCServer) downloadAdd(ctx context.Context, p *DownloadAddParams) (*DownloadAddResult, error) {
	if p.URL == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: url"}
	}
	req := &gtlib.SubmitRequest{
		URL:       p.URL,
		Quality:   p.Quality,
		Format:    p.Format,
		Folder:    p.Folder,
		AutoStart: true,
	}
	if req.Quality == "" {
		req.Quality = gtlib.DefaultQuality
	}
	if req.Format == "" {
		req.Format = "any"
	}
	id, err := rs.remote.Submit(ctx, req)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &DownloadAddResult{DownloadId: id}, nil
}

func (rs *RPCServer) downloadList(_ context.Context) (*DownloadListResult, error) {
	downloads, err := rs.downloads.Downloads()
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &DownloadListResult{Downloads: downloads}, nil
}

func (rs *RPCServer) downloadCancel(ctx context.Context, p *DownloadIdParam) (*EmptyResult, error) {
	d, err := rs.downloads.Download(p.DownloadId)
	if err != nil {
		if errors.Is(err, gtlib.ErrDownloadNotFound) {
			return nil, &jrpc2.Error{Code: codeDownloadNotFound, Message: "download not found"}
		}
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	if !d.Status.CanCancel() {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "download already finished"}
	}
	if err := rs.remote.Cancel(ctx, p.DownloadId); err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &EmptyResult{}, nil
}

// downloadClearCompleted removes finished jobs on the server and from
// the local cache.
func (rs *RPCServer) downloadClearCompleted(ctx context.Context) (*ClearCompletedResult, error) {
	if _, err := rs.remote.ClearCompleted(ctx); err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	removed, err := rs.downloads.DeleteFinishedDownloads()
	if err != nil {
		return nil, &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
	return &ClearCompletedResult{Removed: removed}, nil
}

func scheduleError(err error) error {
	switch {
	case errors.Is(err, gtlib.ErrScheduleNotFound):
		return &jrpc2.Error{Code: codeScheduleNotFound, Message: "schedule not found"}
	case errors.Is(err, gtlib.ErrNoActionableURL), errors.Is(err, gtlib.ErrInvalidRecurrence):
		return &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	default:
		return &jrpc2.Error{Code: codeExecutionFailed, Message: err.Error()}
	}
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
