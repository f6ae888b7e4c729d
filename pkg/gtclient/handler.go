package gtclient

import (
	"encoding/json"

	"github.com/grabtube/grabtube/common"
)

// Handler processes a pushed daemon update. Implementations receive the
// raw JSON message and are responsible for unmarshaling it.
type Handler interface {
	Handle(json.RawMessage) error
}

// NewDownloadingHandler creates a handler for download progress updates.
// The action parameter filters to a single downloading action; pass an
// empty string to receive all of them.
func NewDownloadingHandler(action common.DownloadingAction, callback func(*common.DownloadingResponse) error) *DownloadingHandler {
	return &DownloadingHandler{
		Action:   action,
		Callback: callback,
	}
}

// DownloadingHandler processes download progress updates, filtered by
// action.
type DownloadingHandler struct {
	Action   common.DownloadingAction
	Callback func(*common.DownloadingResponse) error
}

func (h *DownloadingHandler) Handle(m json.RawMessage) error {
	var v common.DownloadingResponse
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	if h.Action != "" && v.Action != h.Action {
		return nil
	}
	return h.Callback(&v)
}

// NewScheduleExecutedHandler creates a handler for schedule firing
// broadcasts.
func NewScheduleExecutedHandler(callback func(*common.ScheduleExecutedResponse) error) *ScheduleExecutedHandler {
	return &ScheduleExecutedHandler{Callback: callback}
}

// ScheduleExecutedHandler processes schedule firing broadcasts.
type ScheduleExecutedHandler struct {
	Callback func(*common.ScheduleExecutedResponse) error
}

func (h *ScheduleExecutedHandler) Handle(m json.RawMessage) error {
	var v common.ScheduleExecutedResponse
	if err := json.Unmarshal(m, &v); err != nil {
		return err
	}
	return h.Callback(&v)
}
