package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/server"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

// addScheduleHandler stores a new schedule. A missing id and creation time
// are filled in and the next occurrence cache is primed.
func (s *Api) addScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_ADD_SCHEDULE, nil, err
	}
	sched := m.Schedule
	if sched == nil {
		return common.UPDATE_ADD_SCHEDULE, nil, errors.New("schedule is required")
	}
	if sched.Name == "" {
		return common.UPDATE_ADD_SCHEDULE, nil, errors.New("schedule name is required")
	}
	if sched.Recurrence == nil {
		return common.UPDATE_ADD_SCHEDULE, nil, errors.New("schedule has no timing definition")
	}
	if sched.Id == "" {
		sched.Id = uuid.NewString()
	}
	now := time.Now()
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = now
	}
	if next, ok := sched.NextExecution(now); ok {
		sched.NextExecutionAt = next
	}
	if err := s.store.SaveSchedule(sched); err != nil {
		return common.UPDATE_ADD_SCHEDULE, nil, err
	}
	s.log.Printf("added schedule %s (%s)\n", sched.Id, sched.Name)
	return common.UPDATE_ADD_SCHEDULE, &common.ScheduleResponse{Schedule: sched}, nil
}

func (s *Api) listSchedulesHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ListSchedulesParams
	if len(body) > 0 {
		if err := json.Unmarshal(body, &m); err != nil {
			return common.UPDATE_LIST_SCHEDULES, nil, err
		}
	}
	var (
		schedules []*gtlib.Schedule
		err       error
	)
	if m.ActiveOnly {
		schedules, err = s.store.ActiveSchedules()
	} else {
		schedules, err = s.store.Schedules()
	}
	if err != nil {
		return common.UPDATE_LIST_SCHEDULES, nil, err
	}
	return common.UPDATE_LIST_SCHEDULES, &common.ListSchedulesResponse{Schedules: schedules}, nil
}

func (s *Api) getScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputScheduleId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_GET_SCHEDULE, nil, err
	}
	sched, err := s.store.Schedule(m.ScheduleId)
	if err != nil {
		return common.UPDATE_GET_SCHEDULE, nil, err
	}
	return common.UPDATE_GET_SCHEDULE, &common.ScheduleResponse{Schedule: sched}, nil
}

// updateScheduleHandler replaces a schedule definition while keeping the
// stored bookkeeping fields, so an edit cannot reset execution history.
func (s *Api) updateScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ScheduleParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_UPDATE_SCHEDULE, nil, err
	}
	sched := m.Schedule
	if sched == nil || sched.Id == "" {
		return common.UPDATE_UPDATE_SCHEDULE, nil, errors.New("schedule id is required")
	}
	if sched.Recurrence == nil {
		return common.UPDATE_UPDATE_SCHEDULE, nil, errors.New("schedule has no timing definition")
	}
	prev, err := s.store.Schedule(sched.Id)
	if err != nil {
		return common.UPDATE_UPDATE_SCHEDULE, nil, err
	}
	sched.CreatedAt = prev.CreatedAt
	sched.LastExecutedAt = prev.LastExecutedAt
	sched.ExecutionCount = prev.ExecutionCount
	if next, ok := sched.NextExecution(time.Now()); ok {
		sched.NextExecutionAt = next
	} else {
		sched.NextExecutionAt = time.Time{}
	}
	if err := s.store.SaveSchedule(sched); err != nil {
		return common.UPDATE_UPDATE_SCHEDULE, nil, err
	}
	return common.UPDATE_UPDATE_SCHEDULE, &common.ScheduleResponse{Schedule: sched}, nil
}

func (s *Api) deleteScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputScheduleId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_DELETE_SCHEDULE, nil, err
	}
	if err := s.store.DeleteSchedule(m.ScheduleId); err != nil {
		return common.UPDATE_DELETE_SCHEDULE, nil, err
	}
	s.log.Printf("deleted schedule %s\n", m.ScheduleId)
	return common.UPDATE_DELETE_SCHEDULE, &common.ScheduleResponse{}, nil
}

func (s *Api) toggleScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.ToggleScheduleParams
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_TOGGLE_SCHEDULE, nil, err
	}
	if err := s.store.SetActive(m.ScheduleId, m.Active); err != nil {
		return common.UPDATE_TOGGLE_SCHEDULE, nil, err
	}
	sched, err := s.store.Schedule(m.ScheduleId)
	if err != nil {
		return common.UPDATE_TOGGLE_SCHEDULE, nil, err
	}
	return common.UPDATE_TOGGLE_SCHEDULE, &common.ScheduleResponse{Schedule: sched}, nil
}

// runScheduleHandler fires a schedule immediately, bypassing due detection.
// A submission failure is reported in the response, not as a request error:
// the attempt happened and was recorded.
func (s *Api) runScheduleHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputScheduleId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_RUN_SCHEDULE, nil, err
	}
	rec, err := s.sched.ExecuteNow(context.Background(), m.ScheduleId)
	if err != nil {
		return common.UPDATE_RUN_SCHEDULE, nil, err
	}
	return common.UPDATE_RUN_SCHEDULE, &common.RunScheduleResponse{
		RecordId:   rec.Id,
		DownloadId: rec.DownloadId,
		Error:      rec.ErrorMessage,
	}, nil
}

func (s *Api) scheduleHistoryHandler(_ *server.SyncConn, _ *server.Pool, body json.RawMessage) (common.UpdateType, any, error) {
	var m common.InputScheduleId
	if err := json.Unmarshal(body, &m); err != nil {
		return common.UPDATE_SCHEDULE_HIST, nil, err
	}
	records, err := s.store.Records(m.ScheduleId)
	if err != nil {
		return common.UPDATE_SCHEDULE_HIST, nil, err
	}
	return common.UPDATE_SCHEDULE_HIST, &common.ScheduleHistoryResponse{Records: records}, nil
}

func (s *Api) scheduleStatsHandler(_ *server.SyncConn, _ *server.Pool, _ json.RawMessage) (common.UpdateType, any, error) {
	stats, err := s.store.ExecutionStats()
	if err != nil {
		return common.UPDATE_SCHEDULE_STATS, nil, err
	}
	return common.UPDATE_SCHEDULE_STATS, &common.ScheduleStatsResponse{Stats: stats}, nil
}
