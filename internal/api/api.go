// Package api implements the daemon's socket protocol handlers, mapping
// framed-JSON requests from the CLI onto the schedule store, the execution
// service, and the download server client.
package api

import (
	"log"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/server"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

type Api struct {
	log       *log.Logger
	store     gtlib.ScheduleStore
	downloads gtlib.DownloadStore
	remote    server.RemoteControl
	sched     server.SchedulerControl
	version   string
}

func NewApi(l *log.Logger, store gtlib.ScheduleStore, downloads gtlib.DownloadStore, remote server.RemoteControl, sched server.SchedulerControl, version string) *Api {
	return &Api{
		log:       l,
		store:     store,
		downloads: downloads,
		remote:    remote,
		sched:     sched,
		version:   version,
	}
}

func (s *Api) RegisterHandlers(srv *server.Server) {
	// schedule API methods
	srv.RegisterHandler(common.UPDATE_ADD_SCHEDULE, s.addScheduleHandler)
	srv.RegisterHandler(common.UPDATE_LIST_SCHEDULES, s.listSchedulesHandler)
	srv.RegisterHandler(common.UPDATE_GET_SCHEDULE, s.getScheduleHandler)
	srv.RegisterHandler(common.UPDATE_UPDATE_SCHEDULE, s.updateScheduleHandler)
	srv.RegisterHandler(common.UPDATE_DELETE_SCHEDULE, s.deleteScheduleHandler)
	srv.RegisterHandler(common.UPDATE_TOGGLE_SCHEDULE, s.toggleScheduleHandler)
	srv.RegisterHandler(common.UPDATE_RUN_SCHEDULE, s.runScheduleHandler)
	srv.RegisterHandler(common.UPDATE_SCHEDULE_HIST, s.scheduleHistoryHandler)
	srv.RegisterHandler(common.UPDATE_SCHEDULE_STATS, s.scheduleStatsHandler)

	// download API methods
	srv.RegisterHandler(common.UPDATE_DOWNLOAD, s.downloadHandler)
	srv.RegisterHandler(common.UPDATE_LIST, s.listHandler)
	srv.RegisterHandler(common.UPDATE_CANCEL, s.cancelHandler)
	srv.RegisterHandler(common.UPDATE_CLEAR_COMPLETED, s.clearCompletedHandler)

	// daemon API methods
	srv.RegisterHandler(common.UPDATE_ATTACH, s.attachHandler)
	srv.RegisterHandler(common.UPDATE_VERSION, s.versionHandler)
}
