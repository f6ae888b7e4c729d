// Package daemon wires the GrabTube daemon together: storage, the download
// server client, the execution service, and the socket and web control
// surfaces. It owns startup order and reverse-order shutdown.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/api"
	"github.com/grabtube/grabtube/internal/monitoring"
	"github.com/grabtube/grabtube/internal/scheduler"
	"github.com/grabtube/grabtube/internal/server"
	"github.com/grabtube/grabtube/pkg/gtlib"
	"github.com/grabtube/grabtube/pkg/logger"
	"github.com/grabtube/grabtube/pkg/remote"
)

// ErrAlreadyRunning is returned when Run is called on running components.
var ErrAlreadyRunning = errors.New("daemon is already running")

const shutdownTimeout = 5 * time.Second

// Components holds every initialized daemon component, so console mode and
// service mode share one initialization and cleanup path.
type Components struct {
	Store     *gtlib.SqliteStore
	Remote    *remote.Client
	Listener  *remote.Listener
	Scheduler *scheduler.Service
	Cleanup   *scheduler.Cleanup
	Api       *api.Api
	Server    *server.Server
	Metrics   *monitoring.Metrics

	log logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	bg      sync.WaitGroup
}

// Init builds all daemon components. reg receives the metric collectors;
// production passes prometheus.DefaultRegisterer so the web server's
// /metrics endpoint picks them up.
func Init(cfg *Config, lg logger.Logger, reg prometheus.Registerer) (*Components, error) {
	std := logger.ToStdLogger(lg)
	metrics := monitoring.New(reg)

	store, err := gtlib.OpenStore(cfg.DBPath)
	if err != nil {
		lg.Error("storage initialization failed: %v", err)
		return nil, err
	}

	client := remote.NewClient(cfg.ServerURL, cfg.ServerToken)
	notifier := server.NewRPCNotifier(std)

	var pool *server.Pool // set below, captured by the event callbacks

	svc := scheduler.NewService(store, client, std, metrics, scheduler.Config{
		TickInterval:  cfg.TickInterval,
		CatchUpMissed: cfg.CatchUpMissed,
		OnExecuted: func(rec *gtlib.ScheduledDownload) {
			notifier.Broadcast("schedule.executed", server.ScheduleExecutedNotification{
				ScheduleId: rec.ScheduleId,
				RecordId:   rec.Id,
				DownloadId: rec.DownloadId,
				Success:    rec.IsSuccessful,
				Error:      rec.ErrorMessage,
			})
			pool.Broadcast(server.MakeResult(common.UPDATE_RUN_SCHEDULE, &common.ScheduleExecutedResponse{
				ScheduleId: rec.ScheduleId,
				RecordId:   rec.Id,
				DownloadId: rec.DownloadId,
				Success:    rec.IsSuccessful,
				Error:      rec.ErrorMessage,
			}))
		},
	})

	cleanup, err := scheduler.NewCleanup(store, std, metrics, cfg.CleanupSpec, cfg.Retention)
	if err != nil {
		lg.Error("cleanup job initialization failed: %v", err)
		store.Close()
		return nil, err
	}

	listener := remote.NewListener(client, store, std, func(ev remote.Event) {
		notifier.Broadcast("download.event", server.DownloadEventNotification{
			DownloadId: ev.DownloadId,
			Status:     string(ev.Status),
			Progress:   ev.Progress,
			Speed:      ev.Speed,
			Eta:        ev.Eta,
			Error:      ev.Error,
		})
		pool.Broadcast(server.MakeResult(common.UPDATE_DOWNLOADING, downloadingResponse(ev)))
	})

	rpc := server.NewRPCServer(&server.RPCConfig{
		Secret:    cfg.RPCSecret,
		ListenAll: cfg.ListenAll,
		Version:   cfg.Version,
	}, store, store, client, svc)
	web := server.NewWebServer(std, rpc, notifier, cfg.WebPort, cfg.ListenAll)

	serv := server.NewServer(std, web, cfg.Port)
	pool = serv.Pool()
	pool.OnCountChange(metrics.SetAttachedClients)

	a := api.NewApi(std, store, store, client, svc, cfg.Version)
	a.RegisterHandlers(serv)

	return &Components{
		Store:     store,
		Remote:    client,
		Listener:  listener,
		Scheduler: svc,
		Cleanup:   cleanup,
		Api:       a,
		Server:    serv,
		Metrics:   metrics,
		log:       lg,
	}, nil
}

func downloadingResponse(ev remote.Event) *common.DownloadingResponse {
	resp := &common.DownloadingResponse{
		DownloadId: ev.DownloadId,
		Progress:   ev.Progress,
		Speed:      ev.Speed,
		Eta:        ev.Eta,
		Error:      ev.Error,
	}
	if resp.DownloadId == "" && ev.Download != nil {
		resp.DownloadId = ev.Download.Id
	}
	switch {
	case ev.Download != nil && ev.Download.Status == gtlib.StatusPending:
		resp.Action = common.DownloadQueued
	case ev.Status == gtlib.StatusCompleted:
		resp.Action = common.DownloadComplete
	case ev.Status == gtlib.StatusFailed:
		resp.Action = common.DownloadFailed
	case ev.Status == gtlib.StatusCanceled:
		resp.Action = common.DownloadCanceled
	default:
		resp.Action = common.DownloadProgress
	}
	return resp
}

// Run starts the background workers and the socket server, blocking until
// ctx is cancelled or the server fails.
func (c *Components) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	bgCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	c.Scheduler.Start()

	c.bg.Add(2)
	std := logger.ToStdLogger(c.log)
	gtlib.SafeGo(std, "event listener", func() {
		defer c.bg.Done()
		c.Listener.Run(bgCtx)
	})
	gtlib.SafeGo(std, "record cleanup", func() {
		defer c.bg.Done()
		c.Cleanup.Run(bgCtx)
	})

	c.log.Info("daemon started")
	err := c.Server.Start(ctx)
	c.Close()
	return err
}

// Close releases all daemon resources in reverse order of initialization.
// Safe to call more than once.
func (c *Components) Close() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	c.log.Info("shutting down daemon")

	cancel()
	done := make(chan struct{})
	go func() {
		c.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		c.log.Warning("background workers did not stop in time")
	}

	_ = c.Server.Shutdown()
	c.Scheduler.Stop()
	if err := c.Store.Close(); err != nil {
		c.log.Error("closing storage: %v", err)
	}
	c.log.Info("daemon stopped")
}
