package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/internal/scheduler"
	"github.com/grabtube/grabtube/internal/server"
	"github.com/grabtube/grabtube/pkg/logger"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(common.SocketPathEnv, filepath.Join(dir, "grabtubed.sock"))
	return &Config{
		ConfigDir:    dir,
		DBPath:       filepath.Join(dir, "grabtube.db"),
		ServerURL:    "http://127.0.0.1:1", // never reachable in tests
		CleanupSpec:  scheduler.DefaultCleanupSpec,
		Retention:    scheduler.DefaultRetention,
		TickInterval: time.Hour,
		Version:      "test",
	}
}

func TestInit_BuildsComponents(t *testing.T) {
	cfg := testConfig(t)
	c, err := Init(cfg, logger.NewNopLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer c.Store.Close()

	if c.Store == nil || c.Remote == nil || c.Listener == nil ||
		c.Scheduler == nil || c.Cleanup == nil || c.Server == nil {
		t.Errorf("Init() left components nil: %+v", c)
	}
	if got := c.Remote.BaseURL(); got != cfg.ServerURL {
		t.Errorf("remote base URL = %q, want %q", got, cfg.ServerURL)
	}
	if c.Scheduler.Running() {
		t.Error("scheduler should not run before Run()")
	}
}

func TestInit_WiresAttachedClientsGauge(t *testing.T) {
	cfg := testConfig(t)
	reg := prometheus.NewRegistry()
	c, err := Init(cfg, logger.NewNopLogger(), reg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer c.Store.Close()

	p1, p2 := net.Pipe()
	defer p1.Close()
	defer p2.Close()
	sconn := server.NewSyncConn(p1)

	c.Server.Pool().Attach(sconn)
	if got := gaugeValue(t, reg, "grabtube_attached_clients"); got != 1 {
		t.Errorf("attached clients gauge = %v after attach, want 1", got)
	}
	c.Server.Pool().Detach(sconn)
	if got := gaugeValue(t, reg, "grabtube_attached_clients"); got != 0 {
		t.Errorf("attached clients gauge = %v after detach, want 0", got)
	}
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestInit_StorageError(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBPath = filepath.Join(cfg.ConfigDir, "missing", "grabtube.db")
	if _, err := Init(cfg, logger.NewNopLogger(), prometheus.NewRegistry()); err == nil {
		t.Error("Init() with unwritable database path should fail")
	}
}

func TestInit_InvalidCleanupSpec(t *testing.T) {
	cfg := testConfig(t)
	cfg.CleanupSpec = "whenever"
	if _, err := Init(cfg, logger.NewNopLogger(), prometheus.NewRegistry()); err == nil {
		t.Error("Init() with invalid cleanup spec should fail")
	}
}

func TestRun_StartAndShutdown(t *testing.T) {
	cfg := testConfig(t)
	c, err := Init(cfg, logger.NewNopLogger(), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Run(ctx)
	}()

	// Wait for the socket to appear, proving the server is accepting.
	sock := os.Getenv(common.SocketPathEnv)
	deadline := time.After(5 * time.Second)
	for {
		if _, err := os.Stat(sock); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("daemon socket never appeared")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if !c.Scheduler.Running() {
		t.Error("Run() did not start the scheduler")
	}
	if err := c.Run(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() returned %v after cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}

	if c.Scheduler.Running() {
		t.Error("scheduler still running after shutdown")
	}
	// Close after Run has already cleaned up must be a no-op.
	c.Close()
}
