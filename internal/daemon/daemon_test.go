package daemon_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pergola/internal/api"
	"pergola/internal/auth"
	"pergola/internal/blob"
	"pergola/internal/daemon"
	"pergola/internal/server"
	"pergola/internal/session"
	"pergola/internal/testsupport"
	"pergola/internal/workflow"
)

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	blobs, err := blob.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("blob.Open: %v", err)
	}
	engine := workflow.NewEngine(st, nil, nil)
	svc := api.NewService(st, engine, blobs, auth.NewService(st, cfg))
	srv := server.New(cfg, svc, session.NewManager(cfg), nil)

	d, err := daemon.New(cfg, st, srv, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newDaemon(t)
	t.Cleanup(func() {
		d.Stop()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.APIAddress == "" {
		t.Fatal("expected a bound api address")
	}

	resp, err := http.Get("http://" + status.APIAddress + "/api/health")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	// Second start should fail.
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonStatusWhenStopped(t *testing.T) {
	d := newDaemon(t)

	status := d.Status()
	if status.Running {
		t.Fatal("new daemon should not report running")
	}
	if status.DatabasePath == "" || status.LockFilePath == "" {
		t.Fatalf("expected paths in status, got %+v", status)
	}
}
