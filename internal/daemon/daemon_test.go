package daemon_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"shelfsync/internal/api"
	"shelfsync/internal/config"
	"shelfsync/internal/daemon"
	"shelfsync/internal/manager"
	"shelfsync/internal/testsupport"
)

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	mgr, err := manager.New(cfg, manager.WithHTTPClient(testsupport.HTTPClient(t)))
	if err != nil {
		t.Fatalf("manager.New: %v", err)
	}
	d, err := daemon.New(cfg, mgr, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1")
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent))
	d := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockFilePath != cfg.LockPath() {
		t.Fatalf("lock path = %q", status.LockFilePath)
	}

	client := testsupport.HTTPClient(t)
	resp, err := client.Get("http://" + status.Address + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	var payload api.StatusResponse
	err = json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(payload.Agents) != 1 || payload.Agents[0].Name != "nas-1" {
		t.Fatalf("unexpected status %d %+v", resp.StatusCode, payload)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	agent := testsupport.NewFakeAgent(t, "nas-1")
	cfg := testsupport.NewConfig(t, testsupport.WithAgents(agent))
	first := newDaemon(t, cfg)
	second := newDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := second.Start(ctx); !errors.Is(err, daemon.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release failed: %v", err)
	}
}
