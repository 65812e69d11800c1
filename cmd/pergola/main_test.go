package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pergola/internal/api"
	"pergola/internal/auth"
	"pergola/internal/blob"
	"pergola/internal/server"
	"pergola/internal/session"
	"pergola/internal/store"
	"pergola/internal/testsupport"
	"pergola/internal/workflow"
)

type cliTestEnv struct {
	serverURL  string
	configPath string
	store      *store.Store
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	configPath := filepath.Join(t.TempDir(), "pergola.toml")
	configBody := "[session]\nsecret = \"cli-test-session-secret\"\n"
	if err := os.WriteFile(configPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	blobs, err := blob.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("blob.Open: %v", err)
	}
	engine := workflow.NewEngine(st, nil, nil)
	svc := api.NewService(st, engine, blobs, auth.NewService(st, cfg))
	srv := server.New(cfg, svc, session.NewManager(cfg), nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &cliTestEnv{serverURL: ts.URL, configPath: configPath, store: st}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--server", env.serverURL, "--token", "testsupport-service-token", "--config", env.configPath}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "ok") {
		t.Fatalf("unexpected status output: %q", out)
	}
}

func TestCLIPipelines(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "pipelines")
	if err != nil {
		t.Fatalf("pipelines: %v", err)
	}
	for _, want := range []string{"Commercial", "Delivery", "closed_won", "completed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("pipelines output missing %q: %q", want, out)
		}
	}
}

func TestCLIOpportunityLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "opportunity", "create", "Fence project", "--amount", "8000", "--priority", "high")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Created opportunity Fence project") {
		t.Fatalf("unexpected create output: %q", out)
	}

	out, _, err = runCLI(t, env, "opportunity", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Fence project") {
		t.Fatalf("list output missing deal: %q", out)
	}

	pipeline, err := env.store.GetPipelineBySlug(context.Background(), store.PipelineCommercial)
	if err != nil {
		t.Fatalf("commercial pipeline: %v", err)
	}
	opps, err := env.store.ListOpportunities(context.Background(), pipeline.ID)
	if err != nil {
		t.Fatalf("list opportunities: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}

	out, _, err = runCLI(t, env, "opportunity", "move", opps[0].ID, "--stage", "closed_won")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !strings.Contains(out, "Delivery opportunity created") {
		t.Fatalf("move output missing derivation: %q", out)
	}
}

func TestCLIMoveRequiresStage(t *testing.T) {
	env := setupCLITestEnv(t)
	opp := testsupport.NewOpportunity(t, env.store, nil)

	_, _, err := runCLI(t, env, "opportunity", "move", opp.ID)
	if err == nil {
		t.Fatal("expected move without --stage to fail")
	}
}

func TestCLIUsersInvite(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "users", "invite", "ops@example.com", "--role", "admin")
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if !strings.Contains(out, "Invite token:") {
		t.Fatalf("invite output missing token: %q", out)
	}

	out, _, err = runCLI(t, env, "users", "list")
	if err != nil {
		t.Fatalf("users list: %v", err)
	}
	if !strings.Contains(out, "No users") {
		t.Fatalf("expected empty user list before invite acceptance: %q", out)
	}
}
