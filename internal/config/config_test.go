package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pergola/internal/config"
)

func TestLoadDefaultConfigUsesEnvSecretAndExpandsPaths(t *testing.T) {
	t.Setenv("PERGOLA_SESSION_SECRET", "unit-test-secret-value")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "pergola")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8731" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Session.Secret != "unit-test-secret-value" {
		t.Fatalf("expected session secret from env, got %q", cfg.Session.Secret)
	}
	if cfg.Session.InactivityMinutes != 30 {
		t.Fatalf("unexpected inactivity timeout: %d", cfg.Session.InactivityMinutes)
	}
	if cfg.Blob.Driver != config.BlobDriverFS {
		t.Fatalf("unexpected blob driver: %q", cfg.Blob.Driver)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "pergola.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.BlobDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadParsesFileAndAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`api_bind = "127.0.0.1:9999"`,
		"[session]",
		`secret = "file-secret-long-enough"`,
		"inactivity_minutes = 15",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("PERGOLA_API_BIND", "127.0.0.1:7777")

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.APIBind != "127.0.0.1:7777" {
		t.Fatalf("env override not applied, got %q", cfg.Paths.APIBind)
	}
	if cfg.Session.InactivityMinutes != 15 {
		t.Fatalf("unexpected inactivity timeout: %d", cfg.Session.InactivityMinutes)
	}
}

func TestValidateRejectsMissingSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing session secret")
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Session.Secret = "short"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short session secret")
	}
}

func TestValidateRejectsUnknownBlobDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Session.Secret = "long-enough-secret-value"
	cfg.Blob.Driver = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown blob driver")
	}
}

func TestValidateRequiresBucketForS3(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Session.Secret = "long-enough-secret-value"
	cfg.Blob.Driver = config.BlobDriverS3
	cfg.Blob.S3Bucket = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing s3 bucket")
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[session]") {
		t.Fatal("sample config missing session section")
	}
}
