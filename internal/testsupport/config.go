package testsupport

import (
	"path/filepath"
	"testing"

	"pergola/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.BlobDir = filepath.Join(base, "blobs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Session.Secret = "testsupport-session-secret"
	cfg.Admin.ServiceToken = "testsupport-service-token"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithInactivityMinutes overrides the session inactivity timeout.
func WithInactivityMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Session.InactivityMinutes = minutes
	}
}

// WithNtfyTopic points notifications at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
	}
}
