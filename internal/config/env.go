package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides holds values that may be supplied through the environment
// instead of the config file. Secrets should arrive this way so config files
// can be committed without credentials.
type envOverrides struct {
	APIBind         string `env:"PERGOLA_API_BIND"`
	SessionSecret   string `env:"PERGOLA_SESSION_SECRET"`
	ServiceToken    string `env:"PERGOLA_SERVICE_TOKEN"`
	NtfyTopic       string `env:"PERGOLA_NTFY_TOPIC"`
	BlobDriver      string `env:"PERGOLA_BLOB_DRIVER"`
	BlobS3Bucket    string `env:"PERGOLA_BLOB_S3_BUCKET"`
	BlobS3Region    string `env:"PERGOLA_BLOB_S3_REGION"`
	BlobS3Endpoint  string `env:"PERGOLA_BLOB_S3_ENDPOINT"`
	BlobS3PathStyle bool   `env:"PERGOLA_BLOB_S3_PATH_STYLE"`
}

func (c *Config) applyEnvOverrides() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env overrides: %w", err)
	}

	if v := strings.TrimSpace(overrides.APIBind); v != "" {
		c.Paths.APIBind = v
	}
	if v := strings.TrimSpace(overrides.SessionSecret); v != "" {
		c.Session.Secret = v
	}
	if v := strings.TrimSpace(overrides.ServiceToken); v != "" {
		c.Admin.ServiceToken = v
	}
	if v := strings.TrimSpace(overrides.NtfyTopic); v != "" {
		c.Notifications.NtfyTopic = v
	}
	if v := strings.TrimSpace(overrides.BlobDriver); v != "" {
		c.Blob.Driver = v
	}
	if v := strings.TrimSpace(overrides.BlobS3Bucket); v != "" {
		c.Blob.S3Bucket = v
	}
	if v := strings.TrimSpace(overrides.BlobS3Region); v != "" {
		c.Blob.S3Region = v
	}
	if v := strings.TrimSpace(overrides.BlobS3Endpoint); v != "" {
		c.Blob.S3Endpoint = v
	}
	if overrides.BlobS3PathStyle {
		c.Blob.S3PathStyle = true
	}
	return nil
}
