package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.Secret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/pergola/config.toml"
		}
		return fmt.Errorf("session.secret is required. Set PERGOLA_SESSION_SECRET env var or edit %s (create with 'pergola config init')", defaultPath)
	}
	if len(c.Session.Secret) < 16 {
		return errors.New("session.secret must be at least 16 characters")
	}
	if c.Session.InactivityMinutes <= 0 {
		return errors.New("session.inactivity_minutes must be positive")
	}
	if c.Session.TTLHours <= 0 {
		return errors.New("session.ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateBlob() error {
	switch c.Blob.Driver {
	case BlobDriverFS:
		if c.Paths.BlobDir == "" {
			return errors.New("paths.blob_dir must be set when blob.driver is fs")
		}
	case BlobDriverS3:
		if c.Blob.S3Bucket == "" {
			return errors.New("blob.s3_bucket must be set when blob.driver is s3")
		}
	default:
		return fmt.Errorf("blob.driver must be %q or %q", BlobDriverFS, BlobDriverS3)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
