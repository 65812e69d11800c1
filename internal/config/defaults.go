package config

// Blob storage driver names.
const (
	BlobDriverFS = "fs"
	BlobDriverS3 = "s3"
)

const (
	defaultDataDir                  = "~/.local/share/pergola"
	defaultLogDir                   = "~/.local/share/pergola/logs"
	defaultBlobDir                  = "~/.local/share/pergola/blobs"
	defaultAPIBind                  = "127.0.0.1:8731"
	defaultSessionInactivityMinutes = 30
	defaultSessionTTLHours          = 24 * 7
	defaultInviteHours              = 72
	defaultBlobDriver               = BlobDriverFS
	defaultS3Region                 = "us-east-1"
	defaultNotifyRequestTimeout     = 10
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			BlobDir: defaultBlobDir,
			APIBind: defaultAPIBind,
		},
		Session: Session{
			InactivityMinutes: defaultSessionInactivityMinutes,
			TTLHours:          defaultSessionTTLHours,
		},
		Admin: Admin{
			InviteHours: defaultInviteHours,
		},
		Blob: Blob{
			Driver:   defaultBlobDriver,
			S3Region: defaultS3Region,
		},
		Notifications: Notifications{
			RequestTimeout:    defaultNotifyRequestTimeout,
			DealWon:           true,
			DeliveryCompleted: true,
			PaymentCreated:    true,
			Errors:            true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
