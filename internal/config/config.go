package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "padimg.json"

	// DefaultListen is the default server listen address.
	DefaultListen = ":9008"
)

// Storage backend selectors.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config is the complete padimg.json configuration. It is resolved
// once at startup and treated as immutable afterwards.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `json:"listen,omitempty"`

	// Log configures the process logger.
	Log LogConfig `json:"log,omitempty"`

	// Upload configures the upload pipeline.
	Upload UploadConfig `json:"upload,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is the handler format: text or json.
	Format string `json:"format,omitempty"`
}

// UploadConfig holds the upload constraints and the storage backend
// selection.
type UploadConfig struct {
	// FileTypes is the allowed extension list. Empty accepts any
	// declared image/* mimetype.
	FileTypes []string `json:"fileTypes,omitempty"`

	// MaxFileSize is the per-file byte limit. Zero means unlimited.
	MaxFileSize int64 `json:"maxFileSize,omitempty"`

	// Storage selects and parameterizes the backend.
	Storage StorageConfig `json:"storage,omitempty"`
}

// StorageConfig holds backend-specific parameters. Type decides which
// of the remaining fields apply.
type StorageConfig struct {
	// Type is the backend selector: "local" or "s3".
	Type string `json:"type,omitempty"`

	// AccessKeyID and SecretAccessKey are static S3 credentials.
	// When empty, the ambient AWS credential chain is used.
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`

	// Region and Bucket locate the S3 destination.
	Region string `json:"region,omitempty"`
	Bucket string `json:"bucket,omitempty"`

	// BaseFolder is the directory root for "local", or the key
	// prefix inside the bucket for "s3".
	BaseFolder string `json:"baseFolder,omitempty"`

	// BaseURL is the externally reachable URL prefix for "local"
	// storage; stored keys are appended to it.
	BaseURL string `json:"baseURL,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen: DefaultListen,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Upload: UploadConfig{
			Storage: StorageConfig{
				Type:       StorageLocal,
				BaseFolder: "uploads",
				BaseURL:    "/uploads",
			},
		},
	}
}

// Load reads the configuration file at path, falling back to defaults
// when the file does not exist, then applies environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays PADIMG_* environment variables. Secrets are the
// main use case: keeping credentials out of the config file.
func (c *Config) applyEnv() {
	setString(&c.Listen, "PADIMG_LISTEN")
	setString(&c.Log.Level, "PADIMG_LOG_LEVEL")
	setString(&c.Upload.Storage.Type, "PADIMG_STORAGE_TYPE")
	setString(&c.Upload.Storage.AccessKeyID, "PADIMG_S3_ACCESS_KEY_ID")
	setString(&c.Upload.Storage.SecretAccessKey, "PADIMG_S3_SECRET_ACCESS_KEY")
	setString(&c.Upload.Storage.Region, "PADIMG_S3_REGION")
	setString(&c.Upload.Storage.Bucket, "PADIMG_S3_BUCKET")
	setString(&c.Upload.Storage.BaseFolder, "PADIMG_STORAGE_BASE_FOLDER")
	setString(&c.Upload.Storage.BaseURL, "PADIMG_STORAGE_BASE_URL")

	if v := os.Getenv("PADIMG_MAX_FILE_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Upload.MaxFileSize = n
		}
	}
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate checks that the selected backend has the parameters it
// needs.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("config: listen address is empty")
	}
	if c.Upload.MaxFileSize < 0 {
		return fmt.Errorf("config: maxFileSize must not be negative")
	}

	st := c.Upload.Storage
	switch st.Type {
	case StorageLocal:
		if st.BaseFolder == "" {
			return fmt.Errorf("config: local storage requires baseFolder")
		}
		if st.BaseURL == "" {
			return fmt.Errorf("config: local storage requires baseURL")
		}
	case StorageS3:
		if st.Bucket == "" {
			return fmt.Errorf("config: s3 storage requires bucket")
		}
		if st.Region == "" {
			return fmt.Errorf("config: s3 storage requires region")
		}
	default:
		return fmt.Errorf("config: unknown storage type %q", st.Type)
	}
	return nil
}
