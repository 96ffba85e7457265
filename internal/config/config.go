package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/logging"
)

// Config holds runtime settings.
//
// Fields:
//   - DataDir: directory holding the database and the fs blob root.
//   - DatabasePath: SQLite file; defaults to DataDir/speaker.db.
//   - BusyTimeout: how long a connection waits on a locked database.
//   - BlobDriver: fs, s3 or memory.
//   - BlobRoot: fs driver root; defaults to DataDir/blobs.
//   - S3Bucket / S3Region / S3BaseEndpoint / S3RootUser / S3RootPassword /
//     S3PathStyle: s3 driver settings.
//   - EmotionPolicy: what happens to emotion marks when their voice is
//     removed (cascade or orphan).
//   - LogLevel / LogFormat: slog level and handler (json or text).
type Config struct {
	DataDir        string        `env:"DATA_DIR"`
	DatabasePath   string        `env:"DATABASE_PATH"`
	BusyTimeout    time.Duration `env:"BUSY_TIMEOUT"`
	BlobDriver     string        `env:"BLOB_DRIVER"`
	BlobRoot       string        `env:"BLOB_ROOT"`
	S3Bucket       string        `env:"S3_BUCKET"`
	S3Region       string        `env:"S3_REGION"`
	S3BaseEndpoint string        `env:"S3_BASE_ENDPOINT"`
	S3RootUser     string        `env:"S3_ROOT_USER"`
	S3RootPassword string        `env:"S3_ROOT_PASSWORD"`
	S3PathStyle    bool          `env:"S3_PATH_STYLE"`
	EmotionPolicy  string        `env:"EMOTION_POLICY"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.DatabasePath = ""
	c.BusyTimeout = 5 * time.Second
	c.BlobDriver = "fs"
	c.BlobRoot = ""
	c.S3Bucket = "voices"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3PathStyle = false
	c.EmotionPolicy = "cascade"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, an optional config file, the
// environment and flags found in args. It returns the arguments it did not
// consume.
func Load(args []string) (*Config, []string, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, args); err != nil {
		return nil, nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, nil, err
	}
	rest, err := parseFlags(cfg, args)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" && (c.DatabasePath == "" || c.BlobRoot == "") {
		return common.Invalid("data dir is empty")
	}
	if c.BusyTimeout < 0 {
		return common.Invalid("busy timeout %s is negative", c.BusyTimeout)
	}
	switch c.BlobDriver {
	case "fs", "memory":
	case "s3":
		if c.S3Bucket == "" {
			return common.Invalid("s3 driver needs a bucket")
		}
	default:
		return common.Invalid("unknown blob driver %q", c.BlobDriver)
	}
	switch c.EmotionPolicy {
	case "cascade", "orphan":
	default:
		return common.Invalid("unknown emotion policy %q", c.EmotionPolicy)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return common.Invalid("unknown log format %q", c.LogFormat)
	}
	return nil
}

// DBPath returns DatabasePath, falling back to a file inside DataDir.
func (c *Config) DBPath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDir, "speaker.db")
}

// BlobPath returns BlobRoot, falling back to a directory inside DataDir.
func (c *Config) BlobPath() string {
	if c.BlobRoot != "" {
		return c.BlobRoot
	}
	return filepath.Join(c.DataDir, "blobs")
}
