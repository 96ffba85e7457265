package config

import (
	"bytes"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/speaker/internal/flagx"
)

// valueFlags are the settings that can be given on the command line. All of
// them take a value; S3PathStyle is left to the file and environment since
// a bare boolean flag would swallow the next positional argument.
var valueFlags = []string{
	"data-dir", "db", "busy-timeout", "blob-driver", "blob-root",
	"s3-bucket", "s3-region", "s3-endpoint", "s3-user", "s3-password",
	"emotion-policy", "log-level", "log-format",
}

func newFlagSet(config *Config) *flag.FlagSet {
	fs := flag.NewFlagSet("speaker", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.DataDir, "data-dir", config.DataDir, "data directory")
	fs.StringVar(&config.DatabasePath, "db", config.DatabasePath, "database file (default <data-dir>/speaker.db)")
	fs.DurationVar(&config.BusyTimeout, "busy-timeout", config.BusyTimeout, "wait on a locked database")
	fs.StringVar(&config.BlobDriver, "blob-driver", config.BlobDriver, "payload storage: fs, s3 or memory")
	fs.StringVar(&config.BlobRoot, "blob-root", config.BlobRoot, "fs payload root (default <data-dir>/blobs)")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.EmotionPolicy, "emotion-policy", config.EmotionPolicy, "emotion marks on voice removal: cascade or orphan")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "json or text")
	return fs
}

// parseFlags applies the recognised flags in args to config and returns
// everything else. -c / -config are consumed as well since parseFile has
// already handled them.
func parseFlags(config *Config, args []string) ([]string, error) {
	allowed := append(flagx.Spellings(valueFlags...), flagx.Spellings("c", "config")...)
	matched, rest := flagx.SplitArgs(args, allowed)

	fs := newFlagSet(config)
	var ignored string
	fs.StringVar(&ignored, "c", "", "")
	fs.StringVar(&ignored, "config", "", "")

	if err := fs.Parse(matched); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return rest, nil
}

// Usage describes the settings flags with their defaults.
func Usage() string {
	cfg := &Config{}
	cfg.LoadDefaults()

	var buf bytes.Buffer
	fs := newFlagSet(cfg)
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	buf.WriteString("  -c, -config string\n    \tJSON or YAML config file\n")
	return buf.String()
}
