package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/speaker/internal/flagx"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for JSON and YAML files. BusyTimeout is kept as
// text so both formats accept values like "750ms".
type fileConfig struct {
	DataDir        string `json:"data_dir" yaml:"data_dir"`
	DatabasePath   string `json:"database_path" yaml:"database_path"`
	BusyTimeout    string `json:"busy_timeout" yaml:"busy_timeout"`
	BlobDriver     string `json:"blob_driver" yaml:"blob_driver"`
	BlobRoot       string `json:"blob_root" yaml:"blob_root"`
	S3Bucket       string `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       string `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	S3RootUser     string `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password" yaml:"s3_root_password"`
	S3PathStyle    bool   `json:"s3_path_style" yaml:"s3_path_style"`
	EmotionPolicy  string `json:"emotion_policy" yaml:"emotion_policy"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
	LogFormat      string `json:"log_format" yaml:"log_format"`
}

func fromConfig(c *Config) *fileConfig {
	return &fileConfig{
		DataDir:        c.DataDir,
		DatabasePath:   c.DatabasePath,
		BusyTimeout:    c.BusyTimeout.String(),
		BlobDriver:     c.BlobDriver,
		BlobRoot:       c.BlobRoot,
		S3Bucket:       c.S3Bucket,
		S3Region:       c.S3Region,
		S3BaseEndpoint: c.S3BaseEndpoint,
		S3RootUser:     c.S3RootUser,
		S3RootPassword: c.S3RootPassword,
		S3PathStyle:    c.S3PathStyle,
		EmotionPolicy:  c.EmotionPolicy,
		LogLevel:       c.LogLevel,
		LogFormat:      c.LogFormat,
	}
}

// parseFile overlays the file named by -c / -config onto config. Keys
// missing from the file keep their current values. The format is picked by
// extension: .yaml and .yml are YAML, anything else is JSON.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := fromConfig(config)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	busy, err := time.ParseDuration(fc.BusyTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse busy_timeout: %w", err)
	}

	config.DataDir = fc.DataDir
	config.DatabasePath = fc.DatabasePath
	config.BusyTimeout = busy
	config.BlobDriver = fc.BlobDriver
	config.BlobRoot = fc.BlobRoot
	config.S3Bucket = fc.S3Bucket
	config.S3Region = fc.S3Region
	config.S3BaseEndpoint = fc.S3BaseEndpoint
	config.S3RootUser = fc.S3RootUser
	config.S3RootPassword = fc.S3RootPassword
	config.S3PathStyle = fc.S3PathStyle
	config.EmotionPolicy = fc.EmotionPolicy
	config.LogLevel = fc.LogLevel
	config.LogFormat = fc.LogFormat
	return nil
}
