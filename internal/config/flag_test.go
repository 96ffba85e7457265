package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		rest     []string
		wantErr  bool
	}{
		{
			name: "all value flags",
			args: []string{
				"--data-dir", "/d", "-db", "/d/x.db", "-busy-timeout", "3s",
				"-blob-driver", "s3", "-blob-root", "/b",
				"-s3-bucket", "bucket", "-s3-region", "eu-west-1", "-s3-endpoint", "http://minio:9000",
				"-s3-user", "user", "-s3-password", "password",
				"-emotion-policy", "orphan", "-log-level", "debug", "-log-format", "json",
			},
			rest: []string{},
			expected: &Config{
				DataDir:        "/d",
				DatabasePath:   "/d/x.db",
				BusyTimeout:    3 * time.Second,
				BlobDriver:     "s3",
				BlobRoot:       "/b",
				S3Bucket:       "bucket",
				S3Region:       "eu-west-1",
				S3BaseEndpoint: "http://minio:9000",
				S3RootUser:     "user",
				S3RootPassword: "password",
				EmotionPolicy:  "orphan",
				LogLevel:       "debug",
				LogFormat:      "json",
			},
		},
		{
			name:     "unknown flags pass through",
			args:     []string{"register", "--email", "a@b.c", "-log-level=warn", "-c", "cfg.json"},
			rest:     []string{"register", "--email", "a@b.c"},
			expected: &Config{LogLevel: "warn"},
		},
		{
			name:    "missing value",
			args:    []string{"-busy-timeout"},
			wantErr: true,
		},
		{
			name:    "bad duration",
			args:    []string{"-busy-timeout", "later"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			rest, err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestUsage(t *testing.T) {
	u := Usage()
	assert.Contains(t, u, "-data-dir")
	assert.Contains(t, u, "-emotion-policy")
	assert.Contains(t, u, "-config")
}
