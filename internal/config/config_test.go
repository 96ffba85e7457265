package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout)
	assert.Equal(t, "fs", cfg.BlobDriver)
	assert.Equal(t, "cascade", cfg.EmotionPolicy)
	assert.Equal(t, filepath.Join("data", "speaker.db"), cfg.DBPath())
	assert.Equal(t, filepath.Join("data", "blobs"), cfg.BlobPath())
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	cfg, rest, err := Load([]string{"stats", "--owner", "1"})
	require.NoError(t, err)

	want := &Config{}
	want.LoadDefaults()
	assert.Equal(t, want, cfg)
	assert.Equal(t, []string{"stats", "--owner", "1"}, rest)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"data_dir": "/var/lib/speaker",
		"busy_timeout": "750ms",
		"blob_driver": "s3",
		"s3_bucket": "bucket",
		"s3_path_style": true,
		"emotion_policy": "orphan"
	}`)

	cfg, rest, err := Load([]string{"-c", path, "migrate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"migrate"}, rest)

	assert.Equal(t, "/var/lib/speaker", cfg.DataDir)
	assert.Equal(t, 750*time.Millisecond, cfg.BusyTimeout)
	assert.Equal(t, "s3", cfg.BlobDriver)
	assert.Equal(t, "bucket", cfg.S3Bucket)
	assert.True(t, cfg.S3PathStyle)
	assert.Equal(t, "orphan", cfg.EmotionPolicy)
	assert.Equal(t, "us-east-1", cfg.S3Region, "keys absent from the file keep defaults")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "database_path: /tmp/x.db\nlog_level: debug\nlog_format: json\n")

	cfg, _, err := Load([]string{"--config=" + path})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FileErrors(t *testing.T) {
	_, _, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	path := writeFile(t, "cfg.json", `{"bogus": 1}`)
	_, _, err = Load([]string{"-c", path})
	require.Error(t, err)

	path = writeFile(t, "cfg.json", `{"busy_timeout": "soon"}`)
	_, _, err = Load([]string{"-c", path})
	require.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"data_dir": "from-file", "s3_region": "file-region", "log_level": "warn"}`)
	t.Setenv("SPEAKER_DATA_DIR", "from-env")
	t.Setenv("SPEAKER_S3_REGION", "env-region")
	t.Setenv("SPEAKER_BUSY_TIMEOUT", "2s")

	cfg, rest, err := Load([]string{"-c", path, "-data-dir", "from-flag", "audit"})
	require.NoError(t, err)
	assert.Equal(t, []string{"audit"}, rest)

	assert.Equal(t, "from-flag", cfg.DataDir)
	assert.Equal(t, "env-region", cfg.S3Region)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.BusyTimeout)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SPEAKER_BUSY_TIMEOUT", "forever")
	_, _, err := Load(nil)
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "driver", args: []string{"-blob-driver", "ftp"}},
		{name: "policy", args: []string{"-emotion-policy", "keep"}},
		{name: "level", args: []string{"-log-level", "loud"}},
		{name: "format", args: []string{"-log-format", "xml"}},
		{name: "timeout", args: []string{"-busy-timeout=-1s"}},
		{name: "bucket", args: []string{"-blob-driver", "s3", "-s3-bucket", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.args)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}
}
