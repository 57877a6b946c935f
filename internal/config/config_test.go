package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBackendBaseURL, c.BackendBaseURL)
	assert.Equal(t, 30*time.Second, c.ProbeInterval())
	assert.Equal(t, 3*time.Second, c.ProbeTimeout())
	assert.Equal(t, 60*time.Second, c.UploadTimeout())
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes())
	assert.Equal(t, DefaultListenAddr, c.ListenAddr)
	assert.Equal(t, DefaultPreviewRows, c.PreviewRows)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "backend_base_url: http://file.example:9000/\nprobe_interval_sec: 5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("DATADASH_PROBE_INTERVAL_SEC", "7")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example:9000", c.BackendBaseURL, "trailing slash is trimmed")
	assert.Equal(t, 7*time.Second, c.ProbeInterval())
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	in := &Global{
		BackendBaseURL:   "http://analysis.internal:8000",
		UploadTimeoutSec: 90,
		MaxUploadMB:      25,
		ProbeIntervalSec: 15,
		ProbeTimeoutSec:  2,
		ListenAddr:       ":9090",
		ExportDir:        "/tmp/exports",
		PreviewRows:      20,
	}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDurations_FallBackOnNonPositive(t *testing.T) {
	c := &Global{UploadTimeoutSec: -1, ProbeIntervalSec: 0, ProbeTimeoutSec: 0, MaxUploadMB: 0}
	assert.Equal(t, 60*time.Second, c.UploadTimeout())
	assert.Equal(t, 30*time.Second, c.ProbeInterval())
	assert.Equal(t, 3*time.Second, c.ProbeTimeout())
	assert.Equal(t, int64(10<<20), c.MaxUploadBytes())
}
