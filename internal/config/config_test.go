package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "jupyter_live_execution.log", cfg.Paths.LogFile)
	assert.Equal(t, ".", cfg.Paths.NotebookDir)
	assert.Equal(t, 8888, cfg.Server.Port)
	assert.False(t, cfg.Server.NoStart)
	assert.Equal(t, 2*time.Second, cfg.DiscoveryInterval())
	assert.Equal(t, 100*time.Millisecond, cfg.ReceiveTimeout())
	assert.Equal(t, 10*time.Millisecond, cfg.PassDelay())
	assert.Equal(t, time.Second, cfg.ErrorBackoff())
	assert.Equal(t, 3*time.Second, cfg.StartupGrace())
}

func TestMerge(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Merge(&Config{
		Paths:   PathsConfig{LogFile: "/var/log/jupyter.log"},
		Server:  ServerConfig{Port: 9999, NoStart: true},
		Monitor: MonitorConfig{DiscoveryInterval: "500ms"},
	})

	assert.Equal(t, "/var/log/jupyter.log", cfg.Paths.LogFile)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Server.NoStart)
	assert.Equal(t, 500*time.Millisecond, cfg.DiscoveryInterval())
	// Untouched fields keep their defaults.
	assert.Equal(t, ".", cfg.Paths.NotebookDir)
	assert.Equal(t, 100*time.Millisecond, cfg.ReceiveTimeout())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[paths]
log_file = "session.log"

[server]
port = 9000

[monitor]
discovery_interval = "1s"
`), 0o644))

	cfg := GetDefaultConfig()
	require.NoError(t, loadConfigFile(cfg, path))

	assert.Equal(t, "session.log", cfg.Paths.LogFile)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.DiscoveryInterval())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JUPLAUNC_OUTPUT", "/tmp/env.log")
	t.Setenv("JUPLAUNC_PORT", "7777")
	t.Setenv("JUPLAUNC_NO_START", "1")

	cfg := GetDefaultConfig()
	loadFromEnv(cfg)

	assert.Equal(t, "/tmp/env.log", cfg.Paths.LogFile)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.True(t, cfg.Server.NoStart)
}

func TestValidateRejectsBadDurations(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Monitor.DiscoveryInterval = "every two seconds"
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs"), ExpandPath("~/logs"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "/absolute/path", ExpandPath("/absolute/path"))
	assert.Equal(t, "", ExpandPath(""))
}

func TestWriteExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, WriteExample(path))

	cfg := GetDefaultConfig()
	require.NoError(t, loadConfigFile(cfg, path))
	assert.NoError(t, cfg.Validate())
}
