package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from all available sources.
// Hierarchy (lowest to highest precedence):
// 1. Built-in defaults
// 2. System config (/etc/jupyterlauncher/config.toml)
// 3. User config (~/.config/jupyterlauncher/config.toml)
// 4. Project config (./.jupyterlauncher.toml)
// 5. Environment variables (JUPLAUNC_*)
func Load() (*Config, error) {
	cfg := GetDefaultConfig()

	for _, path := range GetConfigPaths() {
		if err := loadConfigFile(cfg, path); err != nil {
			// Only fail when the file exists but can't be parsed.
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigFile loads a TOML config file and merges it into cfg.
func loadConfigFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var fileCfg Config
	if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
		return err
	}

	cfg.Merge(&fileCfg)
	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if env := os.Getenv("JUPLAUNC_OUTPUT"); env != "" {
		cfg.Paths.LogFile = ExpandPath(env)
	}
	if env := os.Getenv("JUPLAUNC_RUNTIME_DIR"); env != "" {
		cfg.Paths.RuntimeDir = ExpandPath(env)
	}
	if env := os.Getenv("JUPLAUNC_NOTEBOOK_DIR"); env != "" {
		cfg.Paths.NotebookDir = ExpandPath(env)
	}
	if env := os.Getenv("JUPLAUNC_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if env := os.Getenv("JUPLAUNC_NO_START"); env == "true" || env == "1" {
		cfg.Server.NoStart = true
	}
}

// WriteExample writes an example config file to the specified path.
func WriteExample(path string) error {
	example := `# jupyterlauncher configuration

[paths]
# Execution log destination
log_file = "jupyter_live_execution.log"
# Jupyter runtime directory holding kernel-*.json connection files.
# Empty means auto-detect (JUPYTER_RUNTIME_DIR, XDG_RUNTIME_DIR/jupyter,
# ~/.local/share/jupyter/runtime).
runtime_dir = ""
# Directory served by the notebook server
notebook_dir = "."

[server]
port = 8888
# Wait after starting the server before monitoring begins
startup_grace = "3s"
# Set to true to only attach to already-running kernels
no_start = false

[monitor]
# How often the runtime directory is scanned for new kernels
discovery_interval = "2s"
# Per-channel receive timeout
receive_timeout = "100ms"
# Sleep between channel sweeps
pass_delay = "10ms"
# Wait after a message processing failure
error_backoff = "1s"
`

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(example), 0o644)
}
