package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete configuration.
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Server  ServerConfig  `toml:"server"`
	Monitor MonitorConfig `toml:"monitor"`
}

// PathsConfig contains path settings.
type PathsConfig struct {
	LogFile     string `toml:"log_file"`
	RuntimeDir  string `toml:"runtime_dir"` // empty = auto-detect Jupyter runtime dir
	NotebookDir string `toml:"notebook_dir"`
}

// ServerConfig contains notebook server settings.
type ServerConfig struct {
	Port         int    `toml:"port"`
	StartupGrace string `toml:"startup_grace"` // wait before monitoring starts
	NoStart      bool   `toml:"no_start"`      // only attach to running kernels
}

// MonitorConfig contains kernel monitoring cadence settings. All fields are
// Go duration strings.
type MonitorConfig struct {
	DiscoveryInterval string `toml:"discovery_interval"`
	ReceiveTimeout    string `toml:"receive_timeout"`
	PassDelay         string `toml:"pass_delay"`
	ErrorBackoff      string `toml:"error_backoff"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			LogFile:     "jupyter_live_execution.log",
			RuntimeDir:  "",
			NotebookDir: ".",
		},
		Server: ServerConfig{
			Port:         8888,
			StartupGrace: "3s",
			NoStart:      false,
		},
		Monitor: MonitorConfig{
			DiscoveryInterval: "2s",
			ReceiveTimeout:    "100ms",
			PassDelay:         "10ms",
			ErrorBackoff:      "1s",
		},
	}
}

// GetConfigPaths returns the list of config file paths to check (in order).
// If JUPLAUNC_CONFIG is set, it is added as highest priority.
func GetConfigPaths() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "/tmp"
	}
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "."
	}

	paths := []string{
		"/etc/jupyterlauncher/config.toml",
		filepath.Join(homeDir, ".config/jupyterlauncher/config.toml"),
		filepath.Join(workDir, ".jupyterlauncher.toml"),
	}

	if envConfig := os.Getenv("JUPLAUNC_CONFIG"); envConfig != "" {
		paths = append(paths, envConfig)
	}

	return paths
}

// ExpandPath expands ~ in paths to home directory.
func ExpandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return homeDir
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Merge merges another config into this one (other takes precedence).
func (c *Config) Merge(other *Config) {
	if other.Paths.LogFile != "" {
		c.Paths.LogFile = ExpandPath(other.Paths.LogFile)
	}
	if other.Paths.RuntimeDir != "" {
		c.Paths.RuntimeDir = ExpandPath(other.Paths.RuntimeDir)
	}
	if other.Paths.NotebookDir != "" {
		c.Paths.NotebookDir = ExpandPath(other.Paths.NotebookDir)
	}

	if other.Server.Port != 0 {
		c.Server.Port = other.Server.Port
	}
	if other.Server.StartupGrace != "" {
		c.Server.StartupGrace = other.Server.StartupGrace
	}
	// Booleans can't distinguish "unset" from "false" in TOML; an explicit
	// no_start = true always wins.
	if other.Server.NoStart {
		c.Server.NoStart = true
	}

	if other.Monitor.DiscoveryInterval != "" {
		c.Monitor.DiscoveryInterval = other.Monitor.DiscoveryInterval
	}
	if other.Monitor.ReceiveTimeout != "" {
		c.Monitor.ReceiveTimeout = other.Monitor.ReceiveTimeout
	}
	if other.Monitor.PassDelay != "" {
		c.Monitor.PassDelay = other.Monitor.PassDelay
	}
	if other.Monitor.ErrorBackoff != "" {
		c.Monitor.ErrorBackoff = other.Monitor.ErrorBackoff
	}
}

// Validate checks that every duration field parses.
func (c *Config) Validate() error {
	fields := map[string]string{
		"server.startup_grace":       c.Server.StartupGrace,
		"monitor.discovery_interval": c.Monitor.DiscoveryInterval,
		"monitor.receive_timeout":    c.Monitor.ReceiveTimeout,
		"monitor.pass_delay":         c.Monitor.PassDelay,
		"monitor.error_backoff":      c.Monitor.ErrorBackoff,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	return nil
}

// StartupGrace returns the parsed server startup grace period.
func (c *Config) StartupGrace() time.Duration {
	return duration(c.Server.StartupGrace, 3*time.Second)
}

// DiscoveryInterval returns the parsed kernel discovery interval.
func (c *Config) DiscoveryInterval() time.Duration {
	return duration(c.Monitor.DiscoveryInterval, 2*time.Second)
}

// ReceiveTimeout returns the parsed per-channel receive timeout.
func (c *Config) ReceiveTimeout() time.Duration {
	return duration(c.Monitor.ReceiveTimeout, 100*time.Millisecond)
}

// PassDelay returns the parsed per-pass watcher sleep.
func (c *Config) PassDelay() time.Duration {
	return duration(c.Monitor.PassDelay, 10*time.Millisecond)
}

// ErrorBackoff returns the parsed per-message-error backoff.
func (c *Config) ErrorBackoff() time.Duration {
	return duration(c.Monitor.ErrorBackoff, time.Second)
}

func duration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
