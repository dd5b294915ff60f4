// Package config holds the fleetctl configuration: where instance files
// live, how daemons are launched and how long each bounded wait may take.
// Values come from viper (defaults, config file, FLEETCTL_* environment).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/axondata/go-fleetctl"
	"github.com/spf13/viper"
)

// Config represents the complete fleetctl configuration
type Config struct {
	Daemon   DaemonConfig   `mapstructure:"daemon" toml:"daemon"`
	Paths    PathsConfig    `mapstructure:"paths" toml:"paths"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts" toml:"timeouts"`
	Dispatch DispatchConfig `mapstructure:"dispatch" toml:"dispatch"`
	Log      LogConfig      `mapstructure:"log" toml:"log"`
}

// DaemonConfig describes the supervised daemon binary
type DaemonConfig struct {
	// Name is the daemon name; it seeds the default file layout
	Name string `mapstructure:"name" toml:"name"`
	// Command is the binary (or supervising wrapper) to launch
	Command string `mapstructure:"command" toml:"command"`
	// Args are passed to Command; "{id}" is replaced by the instance id
	Args []string `mapstructure:"args" toml:"args"`
}

// PathsConfig overrides the directories of the default layout.
// Empty values fall back to the layout derived from the daemon name.
type PathsConfig struct {
	ConfigDir string `mapstructure:"config_dir" toml:"config_dir"`
	PIDDir    string `mapstructure:"pid_dir" toml:"pid_dir"`
	LockDir   string `mapstructure:"lock_dir" toml:"lock_dir"`
}

// TimeoutsConfig bounds every wait the control plane performs
type TimeoutsConfig struct {
	// StopSeconds is the grace period after SIGTERM
	StopSeconds int `mapstructure:"stop_seconds" toml:"stop_seconds"`
	// KillSeconds is the wait after SIGKILL before giving up
	KillSeconds int `mapstructure:"kill_seconds" toml:"kill_seconds"`
	// LockWaitSeconds bounds acquisition of an instance lock
	LockWaitSeconds int `mapstructure:"lock_wait_seconds" toml:"lock_wait_seconds"`
	// PollIntervalMs is the process table polling granularity
	PollIntervalMs int `mapstructure:"poll_interval_ms" toml:"poll_interval_ms"`
	// SettleMs is the pause before the parallel completion barrier
	SettleMs int `mapstructure:"settle_ms" toml:"settle_ms"`
}

// DispatchConfig controls how commands fan out over instances
type DispatchConfig struct {
	// Sequential runs every command one instance at a time
	Sequential bool `mapstructure:"sequential" toml:"sequential"`
}

// LogConfig controls diagnostic logging on stderr
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" toml:"level"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			Name:    "fleetd",
			Command: "/usr/sbin/fleetd",
			Args:    append([]string(nil), fleetctl.DefaultLaunchArgs...),
		},
		Timeouts: TimeoutsConfig{
			StopSeconds:     int(fleetctl.DefaultStopTimeout / time.Second),
			KillSeconds:     int(fleetctl.DefaultKillTimeout / time.Second),
			LockWaitSeconds: int(fleetctl.DefaultLockWait / time.Second),
			PollIntervalMs:  int(fleetctl.DefaultPollInterval / time.Millisecond),
			SettleMs:        int(fleetctl.DefaultSettleDelay / time.Millisecond),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("daemon.name", defaults.Daemon.Name)
	viper.SetDefault("daemon.command", defaults.Daemon.Command)
	viper.SetDefault("daemon.args", defaults.Daemon.Args)

	viper.SetDefault("paths.config_dir", defaults.Paths.ConfigDir)
	viper.SetDefault("paths.pid_dir", defaults.Paths.PIDDir)
	viper.SetDefault("paths.lock_dir", defaults.Paths.LockDir)

	viper.SetDefault("timeouts.stop_seconds", defaults.Timeouts.StopSeconds)
	viper.SetDefault("timeouts.kill_seconds", defaults.Timeouts.KillSeconds)
	viper.SetDefault("timeouts.lock_wait_seconds", defaults.Timeouts.LockWaitSeconds)
	viper.SetDefault("timeouts.poll_interval_ms", defaults.Timeouts.PollIntervalMs)
	viper.SetDefault("timeouts.settle_ms", defaults.Timeouts.SettleMs)

	viper.SetDefault("dispatch.sequential", defaults.Dispatch.Sequential)

	viper.SetDefault("log.level", defaults.Log.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Stop returns the graceful stop budget
func (t TimeoutsConfig) Stop() time.Duration {
	return time.Duration(t.StopSeconds) * time.Second
}

// Kill returns the post-SIGKILL budget
func (t TimeoutsConfig) Kill() time.Duration {
	return time.Duration(t.KillSeconds) * time.Second
}

// LockWait returns the lock acquisition bound
func (t TimeoutsConfig) LockWait() time.Duration {
	return time.Duration(t.LockWaitSeconds) * time.Second
}

// PollInterval returns the polling granularity
func (t TimeoutsConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

// Settle returns the pause before the completion barrier
func (t TimeoutsConfig) Settle() time.Duration {
	return time.Duration(t.SettleMs) * time.Millisecond
}

// Layout returns the instance file layout, applying path overrides to the
// layout derived from the daemon name
func (c *Config) Layout() fleetctl.Layout {
	layout := fleetctl.DefaultLayout(c.Daemon.Name)
	if c.Paths.ConfigDir != "" {
		layout.ConfigDir = c.Paths.ConfigDir
	}
	if c.Paths.PIDDir != "" {
		layout.PIDDir = c.Paths.PIDDir
	}
	if c.Paths.LockDir != "" {
		layout.LockDir = c.Paths.LockDir
	}
	return layout
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fleetctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fleetctl"
	}
	return filepath.Join(home, ".config", "fleetctl")
}

// SystemConfigDir is searched after the user's config directory
const SystemConfigDir = "/etc/fleetctl"
