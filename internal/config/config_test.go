package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Daemon.Name != "fleetd" {
		t.Errorf("Daemon.Name = %q, want %q", cfg.Daemon.Name, "fleetd")
	}
	if len(cfg.Daemon.Args) != 2 || cfg.Daemon.Args[1] != "{id}" {
		t.Errorf("Daemon.Args = %v, want [-i {id}]", cfg.Daemon.Args)
	}
	if cfg.Timeouts.Stop() != 30*time.Second {
		t.Errorf("Timeouts.Stop() = %v, want 30s", cfg.Timeouts.Stop())
	}
	if cfg.Timeouts.Kill() != 10*time.Second {
		t.Errorf("Timeouts.Kill() = %v, want 10s", cfg.Timeouts.Kill())
	}
	if cfg.Timeouts.PollInterval() != 100*time.Millisecond {
		t.Errorf("Timeouts.PollInterval() = %v, want 100ms", cfg.Timeouts.PollInterval())
	}
	if cfg.Dispatch.Sequential {
		t.Error("Dispatch.Sequential should be false by default")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate, got %v", ValidationErrors(errs))
	}
}

func TestDefaultArgsAreCopied(t *testing.T) {
	a := Default()
	a.Daemon.Args[0] = "--changed"

	if b := Default(); b.Daemon.Args[0] != "-i" {
		t.Errorf("Default() shares its args slice: got %q", b.Daemon.Args[0])
	}
}

func TestLayout(t *testing.T) {
	cfg := Default()
	cfg.Daemon.Name = "searchd"

	layout := cfg.Layout()
	if got := layout.ConfigPath("a1"); got != "/etc/searchd/searchd-a1.conf" {
		t.Errorf("ConfigPath = %q", got)
	}

	cfg.Paths.PIDDir = "/var/run/custom"
	layout = cfg.Layout()
	if got := layout.PIDPath("a1"); got != "/var/run/custom/searchd-a1.pid" {
		t.Errorf("PIDPath = %q", got)
	}
	if got := layout.LockPath("a1"); got != "/run/lock/searchd/searchd-a1.lock" {
		t.Errorf("LockPath = %q", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), "fleetctl.toml")
	content := `
[daemon]
name = "searchd"
command = "/opt/search/bin/searchd"
args = ["--instance", "{id}", "--foreground"]

[timeouts]
stop_seconds = 5
settle_ms = 0

[dispatch]
sequential = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	SetDefaults()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Daemon.Command != "/opt/search/bin/searchd" {
		t.Errorf("Daemon.Command = %q", cfg.Daemon.Command)
	}
	if len(cfg.Daemon.Args) != 3 {
		t.Errorf("Daemon.Args = %v", cfg.Daemon.Args)
	}
	if cfg.Timeouts.Stop() != 5*time.Second {
		t.Errorf("Timeouts.Stop() = %v, want 5s", cfg.Timeouts.Stop())
	}
	if cfg.Timeouts.Settle() != 0 {
		t.Errorf("Timeouts.Settle() = %v, want 0", cfg.Timeouts.Settle())
	}
	// Untouched keys keep their defaults
	if cfg.Timeouts.Kill() != 10*time.Second {
		t.Errorf("Timeouts.Kill() = %v, want 10s", cfg.Timeouts.Kill())
	}
	if !cfg.Dispatch.Sequential {
		t.Error("Dispatch.Sequential should be true")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	SetDefaults()
	viper.Set("timeouts.kill_seconds", -1)
	viper.Set("log.level", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail validation")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error type = %T, want ValidationErrors", err)
	}
	if len(verrs) != 2 {
		t.Errorf("got %d validation errors, want 2: %v", len(verrs), verrs)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := ConfigDir(); got != "/tmp/xdg/fleetctl" {
		t.Errorf("ConfigDir() = %q, want /tmp/xdg/fleetctl", got)
	}
}
