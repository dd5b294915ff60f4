package fleetctl

import (
	"path/filepath"
	"strings"
)

// Layout describes where the per-instance files live. Every resource name is
// <Prefix><id><Suffix> inside its directory.
type Layout struct {
	// ConfigDir holds one configuration file per instance
	ConfigDir    string
	ConfigPrefix string
	ConfigSuffix string

	// PIDDir holds the pid files written by running daemons
	PIDDir    string
	PIDPrefix string
	PIDSuffix string

	// LockDir holds the content-less advisory lock files
	LockDir    string
	LockPrefix string
	LockSuffix string
}

// DefaultLayout returns the conventional layout for a daemon called name:
//
//	/etc/<name>/<name>-<id>.conf
//	/run/<name>/<name>-<id>.pid
//	/run/lock/<name>/<name>-<id>.lock
func DefaultLayout(name string) Layout {
	prefix := name + "-"
	return Layout{
		ConfigDir:    filepath.Join("/etc", name),
		ConfigPrefix: prefix,
		ConfigSuffix: ".conf",
		PIDDir:       filepath.Join("/run", name),
		PIDPrefix:    prefix,
		PIDSuffix:    ".pid",
		LockDir:      filepath.Join("/run/lock", name),
		LockPrefix:   prefix,
		LockSuffix:   ".lock",
	}
}

// ConfigPath returns the configuration file of an instance
func (l Layout) ConfigPath(id string) string {
	return filepath.Join(l.ConfigDir, l.ConfigPrefix+id+l.ConfigSuffix)
}

// PIDPath returns the pid file of an instance
func (l Layout) PIDPath(id string) string {
	return filepath.Join(l.PIDDir, l.PIDPrefix+id+l.PIDSuffix)
}

// LockPath returns the lock file of an instance
func (l Layout) LockPath(id string) string {
	return filepath.Join(l.LockDir, l.LockPrefix+id+l.LockSuffix)
}

// IDFromConfig extracts the id from a configuration file name
func (l Layout) IDFromConfig(name string) (string, bool) {
	return idFromName(name, l.ConfigPrefix, l.ConfigSuffix)
}

// IDFromPID extracts the id from a pid file name
func (l Layout) IDFromPID(name string) (string, bool) {
	return idFromName(name, l.PIDPrefix, l.PIDSuffix)
}

func idFromName(name, prefix, suffix string) (string, bool) {
	if len(name) <= len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}
