package fleetctl

import "runtime"

// Version is the current version of the go-fleetctl library
const Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Platform is the operating system the binary was built for
	Platform string
	// FileLocks indicates whether flock-based instance locks are available
	FileLocks bool
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Platform:  runtime.GOOS,
		FileLocks: runtime.GOOS == "linux" || runtime.GOOS == "darwin",
	}
}
