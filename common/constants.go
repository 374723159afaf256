// Package common provides shared constants, types, and utilities
// used across the VPN Switcher application.
package common

import "time"

// Application metadata.
const (
	// AppName is the display name of the application.
	AppName = "VPN Switcher"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "vpn-switcher"
)

// File names used by the application.
const (
	ConfigFileName = "config.yaml"
	PolicyFileName = "policy.yaml"
	LogFileName    = "vpn-switcher.log"
)

// Default timeouts and intervals.
const (
	// DebounceDelay is how long change notifications are coalesced before a
	// switch cycle starts.
	DebounceDelay = 5 * time.Second
	// DefaultCheckTimeout is the default number of reachability probes per
	// cycle, one per interval.
	DefaultCheckTimeout = 20
	// DefaultCheckInterval is the default delay between reachability probes.
	DefaultCheckInterval = 1 * time.Second
	// ProbeTimeout is the per-request timeout for HTTP reachability probes.
	ProbeTimeout = 3 * time.Second
	// QueryTimeout bounds individual NetworkManager queries.
	QueryTimeout = 10 * time.Second
	// WatchdogInterval is the watchdog ping interval used when systemd does
	// not announce one.
	WatchdogInterval = 10 * time.Second
)

// NetworkManager well-known D-Bus names.
const (
	NMService      = "org.freedesktop.NetworkManager"
	NMObjectPath   = "/org/freedesktop/NetworkManager"
	NMSettingsPath = "/org/freedesktop/NetworkManager/Settings"
)
