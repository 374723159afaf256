// Package main provides the entry point for VPN Switcher. VPN Switcher is
// a NetworkManager companion daemon for Linux that keeps the active VPN
// tunnel consistent with a trust policy.
//
// Features:
//   - Trust rules mapping SSIDs and interfaces to the VPN they require
//   - Fallback VPN for networks no rule matches
//   - Debounced reaction to NetworkManager state changes
//   - Fail-safe teardown when connectivity never materializes
//   - Command-line policy management and an interactive status view
//
// Usage:
//
//	vpn-switcher <command> [options]
//
// Environment:
//
//	The daemon talks to NetworkManager over the D-Bus system bus and must
//	run as a user allowed to activate connections.
package main

import "github.com/yllada/vpn-switcher/cli"

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

func main() {
	cli.Execute(appVersion, buildTime, commitSHA)
}
