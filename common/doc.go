// Package common provides shared constants, types, utilities, and interfaces
// used throughout the VPN Switcher application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and D-Bus names
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for logging and desktop notifications
//   - Logger: Structured logging with console and rotating file output
//   - Utils: Common utility functions for file paths and string manipulation
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/vpn-switcher/common"
//
//	// Use constants
//	delay := common.DebounceDelay
//
//	// Use logger
//	common.LogInfo("Activating tunnel %s", tunnelID)
//
//	// Check errors
//	if errors.Is(err, common.ErrTunnelNotFound) {
//	    // Handle unknown tunnel
//	}
//
// # Design Principles
//
// This package follows several design principles:
//
//   - Single Responsibility: Each file handles one concern
//   - Interface Segregation: Small, focused interfaces
//   - Open/Closed: Extensible through interfaces, not modification
//   - Dependency Inversion: High-level modules depend on abstractions
package common
