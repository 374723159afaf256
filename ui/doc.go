// Package ui provides the interactive status view for VPN Switcher.
//
// This package implements the terminal interface shown by
// "vpn-switcher status --watch":
//
//   - Live compliance verdict against the current network
//   - Active link and tunnel attachments
//   - Trust rule table with the matching rule highlighted
//
// # Architecture
//
// The UI is built on Bubble Tea. The Model polls the control plane and the
// policy store on a fixed interval, off the update loop, and runs the same
// evaluation the daemon runs, so the view never disagrees with what the
// daemon would enforce.
//
// # Thread Safety
//
// All state lives in the Model and is only touched inside Update. Queries
// run as commands in background goroutines and report back as messages.
//
// # File Organization
//
//   - app.go: Model, update loop and rendering
//   - styles.go: Lip Gloss styling and theme colors
package ui
