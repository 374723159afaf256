// Package common provides shared constants, types, and utilities
// used across the VPN Switcher application.
package common

// Logger defines the interface for structured logging.
// The switcher core logs through this abstraction so tests can silence it.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Notify sends a notification with the given title and message.
	Notify(title, message string) error
	// NotifyWithIcon sends a notification with a custom icon.
	NotifyWithIcon(title, message, icon string) error
}

// NopNotifier is a Notifier that discards every notification.
// Used when desktop notifications are disabled in the configuration.
type NopNotifier struct{}

func (NopNotifier) Notify(title, message string) error               { return nil }
func (NopNotifier) NotifyWithIcon(title, message, icon string) error { return nil }
