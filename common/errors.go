// Package common provides shared constants, types, and utilities
// used across the VPN Switcher application.
package common

import "errors"

// Sentinel errors for switcher operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Control plane errors.
	ErrBusUnavailable = errors.New("system bus unavailable")
	ErrTunnelNotFound = errors.New("tunnel connection not found")
	ErrFilterConflict = errors.New("conflicting attachment kind filters")

	// Policy errors.
	ErrPolicyLoad  = errors.New("failed to load policy")
	ErrPolicySave  = errors.New("failed to save policy")
	ErrInvalidRule = errors.New("invalid trust rule")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
