// Package errors provides sentinel errors and custom error types for repopush.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	// ErrNoIntegration indicates that no configured integration matches the repository host
	ErrNoIntegration = errors.New("no integration configured for host")

	// ErrNoToken indicates that neither a caller-supplied nor a configured token is available
	ErrNoToken = errors.New("no access token available")

	// ErrPathEscape indicates that a subpath resolves outside of its base directory
	ErrPathEscape = errors.New("path escapes base directory")

	// ErrTreeTruncated indicates that the remote tree listing was cut short by the hosting service
	ErrTreeTruncated = errors.New("remote tree listing truncated")

	// ErrNotAFile indicates that a remote path refers to something other than a regular file
	ErrNotAFile = errors.New("remote path is not a file")

	// ErrInvalidMode indicates an unknown reconciliation mode
	ErrInvalidMode = errors.New("invalid reconciliation mode")

	// ErrInvalidRemoteURL indicates a repository URL that cannot be parsed
	ErrInvalidRemoteURL = errors.New("invalid repository URL")
)

// ConfigError represents a configuration problem detected before any network activity.
// These errors are not retryable.
type ConfigError struct {
	Host string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("configuration error for %s: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(host string, err error) *ConfigError {
	return &ConfigError{Host: host, Err: err}
}

// PathEscapeError represents an attempt to resolve a path outside of its base directory
type PathEscapeError struct {
	Base string
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes base directory %s", e.Path, e.Base)
}

// Is returns true if the target error is ErrPathEscape
func (e *PathEscapeError) Is(target error) bool {
	return target == ErrPathEscape
}

// NewPathEscapeError creates a new PathEscapeError
func NewPathEscapeError(base, path string) *PathEscapeError {
	return &PathEscapeError{Base: base, Path: path}
}

// RemoteError represents a failed request against the hosting service
type RemoteError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// NewRemoteError creates a new RemoteError
func NewRemoteError(op, path string, err error) *RemoteError {
	return &RemoteError{Op: op, Path: path, Err: err}
}
