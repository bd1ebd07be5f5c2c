// Package errors provides custom error types for the echochat widget.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrMissingElement     = errors.New("required page element missing")
	ErrAlreadyInitialized = errors.New("widget already initialized")
	ErrNoScheduler        = errors.New("widget needs a scheduler")
	ErrStorage            = errors.New("storage failure")
	ErrInvalidConfigKey   = errors.New("invalid config key")
)

// ConfigError reports page elements that must exist before the widget starts.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return ErrMissingElement.Error()
	}
	if len(e.Missing) == 1 {
		return fmt.Sprintf("missing required element #%s", e.Missing[0])
	}
	return fmt.Sprintf("missing required elements #%s", strings.Join(e.Missing, ", #"))
}

// Is allows comparison with sentinel errors
func (e *ConfigError) Is(target error) bool {
	if target == ErrMissingElement {
		return true
	}
	_, ok := target.(*ConfigError)
	return ok
}

// NewConfigError creates a new ConfigError
func NewConfigError(missing ...string) *ConfigError {
	return &ConfigError{Missing: missing}
}

// StorageError represents a failed read or write of a storage slot
type StorageError struct {
	Op  string // "get", "set" or "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage %s %q failed", e.Op, e.Key)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *StorageError) Is(target error) bool {
	if target == ErrStorage {
		return true
	}
	_, ok := target.(*StorageError)
	return ok
}

// NewStorageError creates a new StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsConfigError reports whether err is a missing-element configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingElement)
}

// IsStorageError reports whether err came from the storage layer.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// MissingElements extracts the missing element IDs from err, if any.
func MissingElements(err error) []string {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Missing
	}
	return nil
}
