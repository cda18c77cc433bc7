package goimportmap

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checks with errors.Is.
var (
	// ErrFrameworkNotFound indicates the framework package could not be
	// located from the project root. Composition cannot proceed without it.
	ErrFrameworkNotFound = errors.New("framework package not found")

	// ErrHandlerNotRegistered indicates a dynamic rule named a handler id
	// with no registration.
	ErrHandlerNotRegistered = errors.New("handler not registered")
)

// FrameworkLookupError reports a failed framework package probe.
// It wraps ErrFrameworkNotFound.
type FrameworkLookupError struct {
	// BaseDir is the directory the probe started from.
	BaseDir string

	// Package is the framework package name, normally "next".
	Package string
}

func (e *FrameworkLookupError) Error() string {
	return fmt.Sprintf("Next.js package not found (looked up %q from %s)", e.Package, e.BaseDir)
}

func (e *FrameworkLookupError) Unwrap() error { return ErrFrameworkNotFound }

// PatternError reports an invalid alias pattern, typically from a user
// alias file.
type PatternError struct {
	// Pattern is the offending pattern text.
	Pattern string

	// Reason describes what is wrong with it.
	Reason string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid alias pattern %q: %s", e.Pattern, e.Reason)
}

// HandlerError reports a dynamic handler failure, attributed to the
// specifier that triggered it.
type HandlerError struct {
	// HandlerID is the handler that failed.
	HandlerID string

	// Specifier is the import specifier being resolved.
	Specifier string

	// Err is the underlying failure.
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q failed for %q: %v", e.HandlerID, e.Specifier, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
