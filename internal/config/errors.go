package config

import (
	"errors"
	"fmt"
)

var (
	// ErrProfileNotFound is returned when a required profile is absent.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrSecureUnavailable is matched by every *SecureUnavailableError.
	ErrSecureUnavailable = errors.New("secure credential manager unavailable")

	// ErrNoActiveLayer should never surface; it signals a corrupted layer set.
	ErrNoActiveLayer = errors.New("internal error: no active layer found")
)

// ParseError reports a configuration file that is not valid JSON (with
// comments) or does not have the shape of a Document.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parsing %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SecureUnavailableError reports that the credential manager backing secure
// properties is not initialized. Op is "load" or "save".
type SecureUnavailableError struct {
	Manager string
	Op      string
}

func (e *SecureUnavailableError) Error() string {
	manager := e.Manager
	if manager == "" {
		manager = "none configured"
	}
	return fmt.Sprintf("cannot %s secure properties: credential manager %q is not initialized", e.Op, manager)
}

// Is makes errors.Is(err, ErrSecureUnavailable) hold.
func (e *SecureUnavailableError) Is(target error) bool {
	return target == ErrSecureUnavailable
}
