package entity

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPlanetNotFound is returned when no record exists for a key
var ErrPlanetNotFound = errors.New("planet not found")

// ValidationError marks a malformed request parameter or source row
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SourceFetchError is returned when the external archive responds with a
// non-success status or cannot be reached or decoded
type SourceFetchError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *SourceFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exoplanet archive fetch failed: %v", e.Err)
	}
	msg := fmt.Sprintf("exoplanet archive fetch failed: %s", e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += "\n" + body
	}
	return msg
}

func (e *SourceFetchError) Unwrap() error {
	return e.Err
}

// StoreError wraps an underlying persistence failure
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
