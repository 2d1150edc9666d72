package infer

import (
	"errors"
	"fmt"
)

// ErrFinalized is returned when a mutator runs after Finalize.
var ErrFinalized = errors.New("inferrer is finalized")

// ConfigError reports a rejected configuration value at construction time.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config option %s: %s", e.Option, e.Reason)
}

// ParseError wraps a JSON parse failure for one record. The record is
// skipped; accumulation continues.
type ParseError struct {
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
