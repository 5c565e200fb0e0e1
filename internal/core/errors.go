package core

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an operation targeted a record that does not
// exist in the ledger.
var ErrNotFound = errors.New("record not found")

// ParseError reports a source document that could not be read as
// structured markup. It is recovered locally: the triggering event is
// dropped and the pipeline continues.
type ParseError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("parse document: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or unreadable external
// configuration source, such as the budget limits file. Surfaced at
// startup; never raised by an already-running watch loop.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
