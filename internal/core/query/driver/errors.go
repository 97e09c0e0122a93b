package driver

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrConnection indicates a connection could not be acquired.
	ErrConnection = errors.New("connection error")
	// ErrExecution indicates a statement failed to execute or stream.
	ErrExecution = errors.New("query execution error")
)

// ConnectionError wraps a failure to acquire a connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("driver: acquire connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Is reports ErrConnection so callers can match the class without the cause.
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// QueryExecutionError wraps a failure from the database while executing or
// streaming a statement. Query carries the rendered SQL text.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("driver: execute %q: %v", e.Query, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// Is reports ErrExecution so callers can match the class without the cause.
func (e *QueryExecutionError) Is(target error) bool { return target == ErrExecution }
