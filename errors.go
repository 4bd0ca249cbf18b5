package main

import "fmt"

// ValidationError reports a table reference that failed syntactic
// validation. It is raised before any SQL text is built, so the
// offending input never reaches the driver.
type ValidationError struct {
	Name string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid table name: %q", e.Name)
}

// ExecutionError reports a driver-level failure: connection
// acquisition, statement execution, or result scanning.
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func execErr(op string, err error) *ExecutionError {
	return &ExecutionError{Op: op, Err: err}
}
