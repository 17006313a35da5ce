package dbx

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common failure modes.
var (
	// ErrNotOpen is returned when an operation requires an open connection
	// and none has been configured.
	ErrNotOpen = errors.New("dbx: connection is not open")

	// ErrTxNotActive is returned when commit or SetIsolationLevel is called
	// outside an active transaction.
	ErrTxNotActive = errors.New("dbx: transaction is not active")

	// ErrNestedRollback is returned when an inner rollback cannot be honored
	// because the backend lacks savepoint support. The error must propagate
	// so the outer transaction rolls back as well.
	ErrNestedRollback = errors.New("dbx: cannot roll back nested transaction without savepoint support")
)

// ConfigurationError reports a missing or invalid connection configuration.
// It is always fatal and never retried.
type ConfigurationError struct {
	Op  string // Operation that required the configuration
	Err error  // Optional underlying error
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dbx: %s: invalid configuration: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("dbx: %s: invalid configuration", e.Op)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError returns a new ConfigurationError for the given operation.
func NewConfigurationError(op string, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Err: err}
}

// IsConfiguration returns true if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigurationError
	return errors.As(err, &e)
}

// BuildError reports a malformed condition tree or query intent: wrong operand
// count, unsupported operator-operand combination, a non-query operand to
// EXISTS, and the like. It is raised synchronously during compilation and is
// a caller input bug, never retried.
type BuildError struct {
	Op  string // Operator or builder step that failed
	Msg string
}

// Error returns the error string.
func (e *BuildError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("dbx: build %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("dbx: build: %s", e.Msg)
}

// NewBuildError returns a new BuildError for the given operator.
func NewBuildError(op, format string, args ...any) *BuildError {
	return &BuildError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsBuild returns true if the error is a BuildError.
func IsBuild(err error) bool {
	if err == nil {
		return false
	}
	var e *BuildError
	return errors.As(err, &e)
}

// TxStateError reports a transaction operation issued in the wrong state.
// Rollback while inactive is explicitly not an error.
type TxStateError struct {
	Op    string // Operation (e.g. "commit")
	Level int    // Nesting level at the time of the call
}

// Error returns the error string.
func (e *TxStateError) Error() string {
	return fmt.Sprintf("dbx: %s: transaction is not active (level=%d)", e.Op, e.Level)
}

// Is reports whether the target error matches TxStateError.
// This allows errors.Is(txStateErr, ErrTxNotActive) to return true.
func (e *TxStateError) Is(err error) bool {
	return err == ErrTxNotActive
}

// NewTxStateError returns a new TxStateError.
func NewTxStateError(op string, level int) *TxStateError {
	return &TxStateError{Op: op, Level: level}
}

// IsTxState returns true if the error is a TxStateError.
func IsTxState(err error) bool {
	if err == nil {
		return false
	}
	var e *TxStateError
	return errors.As(err, &e) || errors.Is(err, ErrTxNotActive)
}

// UnsupportedError reports a capability mismatch: the dialect lacks a feature
// the caller requested. Always fatal, signals a design problem rather than a
// data problem.
type UnsupportedError struct {
	Dialect string
	Feature string
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("dbx: %s does not support %s", e.Dialect, e.Feature)
}

// NewUnsupportedError returns a new UnsupportedError.
func NewUnsupportedError(dialect, feature string) *UnsupportedError {
	return &UnsupportedError{Dialect: dialect, Feature: feature}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e)
}

// ExecutionError wraps a native driver failure passed through from the
// connection. The broker never retries these; the nested-rollback propagation
// in the transaction manager is the only place that reacts to them.
type ExecutionError struct {
	Query string
	Err   error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("dbx: exec: %v", e.Err)
}

// Unwrap returns the underlying driver error.
func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError returns a new ExecutionError wrapping the driver failure.
func NewExecutionError(query string, err error) *ExecutionError {
	return &ExecutionError{Query: query, Err: err}
}

// IsExecution returns true if the error is an ExecutionError.
func IsExecution(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecutionError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred while rolling back after a
// failed unit of work. The original error is kept alongside.
type RollbackError struct {
	Err      error // Original error that triggered the rollback
	Rollback error // Failure of the rollback itself
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("dbx: rolling back (%v): %v", e.Err, e.Rollback)
}

// Unwrap returns the original error that triggered the rollback.
func (e *RollbackError) Unwrap() error { return e.Err }
