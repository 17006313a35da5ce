package dbx

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	cause := errors.New("dsn is required")
	err := NewConfigurationError("open", cause)
	assert.EqualError(t, err, "dbx: open: invalid configuration: dsn is required")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsConfiguration(err))
	assert.True(t, IsConfiguration(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsConfiguration(nil))
	assert.False(t, IsConfiguration(io.EOF))

	bare := NewConfigurationError("begin", nil)
	assert.EqualError(t, bare, "dbx: begin: invalid configuration")
}

func TestBuildError(t *testing.T) {
	err := NewBuildError("between", "expects 2 values, got %d", 3)
	assert.EqualError(t, err, "dbx: build between: expects 2 values, got 3")
	assert.True(t, IsBuild(err))
	assert.True(t, IsBuild(fmt.Errorf("compile: %w", err)))
	assert.False(t, IsBuild(io.EOF))

	anon := &BuildError{Msg: "empty operand"}
	assert.EqualError(t, anon, "dbx: build: empty operand")
}

func TestTxStateError(t *testing.T) {
	err := NewTxStateError("commit", 0)
	assert.EqualError(t, err, "dbx: commit: transaction is not active (level=0)")
	assert.True(t, IsTxState(err))
	assert.True(t, errors.Is(err, ErrTxNotActive))
	assert.True(t, IsTxState(ErrTxNotActive))
	assert.True(t, IsTxState(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsTxState(nil))
	assert.False(t, IsTxState(ErrNotOpen))
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupportedError("sqlite", "advisory locks")
	assert.EqualError(t, err, "dbx: sqlite does not support advisory locks")
	assert.True(t, IsUnsupported(err))
	assert.True(t, IsUnsupported(fmt.Errorf("lock: %w", err)))
	assert.False(t, IsUnsupported(io.EOF))
}

func TestExecutionError(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := NewExecutionError("UPDATE `users` SET `a`=?", cause)
	assert.EqualError(t, err, "dbx: exec: deadlock detected")
	assert.Equal(t, "UPDATE `users` SET `a`=?", err.Query)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsExecution(err))
	assert.True(t, IsExecution(fmt.Errorf("run: %w", err)))
	assert.False(t, IsExecution(nil))
}

func TestRollbackError(t *testing.T) {
	boom := errors.New("boom")
	err := &RollbackError{Err: boom, Rollback: io.ErrClosedPipe}
	assert.EqualError(t, err, "dbx: rolling back (boom): io: read/write on closed pipe")
	// Unwrap exposes the original error, not the rollback failure.
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, io.ErrClosedPipe))
}
