package sql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
)

// Isolation levels accepted by TxManager.Begin and SetIsolationLevel. The
// string is forwarded verbatim to the backend.
const (
	LevelReadUncommitted = "READ UNCOMMITTED"
	LevelReadCommitted   = "READ COMMITTED"
	LevelRepeatableRead  = "REPEATABLE READ"
	LevelSerializable    = "SERIALIZABLE"
)

// TxManager tracks a transaction nesting level over a single pinned
// connection. The outermost Begin issues a native BEGIN; inner Begins create
// savepoints named by level when the dialect supports them. A TxManager is
// not safe for concurrent use; callers serialize access themselves.
type TxManager struct {
	drv        *Driver
	session    *Session
	level      int
	savepoints bool
	log        *slog.Logger
}

// TxOption configures a TxManager.
type TxOption func(*TxManager)

// WithSavepoints overrides the dialect's savepoint capability. Disabling
// savepoints flattens nested transactions into the outermost one.
func WithSavepoints(enabled bool) TxOption {
	return func(m *TxManager) { m.savepoints = enabled }
}

// WithTxLogger sets the logger used for flattening warnings.
func WithTxLogger(log *slog.Logger) TxOption {
	return func(m *TxManager) { m.log = log }
}

// NewTxManager creates a transaction manager for the given driver. Savepoint
// support defaults to the dialect's capability set.
func NewTxManager(drv *Driver, opts ...TxOption) *TxManager {
	m := &TxManager{drv: drv, log: slog.Default()}
	if drv != nil {
		m.savepoints = dialect.FeaturesFor(drv.Dialect()).Savepoints
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Level returns the current nesting level. Zero means idle.
func (m *TxManager) Level() int { return m.level }

// IsActive reports whether a transaction is open.
func (m *TxManager) IsActive() bool { return m.level > 0 && m.session != nil }

// Conn returns the execution target for statements that must run inside the
// transaction: the pinned session while active, the pool otherwise.
func (m *TxManager) Conn() dialect.ExecQuerier {
	if m.IsActive() {
		return m.session
	}
	return m.drv
}

// Begin opens a transaction or, when one is already active, a nested level.
// An empty isolation string keeps the backend default. On MySQL the isolation
// statement runs before the native BEGIN and applies to the next transaction
// only; this is the backend's own limitation.
func (m *TxManager) Begin(ctx context.Context, isolation string) error {
	if m.drv == nil {
		return dbx.NewConfigurationError("begin", dbx.ErrNotOpen)
	}
	if !m.drv.IsOpen() {
		return dbx.NewConfigurationError("begin", dbx.ErrNotOpen)
	}
	if m.level > 0 {
		if m.savepoints {
			if err := m.exec(ctx, fmt.Sprintf("SAVEPOINT LEVEL%d", m.level)); err != nil {
				return err
			}
		} else {
			m.log.Warn("nested transaction flattened: dialect has no savepoint support",
				"dialect", m.drv.Dialect(), "level", m.level+1)
		}
		m.level++
		return nil
	}
	session, err := m.drv.Session(ctx)
	if err != nil {
		return err
	}
	m.session = session
	if isolation != "" {
		if err := m.exec(ctx, "SET TRANSACTION ISOLATION LEVEL "+isolation); err != nil {
			m.release()
			return err
		}
	}
	if err := m.exec(ctx, m.beginCommand()); err != nil {
		m.release()
		return err
	}
	m.level = 1
	return nil
}

// Commit releases the current level. At the outermost level it issues a
// native COMMIT and returns the connection to the pool; at inner levels it
// releases the level's savepoint.
func (m *TxManager) Commit(ctx context.Context) error {
	if !m.IsActive() {
		return dbx.NewTxStateError("commit", m.level)
	}
	m.level--
	if m.level == 0 {
		err := m.exec(ctx, "COMMIT")
		m.release()
		return err
	}
	if m.savepoints {
		return m.exec(ctx, fmt.Sprintf("RELEASE SAVEPOINT LEVEL%d", m.level))
	}
	return nil
}

// Rollback unwinds the current level. Called while idle it is a no-op so
// callers can roll back unconditionally after a failed commit. At inner
// levels without savepoint support a partial rollback is impossible;
// dbx.ErrNestedRollback is returned and must propagate so the outer
// transaction rolls back too.
func (m *TxManager) Rollback(ctx context.Context) error {
	if !m.IsActive() {
		return nil
	}
	m.level--
	if m.level == 0 {
		err := m.exec(ctx, "ROLLBACK")
		m.release()
		return err
	}
	if m.savepoints {
		return m.exec(ctx, fmt.Sprintf("ROLLBACK TO SAVEPOINT LEVEL%d", m.level))
	}
	return dbx.ErrNestedRollback
}

// SetIsolationLevel forwards the isolation level to the open transaction.
func (m *TxManager) SetIsolationLevel(ctx context.Context, isolation string) error {
	if !m.IsActive() {
		return dbx.NewTxStateError("set isolation level", m.level)
	}
	return m.exec(ctx, "SET TRANSACTION ISOLATION LEVEL "+isolation)
}

// RunInTx executes fn inside a transaction. The nesting level is captured
// right after Begin; the commit happens only if fn left the manager at that
// exact level, so work that committed or unwound on its own is not committed
// twice. On error the same level is rolled back best-effort; a secondary
// rollback failure is attached to the original error as *dbx.RollbackError.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.Begin(ctx, ""); err != nil {
		return err
	}
	level := m.level
	if err := fn(ctx); err != nil {
		if m.IsActive() && m.level == level {
			if rerr := m.Rollback(ctx); rerr != nil {
				return &dbx.RollbackError{Err: err, Rollback: rerr}
			}
		}
		return err
	}
	if m.IsActive() && m.level == level {
		return m.Commit(ctx)
	}
	return nil
}

func (m *TxManager) beginCommand() string {
	if m.drv.Dialect() == dialect.MySQL {
		return "START TRANSACTION"
	}
	return "BEGIN"
}

func (m *TxManager) exec(ctx context.Context, command string) error {
	return m.session.Exec(ctx, command, []any{}, nil)
}

func (m *TxManager) release() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
	m.level = 0
}
