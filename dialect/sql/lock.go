package sql

import (
	"context"
	dsql "database/sql"
	"hash/crc32"
	"sync"
	"time"

	"github.com/syssam/dbx"
	"github.com/syssam/dbx/dialect"
)

// Locker acquires named advisory locks on the backend. Acquisition is a
// bounded wait returning false on timeout rather than an error; only driver
// failures surface as errors. Implementations track what they hold so
// ReleaseAll can run at shutdown.
type Locker interface {
	Acquire(ctx context.Context, name string, timeout time.Duration) (bool, error)
	Release(ctx context.Context, name string) (bool, error)
	ReleaseAll(ctx context.Context) error
}

// NewLocker returns the advisory-lock implementation for the driver's
// dialect. SQLite has no server-side advisory locks.
func NewLocker(drv *Driver) (Locker, error) {
	switch drv.Dialect() {
	case dialect.MySQL:
		return &mysqlLocker{drv: drv, held: map[string]bool{}}, nil
	case dialect.Postgres:
		return &postgresLocker{drv: drv, held: map[string]uint32{}}, nil
	case dialect.Oracle:
		return &oracleLocker{drv: drv, held: map[string]bool{}}, nil
	default:
		return nil, dbx.NewUnsupportedError(drv.Dialect(), "advisory locks")
	}
}

// mysqlLocker maps names onto GET_LOCK/RELEASE_LOCK. The server handles the
// wait itself, so no client-side polling is needed.
type mysqlLocker struct {
	drv  *Driver
	mu   sync.Mutex
	held map[string]bool
}

func (l *mysqlLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	ok, err := queryBool(ctx, l.drv, "SELECT GET_LOCK(?, ?)", name, int(timeout.Seconds()))
	if err != nil {
		return false, err
	}
	if ok {
		l.mu.Lock()
		l.held[name] = true
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *mysqlLocker) Release(ctx context.Context, name string) (bool, error) {
	ok, err := queryBool(ctx, l.drv, "SELECT RELEASE_LOCK(?)", name)
	if err != nil {
		return false, err
	}
	l.mu.Lock()
	delete(l.held, name)
	l.mu.Unlock()
	return ok, nil
}

func (l *mysqlLocker) ReleaseAll(ctx context.Context) error {
	l.mu.Lock()
	names := make([]string, 0, len(l.held))
	for name := range l.held {
		names = append(names, name)
	}
	l.mu.Unlock()
	for _, name := range names {
		if _, err := l.Release(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// postgresLocker maps names onto pg_try_advisory_lock keyed by the CRC-32 of
// the name. pg_try_advisory_lock never blocks, so the wait is a client-side
// polling loop.
type postgresLocker struct {
	drv  *Driver
	mu   sync.Mutex
	held map[string]uint32
}

// lockPollInterval is the delay between pg_try_advisory_lock attempts.
const lockPollInterval = 50 * time.Millisecond

func (l *postgresLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	key := crc32.ChecksumIEEE([]byte(name))
	deadline := time.Now().Add(timeout)
	for {
		ok, err := queryBool(ctx, l.drv, "SELECT pg_try_advisory_lock($1)", int64(key))
		if err != nil {
			return false, err
		}
		if ok {
			l.mu.Lock()
			l.held[name] = key
			l.mu.Unlock()
			return true, nil
		}
		if !time.Now().Add(lockPollInterval).Before(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *postgresLocker) Release(ctx context.Context, name string) (bool, error) {
	l.mu.Lock()
	key, ok := l.held[name]
	l.mu.Unlock()
	if !ok {
		key = crc32.ChecksumIEEE([]byte(name))
	}
	released, err := queryBool(ctx, l.drv, "SELECT pg_advisory_unlock($1)", int64(key))
	if err != nil {
		return false, err
	}
	l.mu.Lock()
	delete(l.held, name)
	l.mu.Unlock()
	return released, nil
}

func (l *postgresLocker) ReleaseAll(ctx context.Context) error {
	l.mu.Lock()
	names := make([]string, 0, len(l.held))
	for name := range l.held {
		names = append(names, name)
	}
	l.mu.Unlock()
	for _, name := range names {
		if _, err := l.Release(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// oracleLocker maps names onto DBMS_LOCK. The request runs in an anonymous
// block; DBMS_LOCK.REQUEST handles the wait server-side and reports the
// outcome through an out parameter.
type oracleLocker struct {
	drv  *Driver
	mu   sync.Mutex
	held map[string]bool
}

const oracleAcquire = `DECLARE
	handle VARCHAR2(128);
BEGIN
	DBMS_LOCK.ALLOCATE_UNIQUE(:name, handle);
	:result := DBMS_LOCK.REQUEST(handle, DBMS_LOCK.X_MODE, :timeout, FALSE);
END;`

const oracleRelease = `DECLARE
	handle VARCHAR2(128);
BEGIN
	DBMS_LOCK.ALLOCATE_UNIQUE(:name, handle);
	:result := DBMS_LOCK.RELEASE(handle);
END;`

func (l *oracleLocker) Acquire(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	var result int64
	args := []any{
		dsql.Named("name", name),
		dsql.Named("result", dsql.Out{Dest: &result}),
		dsql.Named("timeout", int(timeout.Seconds())),
	}
	if err := l.drv.Exec(ctx, oracleAcquire, args, nil); err != nil {
		return false, err
	}
	// 0 means granted, 1 means timeout, 4 means already owned.
	ok := result == 0 || result == 4
	if ok {
		l.mu.Lock()
		l.held[name] = true
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *oracleLocker) Release(ctx context.Context, name string) (bool, error) {
	var result int64
	args := []any{
		dsql.Named("name", name),
		dsql.Named("result", dsql.Out{Dest: &result}),
	}
	if err := l.drv.Exec(ctx, oracleRelease, args, nil); err != nil {
		return false, err
	}
	l.mu.Lock()
	delete(l.held, name)
	l.mu.Unlock()
	return result == 0, nil
}

func (l *oracleLocker) ReleaseAll(ctx context.Context) error {
	l.mu.Lock()
	names := make([]string, 0, len(l.held))
	for name := range l.held {
		names = append(names, name)
	}
	l.mu.Unlock()
	for _, name := range names {
		if _, err := l.Release(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// queryBool runs a single-row, single-column boolean probe.
func queryBool(ctx context.Context, drv *Driver, query string, args ...any) (bool, error) {
	var rows Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return false, rows.Err()
	}
	var v dsql.NullBool
	if err := rows.Scan(&v); err != nil {
		return false, err
	}
	return v.Valid && v.Bool, nil
}
