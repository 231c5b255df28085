// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// SchemaLockKey is the advisory lock serializing every schema- or
// policy-mutating run (migration set and lockdown share it: the two
// must never interleave).
const SchemaLockKey = int64(0x744d5348) // "tMSH"

// UnlockFunc releases the schema advisory lock along with any session
// pinned for it. Call exactly once, at terminal state.
type UnlockFunc func(ctx context.Context) error

// AcquireSchemaLock takes the advisory lock, retrying with fibonacci
// backoff for a bounded window, and returns the UnlockFunc that
// releases it. A holder that does not yield within the window causes a
// SCHEMA_LOCK_HELD error; callers reject the run rather than interleave
// steps with the holder.
//
// Advisory locks are session-scoped, so both the lock and the unlock
// must run on the same connection. When db is a pool, one connection is
// checked out and held until the UnlockFunc runs; any other handle is
// treated as a single session already.
func AcquireSchemaLock(ctx context.Context, db DB) (UnlockFunc, error) {
	session, releaseSession, err := pinSession(ctx, db)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxDuration(15*time.Second, retry.NewFibonacci(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		var acquired bool
		if err := session.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, SchemaLockKey).Scan(&acquired); err != nil {
			return oops.Code("SCHEMA_LOCK_QUERY_FAILED").Wrap(err)
		}
		if !acquired {
			return retry.RetryableError(oops.Code("SCHEMA_LOCK_HELD").Errorf("advisory lock %d is held", SchemaLockKey))
		}
		return nil
	})
	if err != nil {
		releaseSession()
		return nil, oops.Code("SCHEMA_LOCK_HELD").
			With("lock_key", SchemaLockKey).
			Wrapf(err, "another migration or lockdown run is in progress")
	}

	return func(ctx context.Context) error {
		defer releaseSession()
		var released bool
		if err := session.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, SchemaLockKey).Scan(&released); err != nil {
			return oops.Code("SCHEMA_LOCK_RELEASE_FAILED").Wrap(err)
		}
		if !released {
			return oops.Code("SCHEMA_LOCK_RELEASE_FAILED").Errorf("advisory lock %d was not held by this session", SchemaLockKey)
		}
		return nil
	}, nil
}

// pinSession resolves the single session the lock lives on. A pool
// hands out a different connection per query, which would take the lock
// on one session and attempt the unlock on another, leaving the lock
// pinned to a random idle connection; checking out one connection for
// the lock's lifetime prevents that. Non-pool handles (a single
// connection, a mock) are one session by construction.
func pinSession(ctx context.Context, db DB) (DB, func(), error) {
	pool, ok := db.(*pgxpool.Pool)
	if !ok {
		return db, func() {}, nil
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, nil, oops.Code("SCHEMA_LOCK_SESSION_FAILED").Wrap(err)
	}
	return conn, conn.Release, nil
}
