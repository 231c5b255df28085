// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package store provides the PostgreSQL execution primitive the access
// core runs on. The core needs nothing from the database beyond
// synchronous success/failure of a statement or query; everything here
// is expressed against the DB interface so tests run on pgxmock.
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// DB is the single execution primitive consumed by the core. Satisfied
// by *pgxpool.Pool and by pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the connection pool. Request-handling code is never handed
// a Store; it receives only the enforcement gateway, which keeps its DB
// handle unexported. Operator tooling (migrate, lockdown, status) uses
// the Store directly.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to PostgreSQL.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return &Store{pool: pool}, nil
}

// DB returns the execution handle. Called at wiring time only, to
// construct the gateway and operator tools.
func (s *Store) DB() DB {
	return s.pool
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// IsDuplicateObject reports whether err is PostgreSQL telling us the
// object a statement creates already exists. Idempotent migration
// forwards treat these as convergence, not failure.
func IsDuplicateObject(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.DuplicateTable,
		pgerrcode.DuplicateObject,
		pgerrcode.DuplicateColumn,
		pgerrcode.DuplicateSchema,
		pgerrcode.UniqueViolation:
		return true
	}
	return false
}
