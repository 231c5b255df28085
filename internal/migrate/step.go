// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package migrate executes ordered, named schema and policy change
// steps with all-or-nothing semantics.
//
// Each Step pairs a forward action with an optional rollback. A run
// applies steps strictly in order; the first failure halts forward
// progress and triggers a reverse-order rollback of exactly the steps
// that committed. Forward actions are written idempotently (existence
// guards) so re-running a full set after a failure converges instead of
// erroring on already-applied work.
package migrate

import (
	"context"

	"github.com/samber/oops"

	"github.com/talentmesh/talentmesh/internal/store"
)

// Action is one executable unit of change against the store.
type Action func(ctx context.Context, db store.DB) error

// Step is one named, stable unit of structural or policy change.
// Names are unique within a set and never reused: the applied record
// keyed by name is the durable audit trail.
type Step struct {
	Name    string
	Forward Action

	// Rollback inverts Forward. Nil means the step is irreversible;
	// the rollback sweep skips it with a warning rather than failing.
	Rollback Action
}

// Statement builds an Action that executes a single SQL statement.
// A duplicate-object error is treated as convergence, not failure, so
// statements without an IF NOT EXISTS form stay idempotent.
func Statement(sql string, args ...any) Action {
	return func(ctx context.Context, db store.DB) error {
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			if store.IsDuplicateObject(err) {
				return nil
			}
			return oops.With("statement", sql).Wrap(err)
		}
		return nil
	}
}

// Statements builds an Action that executes several SQL statements in
// order, with the same duplicate-object tolerance as Statement.
func Statements(sqls ...string) Action {
	return func(ctx context.Context, db store.DB) error {
		for _, sql := range sqls {
			if _, err := db.Exec(ctx, sql); err != nil {
				if store.IsDuplicateObject(err) {
					continue
				}
				return oops.With("statement", sql).Wrap(err)
			}
		}
		return nil
	}
}
