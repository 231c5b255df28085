// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package audit

import (
	"context"

	"github.com/samber/oops"

	"github.com/talentmesh/talentmesh/internal/store"
)

// PostgresWriter appends audit entries to the access_audit_log table.
type PostgresWriter struct {
	db store.DB
}

// NewPostgresWriter creates a PostgresWriter on the given handle.
func NewPostgresWriter(db store.DB) *PostgresWriter {
	return &PostgresWriter{db: db}
}

// WriteSync inserts one entry. Append-only by construction: there is no
// update or upsert path into the audit table.
func (w *PostgresWriter) WriteSync(ctx context.Context, entry Entry) error {
	_, err := w.db.Exec(ctx,
		`INSERT INTO access_audit_log (
			id, actor_id, actor_kind, operation, entity_type, entity_id,
			org_id, allowed, reason, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.ActorID,
		string(entry.ActorKind),
		string(entry.Operation),
		string(entry.EntityType),
		entry.EntityID,
		entry.OrgID,
		entry.Allowed,
		entry.Reason,
		entry.Timestamp,
	)
	if err != nil {
		return oops.With("operation", "insert audit entry").
			With("entity_type", entry.EntityType).
			With("entity_id", entry.EntityID).
			Wrap(err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (w *PostgresWriter) Close() error {
	return nil
}
