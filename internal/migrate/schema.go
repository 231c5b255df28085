// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package migrate

// DefaultSteps returns the deploy-time step set for the access core:
// membership storage, the audit log, and the rule table the lockdown
// procedure manages. The list is static and append-only; existing step
// names are never renamed or deleted.
func DefaultSteps() []Step {
	return []Step{
		{
			Name: "create-org-memberships",
			Forward: Statement(`CREATE TABLE IF NOT EXISTS org_memberships (
				actor_id TEXT NOT NULL,
				org_id   TEXT NOT NULL,
				role     TEXT NOT NULL,
				PRIMARY KEY (actor_id, org_id)
			)`),
			Rollback: Statement(`DROP TABLE IF EXISTS org_memberships`),
		},
		{
			Name: "create-access-audit-log",
			Forward: Statement(`CREATE TABLE IF NOT EXISTS access_audit_log (
				id          TEXT PRIMARY KEY,
				actor_id    TEXT,
				actor_kind  TEXT NOT NULL,
				operation   TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				entity_id   TEXT NOT NULL,
				org_id      TEXT,
				allowed     BOOLEAN NOT NULL,
				reason      TEXT,
				occurred_at TIMESTAMPTZ NOT NULL
			)`),
			Rollback: Statement(`DROP TABLE IF EXISTS access_audit_log`),
		},
		{
			Name: "create-access-rules",
			Forward: Statement(`CREATE TABLE IF NOT EXISTS access_rules (
				rule_name   TEXT PRIMARY KEY,
				actor_class TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				operation   TEXT NOT NULL,
				effect      TEXT NOT NULL CHECK (effect IN ('allow', 'deny'))
			)`),
			Rollback: Statement(`DROP TABLE IF EXISTS access_rules`),
		},
		{
			Name: "index-audit-log-occurred-at",
			Forward: Statement(
				`CREATE INDEX IF NOT EXISTS access_audit_log_occurred_at_idx
				 ON access_audit_log (occurred_at)`),
			Rollback: Statement(`DROP INDEX IF EXISTS access_audit_log_occurred_at_idx`),
		},
	}
}
