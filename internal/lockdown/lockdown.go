// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package lockdown is the operator-invoked remediation that restores
// default-deny anonymous access after an isolation defect.
//
// It is built from the same step primitives as the migration runner and
// runs under the same advisory lock. The three phases are ordered so
// the unsafe state (a broad anonymous allow) never survives a partial
// run: interrupted after phase 1, anonymous access is fully denied, not
// fully open.
package lockdown

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/talentmesh/talentmesh/internal/access"
	"github.com/talentmesh/talentmesh/internal/migrate"
	"github.com/talentmesh/talentmesh/internal/store"
)

// sensitiveEntityTypes are the record kinds that must never be readable
// anonymously. Jobs are included: only the narrow published-job rule
// re-opens them.
var sensitiveEntityTypes = []access.EntityType{
	access.EntityClient,
	access.EntityJob,
	access.EntityCandidate,
	access.EntityPipeline,
	access.EntityNote,
	access.EntityInsight,
	access.EntityApplication,
	access.EntityOrgSettings,
}

// Rule names installed by the narrow re-permit phase. The revoke phase
// preserves exactly these; everything else anonymous-allow is broad by
// definition and removed.
const (
	RulePublicJobRead     = "public:job-read"
	RulePublicApplication = "public:application-insert"
	RuleDemoReadOnly      = "demo:read-only"
)

var narrowRuleNames = []string{RulePublicJobRead, RulePublicApplication, RuleDemoReadOnly}

// Report is the outcome of one lockdown invocation.
type Report struct {
	migrate.Report

	// Verified is true when the post-run safety check established that
	// every sensitive entity type carries an anonymous default-deny and
	// no broad anonymous allow survives. False demands manual
	// intervention regardless of the run state.
	Verified bool
}

// Steps returns the fixed three-phase step list. Phase order is load-
// bearing; see the package comment.
func Steps() []migrate.Step {
	return []migrate.Step{
		{
			Name:    "revoke-anonymous-broad-grants",
			Forward: revokeBroadGrants,
			// Deleted grants are not reconstructable; this phase is
			// deliberately irreversible and the sweep skips it.
			Rollback: nil,
		},
		{
			Name:     "install-anonymous-default-deny",
			Forward:  installDefaultDeny,
			Rollback: removeDefaultDeny,
		},
		{
			Name:     "install-narrow-permits",
			Forward:  installNarrowPermits,
			Rollback: removeNarrowPermits,
		},
	}
}

// Run executes the lockdown under the schema advisory lock and then
// verifies the safety invariant. Idempotent: every forward is guarded,
// so repeated runs converge.
func Run(ctx context.Context, db store.DB, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	runner := migrate.NewRunner(db, logger)
	runReport, runErr := runner.Run(ctx, Steps())
	report := Report{Report: runReport}
	if runErr != nil {
		return report, runErr
	}

	verified, err := VerifySafety(ctx, db)
	if err != nil {
		return report, oops.Code("LOCKDOWN_VERIFY_FAILED").Wrap(err)
	}
	report.Verified = verified
	if !verified {
		return report, oops.Code("LOCKDOWN_UNSAFE").
			Errorf("lockdown ran but the default-deny invariant could not be established; manual intervention required")
	}

	logger.Info("lockdown complete", "steps", len(runReport.Applied))
	return report, nil
}

// revokeBroadGrants removes every anonymous allow rule except the
// narrow named permits phase 3 reinstalls.
func revokeBroadGrants(ctx context.Context, db store.DB) error {
	_, err := db.Exec(ctx,
		`DELETE FROM access_rules
		 WHERE actor_class = 'anonymous'
		   AND effect = 'allow'
		   AND NOT (rule_name = ANY($1))`,
		narrowRuleNames)
	if err != nil {
		return oops.With("phase", "revoke broad grants").Wrap(err)
	}
	return nil
}

// installDefaultDeny inserts an anonymous deny row for every sensitive
// entity type. ON CONFLICT keeps the phase idempotent.
func installDefaultDeny(ctx context.Context, db store.DB) error {
	for _, entity := range sensitiveEntityTypes {
		_, err := db.Exec(ctx,
			`INSERT INTO access_rules (rule_name, actor_class, entity_type, operation, effect)
			 VALUES ($1, 'anonymous', $2, '*', 'deny')
			 ON CONFLICT (rule_name) DO NOTHING`,
			defaultDenyRuleName(entity), string(entity))
		if err != nil {
			return oops.With("phase", "install default deny").With("entity_type", entity).Wrap(err)
		}
	}
	return nil
}

// removeDefaultDeny is the rollback for installDefaultDeny.
func removeDefaultDeny(ctx context.Context, db store.DB) error {
	for _, entity := range sensitiveEntityTypes {
		_, err := db.Exec(ctx,
			`DELETE FROM access_rules WHERE rule_name = $1`, defaultDenyRuleName(entity))
		if err != nil {
			return oops.With("phase", "remove default deny").With("entity_type", entity).Wrap(err)
		}
	}
	return nil
}

// installNarrowPermits re-installs the two legitimate anonymous
// operations and demo read-only access.
func installNarrowPermits(ctx context.Context, db store.DB) error {
	rules := []struct {
		name       string
		actorClass string
		entity     access.EntityType
		operation  access.Operation
	}{
		{RulePublicJobRead, "anonymous", access.EntityJob, access.OpRead},
		{RulePublicApplication, "anonymous", access.EntityApplication, access.OpInsert},
		{RuleDemoReadOnly, "demo", "*", access.OpRead},
	}
	for _, rule := range rules {
		_, err := db.Exec(ctx,
			`INSERT INTO access_rules (rule_name, actor_class, entity_type, operation, effect)
			 VALUES ($1, $2, $3, $4, 'allow')
			 ON CONFLICT (rule_name) DO NOTHING`,
			rule.name, rule.actorClass, string(rule.entity), string(rule.operation))
		if err != nil {
			return oops.With("phase", "install narrow permits").With("rule", rule.name).Wrap(err)
		}
	}
	return nil
}

// removeNarrowPermits is the rollback for installNarrowPermits.
func removeNarrowPermits(ctx context.Context, db store.DB) error {
	_, err := db.Exec(ctx,
		`DELETE FROM access_rules WHERE rule_name = ANY($1)`, narrowRuleNames)
	if err != nil {
		return oops.With("phase", "remove narrow permits").Wrap(err)
	}
	return nil
}

// VerifySafety checks the post-lockdown invariant: a default-deny row
// exists for every sensitive entity type, and no anonymous allow rule
// other than the narrow named permits survives.
func VerifySafety(ctx context.Context, db store.DB) (bool, error) {
	var denyCount int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM access_rules
		 WHERE actor_class = 'anonymous' AND effect = 'deny' AND operation = '*'`).Scan(&denyCount)
	if err != nil {
		return false, oops.With("check", "default deny coverage").Wrap(err)
	}
	if denyCount < len(sensitiveEntityTypes) {
		return false, nil
	}

	var broadAllows int
	err = db.QueryRow(ctx,
		`SELECT count(*) FROM access_rules
		 WHERE actor_class = 'anonymous'
		   AND effect = 'allow'
		   AND NOT (rule_name = ANY($1))`,
		narrowRuleNames).Scan(&broadAllows)
	if err != nil {
		return false, oops.With("check", "broad allow survivors").Wrap(err)
	}
	return broadAllows == 0, nil
}

func defaultDenyRuleName(entity access.EntityType) string {
	return fmt.Sprintf("lockdown:deny-anonymous-%s", entity)
}
