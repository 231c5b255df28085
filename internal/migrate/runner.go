// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/talentmesh/talentmesh/internal/store"
)

// RunState is the terminal (or in-flight) state of one runner invocation.
type RunState string

// Run states. Pending -> Running -> one of the terminal three.
const (
	StatePending             RunState = "pending"
	StateRunning             RunState = "running"
	StateCompleted           RunState = "completed"
	StateRolledBack          RunState = "rolled_back"
	StateFailedIrrecoverable RunState = "failed_irrecoverable"
)

// RollbackStatus records the outcome of one attempted rollback.
type RollbackStatus string

// Rollback outcomes.
const (
	RollbackSucceeded RollbackStatus = "succeeded"
	RollbackFailed    RollbackStatus = "failed"
	RollbackSkipped   RollbackStatus = "skipped" // step defines no rollback
)

// RollbackResult is one entry of the rollback sweep, in sweep order
// (reverse of application order).
type RollbackResult struct {
	Step   string
	Status RollbackStatus
}

// Report is what a runner invocation tells the operator.
type Report struct {
	State      RunState
	Applied    []string
	FailedStep string
	Rollbacks  []RollbackResult
}

// RollbackComplete reports whether every attempted rollback either
// succeeded or was skipped for lack of a rollback action.
func (r Report) RollbackComplete() bool {
	for _, rb := range r.Rollbacks {
		if rb.Status == RollbackFailed {
			return false
		}
	}
	return true
}

// historyTable records committed steps. Append-only except that a
// successfully rolled-back step has its row removed again; surviving
// rows are the durable audit trail both the runner and the lockdown
// procedure append to.
const historyTable = `CREATE TABLE IF NOT EXISTS schema_steps (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Runner executes step sets under the schema advisory lock. Not safe
// to run concurrently with itself or with the lockdown procedure; the
// lock enforces that, and a held lock rejects the run rather than
// interleaving steps.
type Runner struct {
	db     store.DB
	logger *slog.Logger
}

// NewRunner creates a Runner on the given handle.
func NewRunner(db store.DB, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{db: db, logger: logger}
}

// Run applies the steps in order. On the first failure it halts and
// rolls back every committed step in reverse order, attempting every
// remaining rollback even when one of them fails. The returned error is
// nil only when the report state is Completed.
//
// Within one invocation steps are causally ordered: step N's effects
// are visible before step N+1 begins. Across invocations the advisory
// lock provides total ordering.
func (r *Runner) Run(ctx context.Context, steps []Step) (Report, error) {
	report := Report{State: StatePending}

	if err := validateSteps(steps); err != nil {
		report.State = StateFailedIrrecoverable
		return report, err
	}

	unlock, err := store.AcquireSchemaLock(ctx, r.db)
	if err != nil {
		return report, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.Error("failed to release schema lock", "error", err)
		}
	}()

	report.State = StateRunning

	if _, err := r.db.Exec(ctx, historyTable); err != nil {
		report.State = StateFailedIrrecoverable
		return report, oops.Code("MIGRATION_HISTORY_FAILED").With("operation", "ensure history table").Wrap(err)
	}

	executed := make([]Step, 0, len(steps))
	for _, step := range steps {
		r.logger.Info("applying step", "step", step.Name)
		if err := step.Forward(ctx, r.db); err != nil {
			report.FailedStep = step.Name
			r.logger.Error("step failed, starting rollback sweep",
				"step", step.Name,
				"error", err,
				"committed_steps", len(executed),
			)
			report.Rollbacks = r.rollbackSweep(ctx, executed)
			if report.RollbackComplete() {
				report.State = StateRolledBack
			} else {
				report.State = StateFailedIrrecoverable
			}
			return report, oops.Code("MIGRATION_STEP_FAILED").
				With("step", step.Name).
				With("rollback_complete", report.RollbackComplete()).
				Wrap(err)
		}

		executed = append(executed, step)
		report.Applied = append(report.Applied, step.Name)
		if err := r.recordApplied(ctx, step.Name); err != nil {
			r.logger.Warn("failed to record applied step", "step", step.Name, "error", err)
		}
	}

	report.State = StateCompleted
	r.logger.Info("migration set completed", "steps", len(steps))
	return report, nil
}

// rollbackSweep rolls back the executed steps in reverse order. A
// rollback failure is logged and the sweep continues: partial rollback
// beats none.
func (r *Runner) rollbackSweep(ctx context.Context, executed []Step) []RollbackResult {
	results := make([]RollbackResult, 0, len(executed))
	for i := len(executed) - 1; i >= 0; i-- {
		step := executed[i]
		if step.Rollback == nil {
			r.logger.Warn("step defines no rollback, skipping", "step", step.Name)
			results = append(results, RollbackResult{Step: step.Name, Status: RollbackSkipped})
			continue
		}
		if err := step.Rollback(ctx, r.db); err != nil {
			r.logger.Error("rollback failed, continuing sweep", "step", step.Name, "error", err)
			results = append(results, RollbackResult{Step: step.Name, Status: RollbackFailed})
			continue
		}
		if err := r.removeApplied(ctx, step.Name); err != nil {
			r.logger.Warn("failed to remove applied record", "step", step.Name, "error", err)
		}
		results = append(results, RollbackResult{Step: step.Name, Status: RollbackSucceeded})
	}
	return results
}

func (r *Runner) recordApplied(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO schema_steps (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return oops.With("step", name).Wrap(err)
	}
	return nil
}

func (r *Runner) removeApplied(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM schema_steps WHERE name = $1`, name)
	if err != nil {
		return oops.With("step", name).Wrap(err)
	}
	return nil
}

// AppliedSteps returns the recorded step history in application order.
func AppliedSteps(ctx context.Context, db store.DB) ([]string, error) {
	rows, err := db.Query(ctx, `SELECT name FROM schema_steps ORDER BY applied_at, name`)
	if err != nil {
		return nil, oops.With("operation", "query applied steps").Wrap(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.With("operation", "scan applied step").Wrap(err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate applied steps").Wrap(err)
	}
	return names, nil
}

// validateSteps rejects empty and duplicate step names before any work
// starts; a duplicate name would corrupt the audit trail.
func validateSteps(steps []Step) error {
	seen := make(map[string]struct{}, len(steps))
	for i, step := range steps {
		if step.Name == "" {
			return oops.Code("MIGRATION_STEP_INVALID").Errorf("step %d has an empty name", i)
		}
		if step.Forward == nil {
			return oops.Code("MIGRATION_STEP_INVALID").Errorf("step %q has no forward action", step.Name)
		}
		if _, dup := seen[step.Name]; dup {
			return oops.Code("MIGRATION_STEP_INVALID").Errorf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = struct{}{}
	}
	if len(steps) == 0 {
		return oops.Code("MIGRATION_STEP_INVALID").Errorf("step list is empty")
	}
	return nil
}

// String implements fmt.Stringer for operator output.
func (r Report) String() string {
	switch r.State {
	case StateCompleted:
		return fmt.Sprintf("completed (%d steps)", len(r.Applied))
	case StateRolledBack:
		return fmt.Sprintf("failed at %q, rollback complete", r.FailedStep)
	case StateFailedIrrecoverable:
		if r.FailedStep != "" {
			return fmt.Sprintf("failed at %q, rollback PARTIAL: manual follow-up required", r.FailedStep)
		}
		return "failed before any step ran"
	default:
		return string(r.State)
	}
}
