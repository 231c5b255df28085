// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package gateway is the single chokepoint between request handling and
// storage.
//
// The DB handle lives unexported inside the Gateway, and request
// handlers are wired with the Gateway alone, so there is no code path
// that reaches storage without a policy decision. This replaces the
// old convention of every handler remembering to filter by org id.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/talentmesh/talentmesh/internal/access"
	"github.com/talentmesh/talentmesh/internal/access/audit"
	"github.com/talentmesh/talentmesh/internal/store"
	"github.com/talentmesh/talentmesh/internal/tenancy"
)

// Gateway wraps every storage call in a policy decision plus an audit
// record. Concurrent invocations are independent; the audit sink is
// append-only under concurrent writers.
type Gateway struct {
	db     store.DB
	sink   *audit.Sink
	logger *slog.Logger
}

// New creates a Gateway. After construction the db handle is reachable
// only through Execute and ExecuteCreate.
func New(db store.DB, sink *audit.Sink, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{db: db, sink: sink, logger: logger}
}

// Execute decides the operation and, on permit, runs action against
// storage. On deny it returns *AuthzError and never partial data.
func Execute[T any](ctx context.Context, gw *Gateway, actor tenancy.ActorContext, op access.Operation, target access.Target, action func(ctx context.Context, db store.DB) (T, error)) (T, error) {
	var zero T

	decision := access.Decide(actor, op, target)
	if err := decision.Validate(); err != nil {
		// Fail closed: a malformed decision is treated as a deny and
		// flagged loudly, never acted on.
		gw.logger.ErrorContext(ctx, "policy decision failed validation", "error", err)
		return zero, oops.Code("DECISION_INVALID").Wrap(err)
	}

	gw.record(ctx, actor, op, target, decision)

	if !decision.IsAllowed() {
		return zero, newAuthzError(actor, decision)
	}
	return action(ctx, gw.db)
}

// ExecuteCreate is the creation path for records not yet assigned to a
// tenant. The caller names the organization the record will belong to;
// it is stamped onto the target before the decision so the engine sees
// the eventual owner, and the action must persist that assignment
// before its transaction commits. Anonymous application inserts pass
// the empty org and are handled by the public-job rule.
func ExecuteCreate[T any](ctx context.Context, gw *Gateway, actor tenancy.ActorContext, target access.Target, orgID string, action func(ctx context.Context, db store.DB) (T, error)) (T, error) {
	if target.OrgID == "" {
		target.OrgID = orgID
	}
	return Execute(ctx, gw, actor, access.OpInsert, target, action)
}

// record writes the decision to the audit sink.
func (gw *Gateway) record(ctx context.Context, actor tenancy.ActorContext, op access.Operation, target access.Target, decision access.Decision) {
	if gw.sink == nil {
		return
	}
	entry := audit.Entry{
		ActorID:    actor.ActorID,
		ActorKind:  actorKind(actor),
		Operation:  op,
		EntityType: target.Type,
		EntityID:   target.ID,
		OrgID:      target.OrgID,
		Allowed:    decision.IsAllowed(),
		Timestamp:  time.Now().UTC(),
	}
	if !decision.IsAllowed() {
		entry.Reason = decision.Reason.String()
	}
	gw.sink.Record(ctx, entry)
}

func actorKind(actor tenancy.ActorContext) audit.ActorKind {
	switch {
	case actor.IsDemo:
		return audit.ActorDemo
	case actor.IsAnonymous():
		return audit.ActorAnonymous
	default:
		return audit.ActorMember
	}
}
