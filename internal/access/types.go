// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package access is the tenant-isolation policy core for TalentMesh.
//
// Decide is a pure function over (actor, operation, target): no I/O, no
// shared mutable state, safe under arbitrary concurrency. Every storage
// access in the application routes through the enforcement gateway,
// which consults Decide before touching the pool.
package access

import (
	"fmt"
	"time"
)

// Operation is the kind of storage access being decided.
type Operation string

// Operation constants cover every storage access kind.
const (
	OpRead   Operation = "read"
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// IsWrite reports whether the operation mutates state.
func (op Operation) IsWrite() bool {
	return op != OpRead
}

// EntityType identifies the kind of domain record a decision is about.
type EntityType string

// EntityType constants define the record kinds subject to policy.
const (
	EntityClient      EntityType = "client"
	EntityJob         EntityType = "job"
	EntityCandidate   EntityType = "candidate"
	EntityPipeline    EntityType = "pipeline"
	EntityNote        EntityType = "note"
	EntityInsight     EntityType = "insight"
	EntityApplication EntityType = "application"
	EntityOrgSettings EntityType = "org_settings"
)

// RecordStatus is the visibility tier attached to every domain record.
type RecordStatus string

// RecordStatus constants.
const (
	StatusActive   RecordStatus = "active"
	StatusDemo     RecordStatus = "demo"
	StatusArchived RecordStatus = "archived"
)

// Target describes the record an operation is aimed at. It carries only
// the visibility metadata the engine needs; business fields stay with
// the storage layer.
type Target struct {
	Type EntityType
	ID   string

	// OrgID is the owning tenant, empty only for records not yet
	// assigned during creation. Unassigned records are never readable.
	OrgID string

	Status RecordStatus

	// Publication fields, meaningful only for jobs.
	PublicSlug  string
	PublishedAt *time.Time

	// Job is the parent job a child record is explicitly scoped to,
	// set when evaluating e.g. an application insert against a job.
	Job *Target
}

// IsPublicJob reports whether the target is a job published for
// anonymous consumption: slug and publish timestamp set, status active.
func (t Target) IsPublicJob() bool {
	return t.Type == EntityJob &&
		t.PublicSlug != "" &&
		t.PublishedAt != nil &&
		t.Status == StatusActive
}

// DenyReason classifies why a decision denied access. Reasons feed the
// audit log and authenticated-actor diagnostics; they are never echoed
// verbatim to anonymous or demo callers.
type DenyReason int

// DenyReason constants.
const (
	ReasonNone DenyReason = iota // permit carries no reason
	ReasonUnauthenticated
	ReasonOrgMismatch
	ReasonRoleInsufficient
	ReasonVisibilityMismatch
	ReasonRecordNotPublic
)

var denyReasonStrings = [...]string{
	"none",
	"unauthenticated",
	"org_mismatch",
	"role_insufficient",
	"visibility_mismatch",
	"record_not_public",
}

func (r DenyReason) String() string {
	if r >= 0 && int(r) < len(denyReasonStrings) {
		return denyReasonStrings[r]
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// Decision is the verdict for one (actor, operation, target) triple.
// The allowed field is unexported to prevent invariant bypass: a permit
// never carries a reason, a deny always does.
type Decision struct {
	allowed bool
	Reason  DenyReason

	// Detail is the human-readable explanation surfaced to authenticated
	// organization actors only.
	Detail string
}

// Permit returns an allowing decision.
func Permit() Decision {
	return Decision{allowed: true}
}

// Deny returns a denying decision with its reason and detail.
func Deny(reason DenyReason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}

// IsAllowed reports whether the decision grants access.
func (d Decision) IsAllowed() bool {
	return d.allowed
}

// Validate checks the Decision invariant: permits carry no reason,
// denies carry one. Called at engine return boundaries.
func (d Decision) Validate() error {
	if d.allowed && d.Reason != ReasonNone {
		return fmt.Errorf("decision invariant violated: permit with reason %s", d.Reason)
	}
	if !d.allowed && d.Reason == ReasonNone {
		return fmt.Errorf("decision invariant violated: deny without reason")
	}
	return nil
}
