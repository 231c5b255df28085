// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package access

import (
	"fmt"

	"github.com/talentmesh/talentmesh/internal/tenancy"
)

// Decide evaluates one operation against one target for one actor.
// Pure function: no I/O, no shared state. Rules apply in order and the
// first match wins.
func Decide(actor tenancy.ActorContext, op Operation, target Target) Decision {
	// Rule 1: demo records. Visible read-only to demo actors and to
	// members of the owning demo organization; immutable to everyone.
	if target.Status == StatusDemo {
		return decideDemoTarget(actor, op, target)
	}

	// Rule 2: demo actors never reach non-demo data. Evaluated before
	// any organization check so a forged real org id cannot escalate a
	// sandboxed session.
	if actor.IsDemo {
		return Deny(ReasonVisibilityMismatch, "demo sessions can only access demo data")
	}

	// Rule 3: the permeable public boundary. Anonymous read of a
	// published job, and anonymous insert of an application scoped to a
	// published job, the single write anonymous actors may perform.
	if actor.IsAnonymous() {
		if op == OpRead && target.IsPublicJob() {
			return Permit()
		}
		if op == OpInsert && target.Type == EntityApplication && target.Job != nil && target.Job.IsPublicJob() {
			return Permit()
		}
		// Rule 4: everything else anonymous is denied.
		return Deny(ReasonUnauthenticated, "authentication required")
	}

	// Unassigned records are never reachable through the normal path;
	// the gateway's creation flow stamps a transient self org instead.
	if target.OrgID == "" {
		return Deny(ReasonOrgMismatch, "record is not assigned to an organization")
	}

	// Rule 5: strict tenant isolation. Only the role held in the
	// target's own organization counts.
	role := actor.RoleIn(target.OrgID)
	if role == tenancy.RoleNone {
		return Deny(ReasonOrgMismatch, "no membership in the record's organization")
	}

	// Rule 6: role threshold from the permission matrix.
	if required := MinimumRole(op, target.Type); !role.AtLeast(required) {
		return Deny(ReasonRoleInsufficient,
			fmt.Sprintf("%s on %s requires %s role or higher", op, target.Type, required))
	}

	// Rule 7: permit.
	return Permit()
}

// decideDemoTarget handles the demo visibility tier. Demo data is
// created only by seed processes and is read-only to all actors,
// including demo actors themselves.
func decideDemoTarget(actor tenancy.ActorContext, op Operation, target Target) Decision {
	qualified := actor.IsDemo || actor.MemberOf(target.OrgID)
	if !qualified {
		if actor.IsAnonymous() {
			return Deny(ReasonUnauthenticated, "authentication required")
		}
		return Deny(ReasonOrgMismatch, "no membership in the record's organization")
	}
	if op.IsWrite() {
		return Deny(ReasonRoleInsufficient, "demo data is read-only")
	}
	return Permit()
}
