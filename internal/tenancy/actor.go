// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package tenancy resolves request credentials into actor contexts.
//
// An actor is exactly one of three things: an anonymous visitor, a demo
// viewer, or an authenticated member of one or more organizations. The
// ActorContext produced here is the only identity input the policy
// engine accepts; nothing downstream re-reads session or ambient state.
package tenancy

import "fmt"

// Role is the ordered permission grade a member holds in one organization.
// Higher values grant strictly more mutation rights.
type Role int

// Role constants in ascending order of authority.
const (
	RoleNone Role = iota // no role (not a member)
	RoleInterviewer
	RoleRecruiter
	RoleHiringManager
	RoleAdmin
	RoleOwner
)

var roleStrings = [...]string{
	"none",
	"interviewer",
	"recruiter",
	"hiring_manager",
	"admin",
	"owner",
}

func (r Role) String() string {
	if r >= 0 && int(r) < len(roleStrings) {
		return roleStrings[r]
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// ParseRole converts a stored role string to a Role.
// Unknown strings map to RoleNone so a corrupt membership row can never
// grant access.
func ParseRole(s string) Role {
	for i, name := range roleStrings {
		if name == s {
			return Role(i)
		}
	}
	return RoleNone
}

// AtLeast reports whether r satisfies the given minimum role.
func (r Role) AtLeast(minimum Role) bool {
	return r >= minimum
}

// Membership binds an actor to one organization with one role.
type Membership struct {
	OrgID string
	Role  Role
}

// ActorContext is the normalized identity attached to every request.
//
// Invariant: an actor is exactly one of anonymous (empty ActorID), demo
// (IsDemo true, no memberships), or an organization member (ActorID set,
// one or more memberships). NewDemoActor and NewMemberActor uphold this
// by construction.
type ActorContext struct {
	ActorID     string
	Memberships []Membership
	IsDemo      bool
}

// Anonymous returns the context for an unauthenticated visitor.
func Anonymous() ActorContext {
	return ActorContext{}
}

// NewDemoActor returns a sandboxed demo viewer context. Demo actors never
// carry memberships regardless of what the credentials claimed.
func NewDemoActor(actorID string) ActorContext {
	return ActorContext{ActorID: actorID, IsDemo: true}
}

// NewMemberActor returns an authenticated context with the given durable
// membership set. An empty set is valid: authenticated-but-orgless actors
// may perform account setup but never record access.
func NewMemberActor(actorID string, memberships []Membership) ActorContext {
	return ActorContext{ActorID: actorID, Memberships: memberships}
}

// IsAnonymous reports whether the actor carries no identity at all.
func (a ActorContext) IsAnonymous() bool {
	return a.ActorID == ""
}

// RoleIn returns the actor's role in the given organization, or RoleNone
// when the actor is not a member. Roles never leak across organizations:
// only the membership whose OrgID matches is consulted.
func (a ActorContext) RoleIn(orgID string) Role {
	if orgID == "" {
		return RoleNone
	}
	for _, m := range a.Memberships {
		if m.OrgID == orgID {
			return m.Role
		}
	}
	return RoleNone
}

// MemberOf reports whether the actor holds any role in the organization.
func (a ActorContext) MemberOf(orgID string) bool {
	return a.RoleIn(orgID) != RoleNone
}
