// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package tenancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Ordering(t *testing.T) {
	assert.True(t, RoleOwner > RoleAdmin)
	assert.True(t, RoleAdmin > RoleHiringManager)
	assert.True(t, RoleHiringManager > RoleRecruiter)
	assert.True(t, RoleRecruiter > RoleInterviewer)
	assert.True(t, RoleInterviewer > RoleNone)
}

func TestRole_AtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleRecruiter))
	assert.True(t, RoleRecruiter.AtLeast(RoleRecruiter))
	assert.False(t, RoleInterviewer.AtLeast(RoleRecruiter))
	assert.False(t, RoleNone.AtLeast(RoleInterviewer))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"owner", RoleOwner},
		{"admin", RoleAdmin},
		{"hiring_manager", RoleHiringManager},
		{"recruiter", RoleRecruiter},
		{"interviewer", RoleInterviewer},
		{"", RoleNone},
		{"superuser", RoleNone},
		{"OWNER", RoleNone}, // stored roles are lowercase, no fuzzy matching
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRole(tt.in), "%q", tt.in)
	}
}

func TestRole_StringRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleInterviewer, RoleRecruiter, RoleHiringManager, RoleAdmin, RoleOwner} {
		assert.Equal(t, r, ParseRole(r.String()))
	}
}

func TestActorContext_Invariant(t *testing.T) {
	anon := Anonymous()
	assert.True(t, anon.IsAnonymous())
	assert.False(t, anon.IsDemo)
	assert.Empty(t, anon.Memberships)

	demo := NewDemoActor("demo-1")
	assert.False(t, demo.IsAnonymous())
	assert.True(t, demo.IsDemo)
	assert.Empty(t, demo.Memberships)

	member := NewMemberActor("a-1", []Membership{{OrgID: "org-1", Role: RoleRecruiter}})
	assert.False(t, member.IsAnonymous())
	assert.False(t, member.IsDemo)
	assert.Len(t, member.Memberships, 1)
}

func TestActorContext_RoleIn(t *testing.T) {
	actor := NewMemberActor("a-1", []Membership{
		{OrgID: "orgA", Role: RoleOwner},
		{OrgID: "orgB", Role: RoleInterviewer},
	})

	assert.Equal(t, RoleOwner, actor.RoleIn("orgA"))
	assert.Equal(t, RoleInterviewer, actor.RoleIn("orgB"))
	assert.Equal(t, RoleNone, actor.RoleIn("orgC"))
	assert.Equal(t, RoleNone, actor.RoleIn(""))

	assert.True(t, actor.MemberOf("orgA"))
	assert.False(t, actor.MemberOf("orgC"))
}
