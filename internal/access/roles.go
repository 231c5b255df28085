// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package access

import "github.com/talentmesh/talentmesh/internal/tenancy"

// The permission matrix lives in one table so the whole grant surface is
// reviewable at a glance. Rows not listed fall back to the defaults
// below; owner and admin always satisfy any threshold by role ordering.

// Default thresholds: any read needs interviewer, any write recruiter.
const (
	defaultReadRole  = tenancy.RoleInterviewer
	defaultWriteRole = tenancy.RoleRecruiter
)

type matrixKey struct {
	op     Operation
	entity EntityType
}

// minRoleOverrides lists the (operation, entity) pairs whose threshold
// differs from the defaults. Client and job deletion and anything on
// org-level settings are admin operations.
var minRoleOverrides = map[matrixKey]tenancy.Role{
	{OpDelete, EntityClient}: tenancy.RoleAdmin,
	{OpDelete, EntityJob}:    tenancy.RoleAdmin,

	{OpInsert, EntityOrgSettings}: tenancy.RoleAdmin,
	{OpUpdate, EntityOrgSettings}: tenancy.RoleAdmin,
	{OpDelete, EntityOrgSettings}: tenancy.RoleAdmin,
}

// MinimumRole returns the role threshold for an operation on an entity
// type. This is the single source of truth for role-graded permissions.
func MinimumRole(op Operation, entity EntityType) tenancy.Role {
	if role, ok := minRoleOverrides[matrixKey{op, entity}]; ok {
		return role
	}
	if op.IsWrite() {
		return defaultWriteRole
	}
	return defaultReadRole
}
