// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package tenancy

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// querier is the subset of pgxpool.Pool the repository needs. Satisfied
// by pgxmock.PgxPoolIface in tests.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresMembershipRepository implements MembershipRepository using PostgreSQL.
type PostgresMembershipRepository struct {
	pool querier
}

// NewPostgresMembershipRepository creates a new PostgreSQL membership repository.
func NewPostgresMembershipRepository(pool querier) *PostgresMembershipRepository {
	return &PostgresMembershipRepository{pool: pool}
}

// MembershipsFor returns the durable membership set for an identity.
// Rows with unknown role strings are dropped: a corrupt row must never
// grant access.
func (r *PostgresMembershipRepository) MembershipsFor(ctx context.Context, actorID string) ([]Membership, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT org_id, role FROM org_memberships WHERE actor_id = $1 ORDER BY org_id`,
		actorID)
	if err != nil {
		return nil, oops.With("operation", "query memberships").With("actor_id", actorID).Wrap(err)
	}
	defer rows.Close()

	memberships := []Membership{}
	for rows.Next() {
		var orgID, roleStr string
		if err := rows.Scan(&orgID, &roleStr); err != nil {
			return nil, oops.With("operation", "scan membership row").Wrap(err)
		}
		role := ParseRole(roleStr)
		if role == RoleNone {
			continue
		}
		memberships = append(memberships, Membership{OrgID: orgID, Role: role})
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate memberships").Wrap(err)
	}
	return memberships, nil
}

// Grant upserts a membership. Used by account-setup flows and seed tooling.
func (r *PostgresMembershipRepository) Grant(ctx context.Context, actorID, orgID string, role Role) error {
	if role == RoleNone {
		return oops.Code("MEMBERSHIP_ROLE_INVALID").Errorf("cannot grant role %q", role)
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO org_memberships (actor_id, org_id, role)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (actor_id, org_id) DO UPDATE SET role = EXCLUDED.role`,
		actorID, orgID, role.String())
	if err != nil {
		return oops.With("operation", "grant membership").
			With("actor_id", actorID).
			With("org_id", orgID).
			Wrap(err)
	}
	return nil
}

// Revoke removes a membership. Revoking a non-member is a no-op.
func (r *PostgresMembershipRepository) Revoke(ctx context.Context, actorID, orgID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM org_memberships WHERE actor_id = $1 AND org_id = $2`,
		actorID, orgID)
	if err != nil {
		return oops.With("operation", "revoke membership").
			With("actor_id", actorID).
			With("org_id", orgID).
			Wrap(err)
	}
	return nil
}
