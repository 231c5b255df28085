// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmesh/talentmesh/internal/access"
)

func TestPostgresWriter_WriteSync(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entryID := ulid.Make().String()
	mock.ExpectExec(`INSERT INTO access_audit_log`).
		WithArgs(entryID, "actor-1", "member", "read", "candidate", "c-1", "orgB", false, "org_mismatch", ts).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	writer := NewPostgresWriter(mock)
	err = writer.WriteSync(context.Background(), Entry{
		ID:         entryID,
		ActorID:    "actor-1",
		ActorKind:  ActorMember,
		Operation:  access.OpRead,
		EntityType: access.EntityCandidate,
		EntityID:   "c-1",
		OrgID:      "orgB",
		Allowed:    false,
		Reason:     "org_mismatch",
		Timestamp:  ts,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_WriteSyncError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO access_audit_log`).
		WillReturnError(errors.New("relation does not exist"))

	writer := NewPostgresWriter(mock)
	err = writer.WriteSync(context.Background(), Entry{Timestamp: time.Now()})
	assert.Error(t, err)
}
