// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatement_Executes(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`CREATE TABLE clients`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	action := Statement(`CREATE TABLE clients (id TEXT)`)
	require.NoError(t, action(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatement_DuplicateObjectConverges(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`CREATE INDEX`).
		WillReturnError(&pgconn.PgError{Code: "42P07"})

	action := Statement(`CREATE INDEX clients_org_idx ON clients (org_id)`)
	assert.NoError(t, action(context.Background(), mock), "already-applied work is convergence")
}

func TestStatement_RealFailurePropagates(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`ALTER TABLE`).
		WillReturnError(errors.New("column does not exist"))

	action := Statement(`ALTER TABLE clients DROP COLUMN missing`)
	assert.Error(t, action(context.Background(), mock))
}

func TestStatements_RunInOrder(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`CREATE TABLE a`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE b`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	action := Statements(`CREATE TABLE a (id TEXT)`, `CREATE TABLE b (id TEXT)`)
	require.NoError(t, action(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatements_DuplicateSkippedRestContinue(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec(`CREATE TABLE a`).WillReturnError(&pgconn.PgError{Code: "42P07"})
	mock.ExpectExec(`CREATE TABLE b`).WillReturnResult(pgxmock.NewResult("CREATE", 0))

	action := Statements(`CREATE TABLE a (id TEXT)`, `CREATE TABLE b (id TEXT)`)
	require.NoError(t, action(context.Background(), mock))
	assert.NoError(t, mock.ExpectationsWereMet())
}
