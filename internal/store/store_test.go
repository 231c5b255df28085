// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateObject(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate table", &pgconn.PgError{Code: "42P07"}, true},
		{"duplicate object", &pgconn.PgError{Code: "42710"}, true},
		{"duplicate column", &pgconn.PgError{Code: "42701"}, true},
		{"duplicate schema", &pgconn.PgError{Code: "42P06"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"syntax error", &pgconn.PgError{Code: "42601"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicateObject(tt.err))
		})
	}
}
