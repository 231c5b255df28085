// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package main

import (
	"errors"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("plain failure")))
	assert.Equal(t, 1, exitCode(oops.Code("MIGRATION_STEP_FAILED").Errorf("step failed")))
	assert.Equal(t, 2, exitCode(oops.Code("LOCKDOWN_UNSAFE").Errorf("invariant not established")))
	// A failed verification leaves the invariant unconfirmed, which is
	// the same operator situation as an unsafe result.
	assert.Equal(t, 2, exitCode(oops.Code("LOCKDOWN_VERIFY_FAILED").Wrap(errors.New("connection lost"))))
}
