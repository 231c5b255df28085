// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package errutil

import (
	"testing"

	"github.com/samber/oops"
)

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("CONFIG_INVALID").Errorf("bad config")
	AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("step", "create-access-rules").Errorf("step failed")
	AssertErrorContext(t, err, "step", "create-access-rules")
}
