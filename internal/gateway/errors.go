// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package gateway

import (
	"errors"

	"github.com/talentmesh/talentmesh/internal/access"
	"github.com/talentmesh/talentmesh/internal/tenancy"
)

// genericDenial is the undifferentiated response untrusted callers see.
// It deliberately does not distinguish "exists but forbidden" from
// "does not exist" so denials leak no existence information.
const genericDenial = "not found or not permitted"

// AuthzError is the terminal, non-retryable error a denied operation
// returns. Retrying with the same actor and target never succeeds.
type AuthzError struct {
	// Reason is retained for in-process handling and audit; it is not
	// part of the message shown to anonymous or demo callers.
	Reason access.DenyReason

	message string
}

// newAuthzError translates a deny decision into the bounded error for
// the actor class: organization members get the specific reason so they
// can self-correct, anonymous and demo actors get the generic denial.
func newAuthzError(actor tenancy.ActorContext, decision access.Decision) *AuthzError {
	msg := genericDenial
	if !actor.IsAnonymous() && !actor.IsDemo && decision.Detail != "" {
		msg = decision.Detail
	}
	return &AuthzError{Reason: decision.Reason, message: msg}
}

func (e *AuthzError) Error() string {
	return e.message
}

// IsDenied reports whether err is a gateway denial.
func IsDenied(err error) bool {
	var authzErr *AuthzError
	return errors.As(err, &authzErr)
}
