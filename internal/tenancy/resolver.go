// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package tenancy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// DemoAudience marks a token as a sandboxed demo session. Demo tokens are
// minted by fixture tooling only; any organization claims they carry are
// discarded during resolution.
const DemoAudience = "talentmesh:demo"

// Claims are the JWT claims TalentMesh issues and accepts.
type Claims struct {
	// Orgs is advisory only. Resolution always re-reads the durable
	// membership set; a forged or stale claim can never widen access.
	Orgs []string `json:"orgs,omitempty"`
	jwt.RegisteredClaims
}

// MembershipRepository loads the durable membership set for an identity.
type MembershipRepository interface {
	// MembershipsFor returns every (organization, role) pair the identity
	// holds. An identity with zero memberships returns an empty slice,
	// not an error.
	MembershipsFor(ctx context.Context, actorID string) ([]Membership, error)
}

// Resolver turns raw bearer credentials into an ActorContext.
type Resolver struct {
	secret      []byte
	issuer      string
	memberships MembershipRepository
	logger      *slog.Logger
}

// NewResolver creates a Resolver. The secret signs and verifies HS256
// tokens; issuer must match the iss claim of accepted tokens.
func NewResolver(secret []byte, issuer string, memberships MembershipRepository, logger *slog.Logger) (*Resolver, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_SECRET_MISSING").Errorf("resolver requires a non-empty signing secret")
	}
	if issuer == "" {
		return nil, oops.Code("AUTH_ISSUER_MISSING").Errorf("resolver requires an issuer")
	}
	if memberships == nil {
		return nil, oops.Code("AUTH_REPO_MISSING").Errorf("resolver requires a membership repository")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{secret: secret, issuer: issuer, memberships: memberships, logger: logger}, nil
}

// Resolve derives the ActorContext for the given raw credential string.
//
// Absent, malformed, or expired credentials resolve to the anonymous
// context rather than an error so public-read paths keep working when
// auth state is stale. Callers that require authentication check
// ActorID explicitly at a higher layer.
//
// A storage failure during membership lookup is the one case that does
// surface as an error: silently downgrading a real member to anonymous
// on an infrastructure blip would mask outages as permission churn.
func (r *Resolver) Resolve(ctx context.Context, rawCredentials string) (ActorContext, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rawCredentials), "Bearer "))
	if raw == "" {
		return Anonymous(), nil
	}

	claims, err := r.parse(raw)
	if err != nil {
		// Deliberate downgrade, not a bug: invalid tokens behave as
		// anonymous traffic. Logged so revoked-token storms stay visible.
		r.logger.DebugContext(ctx, "credential rejected, resolving as anonymous", "error", err)
		return Anonymous(), nil
	}

	if isDemo(claims) {
		return NewDemoActor(claims.Subject), nil
	}

	memberships, err := r.memberships.MembershipsFor(ctx, claims.Subject)
	if err != nil {
		return ActorContext{}, oops.Code("MEMBERSHIP_LOOKUP_FAILED").
			With("actor_id", claims.Subject).
			Wrap(err)
	}
	return NewMemberActor(claims.Subject, memberships), nil
}

// parse verifies signature, algorithm, issuer, subject, and expiry.
func (r *Resolver) parse(raw string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, oops.Code("TOKEN_ALG_REJECTED").Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	}, jwt.WithIssuer(r.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, oops.Code("TOKEN_INVALID").Wrap(err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, oops.Code("TOKEN_INVALID").Errorf("claims missing or token invalid")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, oops.Code("TOKEN_INVALID").Errorf("subject claim missing")
	}
	return claims, nil
}

// isDemo reports whether the token's audience marks a demo session.
func isDemo(claims *Claims) bool {
	for _, aud := range claims.Audience {
		if aud == DemoAudience {
			return true
		}
	}
	return false
}

// SignToken mints an HS256 token for the given identity. Used by operator
// tooling and fixture seeding; request paths never mint tokens.
func (r *Resolver) SignToken(actorID string, demo bool, ttl time.Duration) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", oops.Code("TOKEN_SUBJECT_MISSING").Errorf("actorID is required")
	}
	if ttl <= 0 {
		return "", oops.Code("TOKEN_TTL_INVALID").Errorf("ttl must be positive, got %s", ttl)
	}

	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    r.issuer,
			Subject:   actorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if demo {
		claims.Audience = jwt.ClaimStrings{DemoAudience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}
