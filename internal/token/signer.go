package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InviteClaims is the transient claim set carried by an invitation token. It
// is produced when a link is built and consumed when the client accepts the
// invite; it is never persisted.
type InviteClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	OrgID    string `json:"org_id"`
	MemberID string `json:"user_org_id"`
}

// Signer issues and verifies invitation tokens. Tokens are HMAC-signed with a
// single service-wide secret; only this service issues or accepts them.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time // injectable clock for testing
}

// NewSigner creates a signer. issuer is recorded in the iss claim and
// verified on parse; ttl is the default validity window applied to every
// token.
func NewSigner(secret, issuer string, ttl time.Duration) *Signer {
	return &Signer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SignInvite produces a signed invitation token for the given user, bound to
// the organization and membership ids that the accept endpoint will consume.
func (s *Signer) SignInvite(userID, email, orgID, memberID string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("invite token secret is not configured")
	}

	now := s.now().UTC()
	claims := InviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:    email,
		OrgID:    orgID,
		MemberID: memberID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing invite token: %w", err)
	}
	return signed, nil
}

// ParseInvite validates a token produced by SignInvite and returns its
// claims. Expired tokens, tokens from a different issuer, and tokens signed
// with any other method or key are rejected.
func (s *Signer) ParseInvite(tokenStr string) (*InviteClaims, error) {
	claims := &InviteClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing invite token: %w", err)
	}
	return claims, nil
}
