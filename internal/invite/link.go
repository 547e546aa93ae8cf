package invite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/breachwatch/breachwatch/internal/user"
)

// TokenSigner produces signed invitation tokens.
type TokenSigner interface {
	SignInvite(userID, email, orgID, memberID string) (string, error)
}

// LinkBuilder derives onboarding URLs for uninitialized users.
type LinkBuilder struct {
	signer  TokenSigner
	domain  string
	orgName string
	ssoOnly bool
}

// NewLinkBuilder creates a link builder. domain is the base URL of the vault
// frontend; ssoOnly reflects whether SSO is configured as the sole login
// method.
func NewLinkBuilder(signer TokenSigner, domain, orgName string, ssoOnly bool) *LinkBuilder {
	return &LinkBuilder{
		signer:  signer,
		domain:  strings.TrimRight(domain, "/"),
		orgName: orgName,
		ssoOnly: ssoOnly,
	}
}

// BuildLink returns the user's email and, for a user who has not completed
// onboarding, an absolute accept-organization URL carrying a signed invite
// token. An already-onboarded user (non-empty account key) yields a nil URL.
//
// The orgUserHasExistingUser query flag is "false" when login is SSO-only,
// "true" when the user already holds vault key material, and absent
// otherwise; the two cases are mutually exclusive.
func (b *LinkBuilder) BuildLink(u *user.User) (string, *string, error) {
	if u.Initialized() {
		return u.Email, nil, nil
	}

	inviteToken, err := b.signer.SignInvite(u.ID, u.Email, SentinelID, SentinelID)
	if err != nil {
		return "", nil, fmt.Errorf("signing invite token: %w", err)
	}

	params := url.Values{}
	params.Set("email", u.Email)
	params.Set("organizationName", b.orgName)
	params.Set("organizationId", SentinelID)
	params.Set("organizationUserId", SentinelID)
	params.Set("token", inviteToken)
	if b.ssoOnly {
		params.Set("orgUserHasExistingUser", "false")
	} else if u.PrivateKey != nil {
		params.Set("orgUserHasExistingUser", "true")
	}

	query := params.Encode()
	if query == "" {
		// Unreachable given the parameters above; kept as an invariant
		// check because a bare accept URL is worse than an error.
		return "", nil, errors.New("failed to build invite URL query parameters")
	}

	link := fmt.Sprintf("%s/#/accept-organization/?%s", b.domain, query)
	return u.Email, &link, nil
}
