// Package invite provisions placeholder users and builds the signed
// onboarding links that let them join an organization.
package invite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/breachwatch/breachwatch/internal/mail"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SentinelID is the reserved all-zero identifier used for the organization
// and membership slots of an invite that is not yet bound to a real
// organization.
const SentinelID = "00000000-0000-0000-0000-000000000000"

// UserStore is the persistence surface the issuer needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	CreateInvited(ctx context.Context, u *user.User, notify func(context.Context) error) error
}

// Issuer creates placeholder users and dispatches their invitations.
type Issuer struct {
	users   UserStore
	mailer  mail.Mailer
	orgName string
}

// NewIssuer creates an issuer. orgName is the display name carried in the
// invitation mail.
func NewIssuer(users UserStore, mailer mail.Mailer, orgName string) *Issuer {
	return &Issuer{
		users:   users,
		mailer:  mailer,
		orgName: orgName,
	}
}

// Invite finds or creates the user for email. An existing user is returned
// unchanged: no duplicate account is created and no new invitation goes out.
// For a new address a placeholder user is created (empty account key, no
// private key) and exactly one notification is dispatched: an invitation
// email when outbound mail is enabled, otherwise a local pending-invitation
// record. Notification and user row are committed as one unit; if either
// step fails the user is not considered invited.
func (i *Issuer) Invite(ctx context.Context, email string) (*user.User, error) {
	existing, err := i.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:        uuid.NewString(),
		Email:     email,
		AKey:      "",
		CreatedAt: now,
		UpdatedAt: now,
	}

	var notify func(context.Context) error
	if i.mailer.Enabled() {
		notify = func(ctx context.Context) error {
			return i.mailer.SendAdminInvite(ctx, mail.AdminInvite{
				Email:    u.Email,
				UserID:   u.ID,
				OrgID:    SentinelID,
				MemberID: SentinelID,
				OrgName:  i.orgName,
			})
		}
	}

	if err := i.users.CreateInvited(ctx, u, notify); err != nil {
		return nil, fmt.Errorf("inviting %s: %w", email, err)
	}

	slog.Info("user invited", "user_id", u.ID, "mail", i.mailer.Enabled())
	return u, nil
}
