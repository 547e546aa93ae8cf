// Package mail sends invitation email. The rest of the service talks to the
// Mailer interface so the invitation path can run with outbound mail turned
// off entirely.
package mail

import "context"

// AdminInvite is the content of an administrative invitation email.
type AdminInvite struct {
	Email    string // recipient
	UserID   string
	OrgID    string
	MemberID string
	OrgName  string // display name of the inviting organization
}

// Mailer dispatches invitation email.
type Mailer interface {
	SendAdminInvite(ctx context.Context, inv AdminInvite) error
	Enabled() bool
}

// Disabled is a Mailer with outbound mail turned off. Callers that see
// Enabled() == false record a local pending invitation instead of sending.
type Disabled struct{}

func (Disabled) SendAdminInvite(context.Context, AdminInvite) error { return nil }

func (Disabled) Enabled() bool { return false }
