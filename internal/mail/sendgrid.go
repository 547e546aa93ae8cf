package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendgridMailer sends invitation email through the SendGrid API.
type SendgridMailer struct {
	apiKey   string
	from     string
	fromName string
}

// NewSendgridMailer creates a mailer using the given API key and sender.
func NewSendgridMailer(apiKey, from, fromName string) *SendgridMailer {
	return &SendgridMailer{
		apiKey:   apiKey,
		from:     from,
		fromName: fromName,
	}
}

func (m *SendgridMailer) Enabled() bool { return true }

// SendAdminInvite sends the administrative invitation email.
func (m *SendgridMailer) SendAdminInvite(ctx context.Context, inv AdminInvite) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key is empty")
	}
	if inv.Email == "" {
		return fmt.Errorf("recipient address is empty")
	}

	subject := fmt.Sprintf("Join %s", inv.OrgName)
	body := fmt.Sprintf(
		"You have been invited to join %s.\n\n"+
			"Log in to your vault to accept the invitation. If you do not have an "+
			"account yet, one has been prepared for this address.\n",
		inv.OrgName,
	)

	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(m.fromName, m.from),
		subject,
		sgmail.NewEmail("", inv.Email),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}

	slog.Info("admin invite mail sent", "to", inv.Email, "org", inv.OrgID, "status", resp.StatusCode)
	return nil
}
