package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
)

// AccountSetupSubject is the subject line of account setup emails.
const AccountSetupSubject = "Set Up Your QC System Account"

// ErrNotConfigured is returned when no delivery credentials are configured.
var ErrNotConfigured = errors.New("mailer: no API key configured")

// AccountSetup is the data rendered into an account setup email.
type AccountSetup struct {
	Email     string
	Name      string
	SetupLink string
}

// Greeting returns the name to address the recipient by.
func (a AccountSetup) Greeting() string {
	if a.Name != "" {
		return a.Name
	}
	return strings.SplitN(a.Email, "@", 2)[0]
}

// Mailer delivers transactional email.
type Mailer interface {
	SendAccountSetup(ctx context.Context, msg AccountSetup) error
}

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// New returns a Resend-backed mailer, or a disabled mailer when apiKey is empty.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return disabled{}
	}
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

// SendAccountSetup renders and sends the account setup email.
func (m *ResendMailer) SendAccountSetup(ctx context.Context, msg AccountSetup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	html, text, err := RenderAccountSetup(msg)
	if err != nil {
		return err
	}

	_, err = m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.Email},
		Subject: AccountSetupSubject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("send account setup email: %w", err)
	}
	return nil
}

type disabled struct{}

func (disabled) SendAccountSetup(context.Context, AccountSetup) error {
	return ErrNotConfigured
}
