package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderAccountSetup(t *testing.T) {
	html, text, err := RenderAccountSetup(AccountSetup{
		Email:     "inspector@example.com",
		SetupLink: "https://auth.example.com/verify?token=abc&type=recovery",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Welcome, inspector!")
	assert.Contains(t, html, "QC Report System")
	assert.Contains(t, html, "SUSU Warehouse")
	assert.Contains(t, html, `href="https://auth.example.com/verify?token=abc&amp;type=recovery"`)
	assert.Contains(t, text, "Set up your account: https://auth.example.com/verify?token=abc&type=recovery")
	assert.Contains(t, text, "expire in 24 hours")
}

func TestRenderAccountSetupEscapesName(t *testing.T) {
	html, _, err := RenderAccountSetup(AccountSetup{Email: "a@b.co", Name: "<b>Li</b>", SetupLink: "https://x"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>Li</b>")
	assert.Contains(t, html, "&lt;b&gt;Li&lt;/b&gt;")
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	m := New("", "QC System <noreply@example.com>")
	err := m.SendAccountSetup(context.Background(), AccountSetup{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
