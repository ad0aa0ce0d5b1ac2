package models

import (
	"strings"
	"time"
)

// Identity is an account held by the managed identity provider.
type Identity struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	CreatedAt        *time.Time             `json:"created_at,omitempty"`
	LastSignInAt     *time.Time             `json:"last_sign_in_at"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at"`
	UserMetadata     map[string]interface{} `json:"user_metadata"`
}

// DisplayName returns the metadata name, falling back to the email local part.
func (i Identity) DisplayName() string {
	if name, ok := i.UserMetadata["name"].(string); ok && name != "" {
		return name
	}
	return EmailLocalPart(i.Email)
}

// Caller is the resolved identity of an inbound request. A zero Caller is anonymous.
type Caller struct {
	Identity *Identity
	IsAdmin  bool
}

// Authenticated reports whether the request carried a valid session.
func (c Caller) Authenticated() bool {
	return c.Identity != nil
}

// ID returns the caller's identity id, or empty when anonymous.
func (c Caller) ID() string {
	if c.Identity == nil {
		return ""
	}
	return c.Identity.ID
}

// Email returns the caller's email, or empty when anonymous.
func (c Caller) Email() string {
	if c.Identity == nil {
		return ""
	}
	return c.Identity.Email
}

// EmailLocalPart returns the part of an address before the first '@'.
func EmailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx >= 0 {
		return email[:idx]
	}
	return email
}
