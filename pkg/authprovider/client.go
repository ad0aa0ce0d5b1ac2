package authprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	auth "github.com/supabase-community/auth-go"
)

// User is an account as returned by the identity provider.
type User struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	CreatedAt        *time.Time             `json:"created_at,omitempty"`
	LastSignInAt     *time.Time             `json:"last_sign_in_at,omitempty"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUserParams is the admin create payload.
type CreateUserParams struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// UpdateUserParams is the admin update payload. Empty fields are left untouched.
type UpdateUserParams struct {
	Email        string                 `json:"email,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// Link types accepted by GenerateLink.
const (
	LinkRecovery = "recovery"
	LinkInvite   = "invite"
)

// GenerateLinkParams requests a one-time action link for an account.
type GenerateLinkParams struct {
	Type       string `json:"type"`
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Link is a generated one-time action link.
type Link struct {
	ActionLink string `json:"action_link"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("identity provider: %s (status %d)", e.Message, e.Status)
}

// Client talks to the provider's REST API. Admin calls authenticate with the service
// role key, session lookups with the caller's own access token.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	http       *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// NewClient constructs a provider client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		anonKey:    opts.AnonKey,
		serviceKey: opts.ServiceRoleKey,
		http:       httpClient,
	}
}

// GetUser resolves the account behind an access token through the GoTrue client.
// That client takes no context, so a request already cancelled is never sent.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if accessToken == "" {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "missing access token"}
	}

	resp, err := auth.New("", c.anonKey).
		WithCustomAuthURL(c.baseURL + "/auth/v1").
		WithToken(accessToken).
		GetUser()
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	// The GoTrue user mirrors the wire format, so re-decoding keeps this package's
	// User free of uuid and zero-time values.
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode session user: %w", err)
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	if user.CreatedAt != nil && user.CreatedAt.IsZero() {
		user.CreatedAt = nil
	}
	return &user, nil
}

// CreateUser creates an account through the admin API.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", c.serviceKey, params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GenerateLink creates a one-time link without sending any email.
func (c *Client) GenerateLink(ctx context.Context, params GenerateLinkParams) (*Link, error) {
	var payload struct {
		Link
		Properties *Link `json:"properties"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/generate_link", c.serviceKey, params, &payload); err != nil {
		return nil, err
	}
	link := payload.Link
	if link.ActionLink == "" && payload.Properties != nil {
		link = *payload.Properties
	}
	if link.ActionLink == "" {
		return nil, &APIError{Status: http.StatusBadGateway, Message: "response did not include an action link"}
	}
	return &link, nil
}

// UpdateUserByID updates an account's email and/or metadata.
func (c *Client) UpdateUserByID(ctx context.Context, id string, params UpdateUserParams) (*User, error) {
	var user User
	path := "/auth/v1/admin/users/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPut, path, c.serviceKey, params, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser permanently removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	path := "/auth/v1/admin/users/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, c.serviceKey, nil, nil)
}

// ListUsers returns one page of accounts. A non-positive page size uses the provider default.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]User, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}
	path := "/auth/v1/admin/users"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var payload struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, path, c.serviceKey, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Users, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte, fallback string) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, candidate := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
			if candidate != "" {
				return candidate
			}
		}
	}
	return fallback
}
