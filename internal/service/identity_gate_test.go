package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/pkg/authprovider"
)

type mockSessionResolver struct {
	identity *models.Identity
	err      error
	calls    int
}

func (m *mockSessionResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	m.calls++
	return m.identity, m.err
}

func TestAdminAllowlistTrimsAndMatchesExactly(t *testing.T) {
	list := NewAdminAllowlist([]string{" boss@example.com ", "", "Chief@Example.com"})

	assert.True(t, list.Contains("boss@example.com"))
	assert.True(t, list.Contains("Chief@Example.com"))
	assert.False(t, list.Contains("chief@example.com"))
	assert.False(t, list.Contains(""))
	assert.Len(t, list, 2)
}

func TestIdentityGateResolvesAdmin(t *testing.T) {
	resolver := &mockSessionResolver{identity: &models.Identity{ID: "u-1", Email: "boss@example.com"}}
	gate := NewIdentityGate(resolver, NewAdminAllowlist([]string{"boss@example.com"}), nil)

	caller := gate.Resolve(context.Background(), "token")
	require.True(t, caller.Authenticated())
	assert.True(t, caller.IsAdmin)
	assert.Equal(t, "u-1", caller.ID())
}

func TestIdentityGateNonAdmin(t *testing.T) {
	resolver := &mockSessionResolver{identity: &models.Identity{ID: "u-2", Email: "inspector@example.com"}}
	gate := NewIdentityGate(resolver, NewAdminAllowlist([]string{"boss@example.com"}), nil)

	caller := gate.Resolve(context.Background(), "token")
	assert.True(t, caller.Authenticated())
	assert.False(t, caller.IsAdmin)
}

func TestIdentityGateFailsOpenToAnonymous(t *testing.T) {
	resolver := &mockSessionResolver{err: errors.New("provider unreachable")}
	gate := NewIdentityGate(resolver, NewAdminAllowlist([]string{"boss@example.com"}), nil)

	caller := gate.Resolve(context.Background(), "token")
	assert.False(t, caller.Authenticated())
	assert.False(t, caller.IsAdmin)
}

func TestIdentityGateSkipsResolverWithoutToken(t *testing.T) {
	resolver := &mockSessionResolver{identity: &models.Identity{ID: "u-1"}}
	gate := NewIdentityGate(resolver, nil, nil)

	caller := gate.Resolve(context.Background(), "")
	assert.False(t, caller.Authenticated())
	assert.Zero(t, resolver.calls)
}

type stubVerifier struct {
	user *authprovider.User
	err  error
}

func (s stubVerifier) Verify(string) (*authprovider.User, error) {
	return s.user, s.err
}

func TestLocalSessionResolverMapsUser(t *testing.T) {
	resolver := NewLocalSessionResolver(stubVerifier{user: &authprovider.User{
		ID:           "u-1",
		Email:        "qc@example.com",
		UserMetadata: map[string]interface{}{"name": "QC"},
	}})

	identity, err := resolver.Resolve(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "QC", identity.DisplayName())
}
