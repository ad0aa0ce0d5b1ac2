package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/pkg/authprovider"
)

// AdminAllowlist is the configured set of administrator emails. Membership is an exact,
// case-sensitive match.
type AdminAllowlist map[string]struct{}

// NewAdminAllowlist trims each entry and drops empty ones.
func NewAdminAllowlist(emails []string) AdminAllowlist {
	list := make(AdminAllowlist, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		list[email] = struct{}{}
	}
	return list
}

// Contains reports whether email is an administrator.
func (a AdminAllowlist) Contains(email string) bool {
	if email == "" {
		return false
	}
	_, ok := a[email]
	return ok
}

// SessionResolver maps an access token to the account it belongs to.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Identity, error)
}

type tokenVerifier interface {
	Verify(token string) (*authprovider.User, error)
}

type sessionUserGetter interface {
	GetUser(ctx context.Context, accessToken string) (*authprovider.User, error)
}

// LocalSessionResolver verifies tokens with the provider's signing secret.
type LocalSessionResolver struct {
	verifier tokenVerifier
}

// NewLocalSessionResolver constructs a resolver that never leaves the process.
func NewLocalSessionResolver(verifier tokenVerifier) *LocalSessionResolver {
	return &LocalSessionResolver{verifier: verifier}
}

// Resolve implements SessionResolver.
func (r *LocalSessionResolver) Resolve(_ context.Context, token string) (*models.Identity, error) {
	user, err := r.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return identityFromUser(user), nil
}

// RemoteSessionResolver asks the identity provider who owns the token.
type RemoteSessionResolver struct {
	client sessionUserGetter
}

// NewRemoteSessionResolver constructs a resolver backed by the provider's user endpoint.
func NewRemoteSessionResolver(client sessionUserGetter) *RemoteSessionResolver {
	return &RemoteSessionResolver{client: client}
}

// Resolve implements SessionResolver.
func (r *RemoteSessionResolver) Resolve(ctx context.Context, token string) (*models.Identity, error) {
	user, err := r.client.GetUser(ctx, token)
	if err != nil {
		return nil, err
	}
	return identityFromUser(user), nil
}

// IdentityGate resolves the caller of each request and whether they are an administrator.
type IdentityGate struct {
	resolver SessionResolver
	admins   AdminAllowlist
	logger   *zap.Logger
}

// NewIdentityGate constructs the gate.
func NewIdentityGate(resolver SessionResolver, admins AdminAllowlist, logger *zap.Logger) *IdentityGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if admins == nil {
		admins = AdminAllowlist{}
	}
	return &IdentityGate{resolver: resolver, admins: admins, logger: logger}
}

// Resolve never fails: any resolution error yields an anonymous, non-admin caller.
func (g *IdentityGate) Resolve(ctx context.Context, token string) models.Caller {
	if token == "" || g.resolver == nil {
		return models.Caller{}
	}

	identity, err := g.resolver.Resolve(ctx, token)
	if err != nil || identity == nil || identity.ID == "" {
		if err != nil {
			g.logger.Debug("session resolution failed", zap.Error(err))
		}
		return models.Caller{}
	}

	return models.Caller{Identity: identity, IsAdmin: g.admins.Contains(identity.Email)}
}

func identityFromUser(user *authprovider.User) *models.Identity {
	if user == nil {
		return nil
	}
	return &models.Identity{
		ID:               user.ID,
		Email:            user.Email,
		CreatedAt:        user.CreatedAt,
		LastSignInAt:     user.LastSignInAt,
		EmailConfirmedAt: user.EmailConfirmedAt,
		UserMetadata:     user.UserMetadata,
	}
}
