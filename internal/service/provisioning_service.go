package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/pkg/authprovider"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/mailer"
)

// SetupPasswordPath is the web route new accounts land on to choose a password.
const SetupPasswordPath = "/setup-password"

const listUsersPageSize = 200

// Messages returned by account administration.
const (
	MessageUserCreated        = "User created successfully. Account setup link sent to email."
	MessageUserCreatedNoEmail = "User created successfully, but the setup email could not be sent."
	MessageUserUpdated        = "User updated successfully"
	MessageUserDeleted        = "User deleted successfully"
	MessageCredentialsSent    = "Credentials email sent successfully"
)

type identityAdmin interface {
	CreateUser(ctx context.Context, params authprovider.CreateUserParams) (*authprovider.User, error)
	GenerateLink(ctx context.Context, params authprovider.GenerateLinkParams) (*authprovider.Link, error)
	UpdateUserByID(ctx context.Context, id string, params authprovider.UpdateUserParams) (*authprovider.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, page, perPage int) ([]authprovider.User, error)
}

// AccountCreated is the outcome of provisioning. Notified is false when the setup email
// could not be delivered even though the account exists.
type AccountCreated struct {
	User     models.Identity
	Notified bool
}

// ProvisioningService manages identity-provider accounts on behalf of administrators.
type ProvisioningService struct {
	provider  identityAdmin
	mailer    mailer.Mailer
	appURL    string
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewProvisioningService constructs the service. appURL is the web application base used
// for the password setup redirect.
func NewProvisioningService(provider identityAdmin, m mailer.Mailer, appURL string, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *ProvisioningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProvisioningService{
		provider:  provider,
		mailer:    m,
		appURL:    strings.TrimRight(appURL, "/"),
		validator: newValidator(validate),
		metrics:   metrics,
		logger:    logger,
	}
}

func requireAdmin(caller models.Caller) error {
	if !caller.Authenticated() {
		return appErrors.ErrUnauthorized
	}
	if !caller.IsAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "Forbidden: Admin access required")
	}
	return nil
}

func (s *ProvisioningService) validateEmail(email string) error {
	if err := s.validator.Var(email, "emailshape"); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "Invalid email format")
	}
	return nil
}

// CreateUser creates a pre-confirmed account with an unusable password, generates a
// recovery link to the setup page and emails it. The email is best-effort.
func (s *ProvisioningService) CreateUser(ctx context.Context, caller models.Caller, req dto.CreateUserRequest) (*AccountCreated, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if req.Email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Email is required")
	}
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = models.EmailLocalPart(req.Email)
	}

	user, err := s.provider.CreateUser(ctx, authprovider.CreateUserParams{
		Email:        req.Email,
		Password:     placeholderSecret(),
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{
			"name":        name,
			"first_login": true,
		},
	})
	if err != nil {
		return nil, providerError(err, "Failed to create user")
	}

	link, err := s.provider.GenerateLink(ctx, authprovider.GenerateLinkParams{
		Type:       authprovider.LinkRecovery,
		Email:      req.Email,
		RedirectTo: s.appURL + SetupPasswordPath,
	})
	if err != nil {
		s.logger.Warn("account created without setup link",
			zap.String("orphan_user_id", user.ID),
			zap.String("email", req.Email),
			zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Failed to generate account setup link")
	}

	result := &AccountCreated{User: *identityFromUser(user)}
	if err := s.mailer.SendAccountSetup(ctx, mailer.AccountSetup{Email: req.Email, Name: req.Name, SetupLink: link.ActionLink}); err != nil {
		s.logger.Warn("failed to send setup email", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		result.Notified = true
	}
	s.metrics.RecordEmail(result.Notified)

	s.logger.Info("user provisioned",
		zap.String("user_id", user.ID),
		zap.String("created_by", caller.ID()),
		zap.Bool("notified", result.Notified))
	return result, nil
}

// ListUsers returns every account known to the provider.
func (s *ProvisioningService) ListUsers(ctx context.Context, caller models.Caller) ([]models.Identity, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	identities := make([]models.Identity, 0)
	for page := 1; ; page++ {
		users, err := s.provider.ListUsers(ctx, page, listUsersPageSize)
		if err != nil {
			return nil, providerError(err, "Failed to fetch users")
		}
		for i := range users {
			identities = append(identities, *identityFromUser(&users[i]))
		}
		if len(users) < listUsersPageSize {
			break
		}
	}
	return identities, nil
}

// UpdateUser changes an account's email and/or display name. A nil name leaves the
// metadata untouched; an empty name falls back to the email local part.
func (s *ProvisioningService) UpdateUser(ctx context.Context, caller models.Caller, req dto.UpdateUserRequest) (*models.Identity, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "User ID is required")
	}

	var params authprovider.UpdateUserParams
	email := ""
	if req.Email != nil {
		email = *req.Email
	}
	if email != "" {
		if err := s.validateEmail(email); err != nil {
			return nil, err
		}
		params.Email = email
	}
	if req.Name != nil {
		name := *req.Name
		if name == "" && email != "" {
			name = models.EmailLocalPart(email)
		}
		params.UserMetadata = map[string]interface{}{"name": name}
	}

	user, err := s.provider.UpdateUserByID(ctx, req.UserID, params)
	if err != nil {
		return nil, providerError(err, "Failed to update user")
	}
	return identityFromUser(user), nil
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (s *ProvisioningService) DeleteUser(ctx context.Context, caller models.Caller, userID string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "User ID is required")
	}
	if userID == caller.ID() {
		return appErrors.Clone(appErrors.ErrValidation, "You cannot delete your own account")
	}

	if err := s.provider.DeleteUser(ctx, userID); err != nil {
		return providerError(err, "Failed to delete user")
	}
	s.logger.Info("user deleted", zap.String("user_id", userID), zap.String("deleted_by", caller.ID()))
	return nil
}

// SendCredentials emails an existing setup link.
func (s *ProvisioningService) SendCredentials(ctx context.Context, caller models.Caller, req dto.SendCredentialsRequest) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if req.Email == "" || req.SetupLink == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Email and setup link are required")
	}

	if err := s.mailer.SendAccountSetup(ctx, mailer.AccountSetup{Email: req.Email, Name: req.Name, SetupLink: req.SetupLink}); err != nil {
		return appErrors.Upstream(err, "Failed to send email")
	}
	return nil
}

// placeholderSecret is never shown to anyone; the account owner sets a real password
// through the recovery link.
func placeholderSecret() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24] + "A1!"
}

// providerError maps provider rejections (4xx) to validation failures carrying the
// provider message and anything else to an upstream failure.
func providerError(err error, message string) error {
	var apiErr *authprovider.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, apiErr.Message)
	}
	return appErrors.Upstream(err, message)
}
