package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/internal/service"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
	"github.com/noah-isme/qc-report-api/pkg/response"
)

type provisioningService interface {
	CreateUser(ctx context.Context, caller models.Caller, req dto.CreateUserRequest) (*service.AccountCreated, error)
	ListUsers(ctx context.Context, caller models.Caller) ([]models.Identity, error)
	UpdateUser(ctx context.Context, caller models.Caller, req dto.UpdateUserRequest) (*models.Identity, error)
	DeleteUser(ctx context.Context, caller models.Caller, userID string) error
	SendCredentials(ctx context.Context, caller models.Caller, req dto.SendCredentialsRequest) error
}

// AdminHandler exposes the account administration endpoints.
type AdminHandler struct {
	service provisioningService
}

// NewAdminHandler builds a new handler.
func NewAdminHandler(service provisioningService) *AdminHandler {
	return &AdminHandler{service: service}
}

// AdminCheck godoc
// @Summary Report whether the caller is an administrator
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin-check [get]
func (h *AdminHandler) AdminCheck(c *gin.Context) {
	caller := callerFromContext(c)
	response.JSON(c, http.StatusOK, dto.AdminCheckResponse{
		IsAdmin:       caller.Authenticated() && caller.IsAdmin,
		Authenticated: caller.Authenticated(),
		Email:         caller.Email(),
	})
}

// ListUsers godoc
// @Summary List provider accounts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), callerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, users, len(users))
}

// CreateUser godoc
// @Summary Provision an account and email its setup link
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.CreateUserRequest true "Account"
// @Success 200 {object} response.Envelope
// @Router /create-user [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	result, err := h.service.CreateUser(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := service.MessageUserCreated
	if !result.Notified {
		message = service.MessageUserCreatedNoEmail
	}
	response.JSON(c, http.StatusOK, dto.CreateUserResponse{
		Success: true,
		Message: message,
		User: dto.UserSummary{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.DisplayName(),
		},
		EmailNotified: result.Notified,
	}, messageMeta(c, message))
}

// UpdateUser godoc
// @Summary Change an account email or display name
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.UpdateUserRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /update-user [put]
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), callerFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, messageMeta(c, service.MessageUserUpdated))
}

// DeleteUser godoc
// @Summary Delete an account
// @Tags Admin
// @Produce json
// @Param userId query string false "Account id (or JSON body userId)"
// @Success 200 {object} response.Envelope
// @Router /delete-user [delete]
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var body dto.DeleteUserRequest
	bindOptionalJSON(c, &body)
	userID := bodyOrQuery(c, "userId", body.UserID)

	if err := h.service.DeleteUser(c.Request.Context(), callerFromContext(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, messageMeta(c, service.MessageUserDeleted))
}

// SendCredentials godoc
// @Summary Re-send an account setup link
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.SendCredentialsRequest true "Recipient"
// @Success 200 {object} response.Envelope
// @Router /send-credentials [post]
func (h *AdminHandler) SendCredentials(c *gin.Context) {
	var req dto.SendCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credentials payload"))
		return
	}

	if err := h.service.SendCredentials(c.Request.Context(), callerFromContext(c), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"success": true}, messageMeta(c, service.MessageCredentialsSent))
}
