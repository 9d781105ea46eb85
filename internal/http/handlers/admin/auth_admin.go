package admin

import (
	"errors"
	"time"

	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/http/response"
	"github.com/tourshop/internal/i18n"
	"github.com/tourshop/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest admin credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse token and account summary.
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin exchanges credentials for a JWT.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.login_failed", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
		},
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}

// GetAdminMe returns the signed-in account.
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.Me(adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, admin)
}

// UpdatePasswordRequest password change payload.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword changes the password and revokes earlier tokens.
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthService.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		var policyErr service.PasswordPolicyError
		if errors.As(err, &policyErr) {
			msg := i18n.T(i18n.ResolveLocale(c), "error.password_weak") + ": " + policyErr.Error()
			respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
			return
		}
		respondServiceError(c, err,
			handlershared.MappedError{Target: service.ErrPasswordMismatch, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
			handlershared.MappedError{Target: service.ErrAdminNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
		)
		return
	}
	requestLog(c).Infow("admin_password_changed", "admin_id", id)
	response.Success(c, gin.H{"changed": true})
}
