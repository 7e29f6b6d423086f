package handlers

import (
	"errors"
	"strings"
	"time"

	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/services"
	"rezo-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents signup request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest represents email verification request body
type VerifyEmailRequest struct {
	Code string `json:"code"`
}

// PasswordResetRequest represents password reset request body
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// VerifyResetCodeRequest represents reset code verification body
type VerifyResetCodeRequest struct {
	Code string `json:"code"`
}

// ConfirmResetRequest represents reset confirmation body
type ConfirmResetRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// Register handles user signup
// @Summary Register new user
// @Description Create an unverified account and send a verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Signup data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "MISSING_CREDENTIALS")
	}

	input := &services.RegisterInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}

	if err := h.authService.Register(c.Context(), input); err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters with a letter and a digit")
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.BadRequest(c, "Invalid email or password format")
		case errors.Is(err, services.ErrCodeRateLimited):
			return response.Error(c, fiber.StatusTooManyRequests, "Verification code requested too recently")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	return response.Created(c, "Registration successful, please verify your email", nil)
}

// VerifyEmail handles email verification
// @Summary Verify email
// @Description Redeem a 6-digit verification code and receive tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyEmailRequest true "Verification code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" {
		return response.BadRequest(c, "Verification code is required")
	}

	result, err := h.authService.VerifyEmail(c.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			return response.BadRequest(c, "Verification code expired")
		case errors.Is(err, services.ErrCodeInvalid):
			return response.BadRequest(c, "Invalid verification code")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to verify email")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Email verified successfully", fiber.Map{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"sessionId":    result.SessionID,
		"user":         result.User,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "MISSING_CREDENTIALS")
	}

	input := &services.LoginInput{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, services.ErrEmailNotVerified):
			return response.Forbidden(c, "EMAIL_NOT_VERIFIED")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"sessionId":    result.SessionID,
		"user":         result.User,
	})
}

// RequestPasswordReset handles password reset requests
// @Summary Request password reset
// @Description Send a 6-digit reset code to the account email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body PasswordResetRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/password-reset [post]
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.authService.RequestPasswordReset(c.Context(), email); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.BadRequest(c, "RESET_REQUEST_FAILED")
		case errors.Is(err, services.ErrCodeRateLimited):
			return response.Error(c, fiber.StatusTooManyRequests, "Reset code requested too recently")
		default:
			return response.InternalServerError(c, "RESET_REQUEST_FAILED")
		}
	}

	return response.Success(c, "Password reset code sent", nil)
}

// VerifyResetCode handles reset code verification
// @Summary Verify reset code
// @Description Check a password reset code without consuming it
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body VerifyResetCodeRequest true "Reset code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/password-reset/verify [post]
func (h *AuthHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req VerifyResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" {
		return response.BadRequest(c, "Reset code is required")
	}

	if err := h.authService.VerifyResetCode(c.Context(), strings.TrimSpace(req.Code)); err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			return response.BadRequest(c, "Reset code expired")
		default:
			return response.BadRequest(c, "Invalid reset code")
		}
	}

	return response.Success(c, "Reset code valid", nil)
}

// ConfirmPasswordReset handles the final reset step
// @Summary Confirm password reset
// @Description Consume the reset code and set the new password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ConfirmResetRequest true "Code and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req ConfirmResetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Code and new password are required")
	}

	err := h.authService.ConfirmPasswordReset(c.Context(), strings.TrimSpace(req.Code), req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			return response.BadRequest(c, "Reset code expired")
		case errors.Is(err, services.ErrCodeInvalid):
			return response.BadRequest(c, "Invalid reset code")
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters with a letter and a digit")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to reset password")
		}
	}

	// All sessions are revoked; clear this browser's cookies too
	h.clearAuthCookies(c)

	return response.Success(c, "Password reset successfully", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Refresh access token using refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, services.ErrTokenRevoked):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token revoked, please login again")
		case errors.Is(err, services.ErrInvalidToken):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		default:
			return response.InternalServerError(c, "Failed to refresh token")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
		"sessionId":    result.SessionID,
		"user":         result.User,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Logout user and revoke refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the user
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.NotFound(c, "User not found")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	// Access token cookie (shorter expiry)
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60, // Convert minutes to seconds
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	// Refresh token cookie (longer expiry)
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60, // Convert days to seconds
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
