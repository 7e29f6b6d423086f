package services

import (
	"context"
	"errors"
	"log"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/domain"
	"rezo-marketplace/internal/pkg/jwt"
	"rezo-marketplace/internal/pkg/password"
	"rezo-marketplace/internal/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	verification     *VerificationService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	verification *VerificationService,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		verification:     verification,
		cfg:              cfg,
	}
}

// RegisterInput represents signup input
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	SessionID    string               `json:"sessionId"`
}

// Register creates an unverified user and issues an email verification code.
// The user cannot log in until the code is redeemed.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) error {
	// 1. Validate input
	if err := validator.Struct(input); err != nil {
		return ErrInvalidCredentials
	}
	if !password.Validate(input.Password) {
		return ErrWeakPassword
	}

	// 2. Check if email already exists
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserAlreadyExists
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return err
	}

	// 4. Create user + empty profile
	user := &models.User{
		Email:      input.Email,
		Password:   hashedPassword,
		Role:       string(domain.RoleUser),
		IsVerified: false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	if err := s.profileRepo.Create(ctx, &models.Profile{UserID: user.ID}); err != nil {
		return err
	}

	// 5. Issue verification code (delivered by mail out of band;
	//    dev mode logs it so the flow can be exercised locally)
	code, err := s.verification.Issue(user.Email, domain.PurposeEmailVerify)
	if err != nil {
		return err
	}
	if s.cfg.IsDev() {
		log.Printf("📧 Verification code for %s: %s", user.Email, code)
	}

	log.Printf("✅ User registered: %s", user.Email)
	return nil
}

// VerifyEmail redeems a 6-digit code, marks the user verified and
// issues the first token pair
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (*AuthResponse, error) {
	// 1. Consume the code (one-shot)
	email, err := s.verification.Consume(code, domain.PurposeEmailVerify)
	if err != nil {
		return nil, err
	}

	// 2. Find and mark user verified
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsVerified {
		user.IsVerified = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	// 3. Issue tokens
	resp, err := s.buildAuthResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Email verified: %s", user.Email)
	return resp, nil
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	// 1. Find user by email
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Verify password
	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. Unverified accounts cannot log in
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	// 4. Issue tokens
	resp, err := s.buildAuthResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)
	return resp, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Hash the token to find in DB
	tokenHash := password.HashToken(refreshToken)

	// 3. Find token in DB
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	// 4. Check if token is revoked or expired
	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	// 5. Get user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 6. Revoke old refresh token (Token Rotation)
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	// 7. Issue new tokens
	resp, err := s.buildAuthResponse(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for user: %s", user.Email)
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for user ID: %d", userID)
	return nil
}

// RequestPasswordReset issues a reset code for an existing account
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := s.verification.Issue(user.Email, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	if s.cfg.IsDev() {
		log.Printf("📧 Password reset code for %s: %s", user.Email, code)
	}

	return nil
}

// VerifyResetCode checks a reset code without consuming it, so the
// same code can still authorize the confirm step
func (s *AuthService) VerifyResetCode(ctx context.Context, code string) error {
	_, err := s.verification.Peek(code, domain.PurposePasswordReset)
	return err
}

// ConfirmPasswordReset consumes the reset code, sets the new password
// and revokes every outstanding session
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if !password.Validate(newPassword) {
		return ErrWeakPassword
	}

	email, err := s.verification.Consume(code, domain.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Force re-login everywhere
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, user.ID); err != nil {
		return err
	}

	log.Printf("✅ Password reset completed for: %s", user.Email)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// buildAuthResponse issues a token pair, stores the refresh token and
// assembles the denormalized user payload
func (s *AuthService) buildAuthResponse(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	userResponse := user.ToResponse()

	// Overlay profile fields the pages consume alongside the user
	profile, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err == nil && profile != nil {
		userResponse.FirstName = profile.FirstName
		userResponse.LastName = profile.LastName
		userResponse.Phone = profile.Phone
		userResponse.AvatarURL = profile.AvatarURL
		userResponse.CnicNumber = profile.CnicNumber
		userResponse.Nationality = profile.Nationality
	}

	return &AuthResponse{
		User:         userResponse,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		SessionID:    uuid.New().String(),
	}, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	// Generate unique token ID
	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
