package services

import (
	"context"
	"testing"

	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc          *AuthService
	users        *fakeUserRepo
	profiles     *fakeProfileRepo
	tokens       *fakeRefreshTokenRepo
	verification *VerificationService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	tokens := newFakeRefreshTokenRepo()
	verification := NewVerificationService()
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 30,
		},
	}
	return &authFixture{
		svc:          NewAuthService(users, profiles, tokens, verification, cfg),
		users:        users,
		profiles:     profiles,
		tokens:       tokens,
		verification: verification,
	}
}

// issuedCode digs the outstanding code for an email out of the
// verification store.
func (f *authFixture) issuedCode(t *testing.T, email string, purpose domain.VerificationPurpose) string {
	t.Helper()
	f.verification.mu.RLock()
	defer f.verification.mu.RUnlock()
	entry, ok := f.verification.store[storeKey(email, purpose)]
	require.True(t, ok, "no code issued for %s", email)
	return entry.Code
}

func (f *authFixture) register(t *testing.T) {
	t.Helper()
	require.NoError(t, f.svc.Register(context.Background(), &RegisterInput{
		Email:    "a@b.com",
		Password: "secret123",
	}))
}

func (f *authFixture) registerAndVerify(t *testing.T) *AuthResponse {
	t.Helper()
	f.register(t)
	code := f.issuedCode(t, "a@b.com", domain.PurposeEmailVerify)
	resp, err := f.svc.VerifyEmail(context.Background(), code)
	require.NoError(t, err)
	return resp
}

func TestRegisterCreatesUnverifiedUserAndProfile(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	user, err := f.users.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "USER", user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	// An empty profile row is created alongside
	_, err = f.profiles.GetByUserID(context.Background(), user.ID)
	assert.NoError(t, err)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	err := f.svc.Register(context.Background(), &RegisterInput{
		Email:    "a@b.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	// No digit
	err := f.svc.Register(context.Background(), &RegisterInput{
		Email:    "a@b.com",
		Password: "passwords",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	// No letter
	err = f.svc.Register(context.Background(), &RegisterInput{
		Email:    "a@b.com",
		Password: "12345678",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestVerifyEmailIssuesTokens(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.registerAndVerify(t)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.True(t, resp.User.IsVerified)

	claims, err := f.svc.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyEmailCodeIsSingleShot(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)
	code := f.issuedCode(t, "a@b.com", domain.PurposeEmailVerify)

	_, err := f.svc.VerifyEmail(context.Background(), code)
	require.NoError(t, err)

	_, err = f.svc.VerifyEmail(context.Background(), code)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestLoginBeforeVerificationFails(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLoginAfterVerification(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t)

	resp, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "a@b.com", resp.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t)

	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "wrong-pass1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), &LoginInput{
		Email:    "nobody@b.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newAuthFixture(t)
	first := f.registerAndVerify(t)

	second, err := f.svc.RefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The old refresh token was revoked by the rotation
	_, err = f.svc.RefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The new one still works
	_, err = f.svc.RefreshToken(context.Background(), second.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshTokenGarbageRejected(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.registerAndVerify(t)

	require.NoError(t, f.svc.Logout(context.Background(), resp.RefreshToken))

	_, err := f.svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.registerAndVerify(t)

	// A second session
	second, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.activeCount(resp.User.ID))

	require.NoError(t, f.svc.LogoutAll(context.Background(), resp.User.ID))
	assert.Zero(t, f.tokens.activeCount(resp.User.ID))

	_, err = f.svc.RefreshToken(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndVerify(t)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "a@b.com"))
	code := f.issuedCode(t, "a@b.com", domain.PurposePasswordReset)

	// The verify step does not consume the code
	require.NoError(t, f.svc.VerifyResetCode(context.Background(), code))
	require.NoError(t, f.svc.VerifyResetCode(context.Background(), code))

	require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), code, "newpass99"))

	// Old password dead, new password works
	_, err := f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), &LoginInput{
		Email:    "a@b.com",
		Password: "newpass99",
	})
	assert.NoError(t, err)

	// The consumed code is gone
	assert.ErrorIs(t, f.svc.VerifyResetCode(context.Background(), code), ErrCodeInvalid)
}

func TestPasswordResetRevokesSessions(t *testing.T) {
	f := newAuthFixture(t)
	resp := f.registerAndVerify(t)

	require.NoError(t, f.svc.RequestPasswordReset(context.Background(), "a@b.com"))
	code := f.issuedCode(t, "a@b.com", domain.PurposePasswordReset)
	require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), code, "newpass99"))

	_, err := f.svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.RequestPasswordReset(context.Background(), "nobody@b.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
