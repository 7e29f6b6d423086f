package services

import (
	"testing"
	"time"

	"rezo-marketplace/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndConsume(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	email, err := svc.Consume(code, domain.PurposeEmailVerify)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)

	// Consumed codes cannot be redeemed twice
	_, err = svc.Consume(code, domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestPeekDoesNotConsume(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposePasswordReset)
	require.NoError(t, err)

	// Peeking any number of times leaves the code alive
	for i := 0; i < 3; i++ {
		email, err := svc.Peek(code, domain.PurposePasswordReset)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", email)
	}

	email, err := svc.Consume(code, domain.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

func TestCodesAreScopedByPurpose(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)

	// A verify code is useless for a password reset
	_, err = svc.Peek(code, domain.PurposePasswordReset)
	assert.ErrorIs(t, err, ErrCodeInvalid)

	_, err = svc.Consume(code, domain.PurposeEmailVerify)
	assert.NoError(t, err)
}

func TestIssueRateLimited(t *testing.T) {
	svc := NewVerificationService()

	_, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)

	_, err = svc.Issue("a@b.com", domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeRateLimited)

	// A different email or purpose is not limited
	_, err = svc.Issue("other@b.com", domain.PurposeEmailVerify)
	assert.NoError(t, err)
	_, err = svc.Issue("a@b.com", domain.PurposePasswordReset)
	assert.NoError(t, err)
}

func TestExpiredCodeRejected(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)

	// Force the entry past its expiry
	svc.mu.Lock()
	svc.store[storeKey("a@b.com", domain.PurposeEmailVerify)].ExpiresAt = time.Now().Add(-time.Second)
	svc.mu.Unlock()

	_, err = svc.Peek(code, domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeExpired)

	_, err = svc.Consume(code, domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeExpired)

	// Consume on an expired code removes it entirely
	_, err = svc.Consume(code, domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestRevokeRemovesCode(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)

	svc.Revoke("a@b.com", domain.PurposeEmailVerify)

	_, err = svc.Peek(code, domain.PurposeEmailVerify)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestRepeatedWrongGuessesInvalidateCode(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposePasswordReset)
	require.NoError(t, err)

	wrong := "999999"
	if wrong == code {
		wrong = "000000"
	}

	for i := 0; i < maxAttempts; i++ {
		_, err := svc.Peek(wrong, domain.PurposePasswordReset)
		assert.ErrorIs(t, err, ErrCodeInvalid)
	}

	// The real code is gone after the attempt cap
	_, err = svc.Peek(code, domain.PurposePasswordReset)
	assert.ErrorIs(t, err, ErrCodeInvalid)
}

func TestWrongGuessesBelowCapLeaveCodeAlive(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposePasswordReset)
	require.NoError(t, err)

	wrong := "999999"
	if wrong == code {
		wrong = "000000"
	}

	for i := 0; i < maxAttempts-1; i++ {
		_, err := svc.Consume(wrong, domain.PurposePasswordReset)
		assert.ErrorIs(t, err, ErrCodeInvalid)
	}

	email, err := svc.Consume(code, domain.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}

func TestWrongGuessesDoNotChargeOtherPurposes(t *testing.T) {
	svc := NewVerificationService()

	code, err := svc.Issue("a@b.com", domain.PurposeEmailVerify)
	require.NoError(t, err)

	wrong := "999999"
	if wrong == code {
		wrong = "000000"
	}

	for i := 0; i < maxAttempts; i++ {
		_, _ = svc.Peek(wrong, domain.PurposePasswordReset)
	}

	email, err := svc.Consume(code, domain.PurposeEmailVerify)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", email)
}
