package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"rezo-marketplace/internal/core/domain"
)

// Verification errors
var (
	ErrCodeInvalid     = errors.New("verification code invalid")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrCodeRateLimited = errors.New("verification code requested too recently")
)

const (
	codeLength = 6
	codeTTL    = 10 * time.Minute
	// A new code for the same email+purpose can only be requested
	// after this much of the TTL has elapsed
	reissueAfter = 1 * time.Minute
	// After this many failed checks a code is dropped, so the
	// non-consuming verify endpoint cannot be brute-forced
	maxAttempts = 5
)

type codeEntry struct {
	Code      string
	Email     string
	Purpose   domain.VerificationPurpose
	ExpiresAt time.Time
	Attempts  int
}

// VerificationService issues and checks 6-digit codes for email
// verification and password reset. Codes live in memory only.
type VerificationService struct {
	store map[string]*codeEntry // key = purpose + ":" + email
	mu    sync.RWMutex
}

// NewVerificationService creates a new verification service
func NewVerificationService() *VerificationService {
	svc := &VerificationService{
		store: make(map[string]*codeEntry),
	}
	// Cleanup expired codes every 5 minutes
	go svc.cleanupLoop()
	return svc
}

// Issue creates a new 6-digit code for an email and purpose.
// Returns the code (to be delivered out of band).
func (s *VerificationService) Issue(email string, purpose domain.VerificationPurpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(email, purpose)

	// Rate limit re-requests for the same email+purpose
	if existing, ok := s.store[key]; ok {
		remaining := time.Until(existing.ExpiresAt)
		if remaining > codeTTL-reissueAfter {
			return "", ErrCodeRateLimited
		}
	}

	code, err := generateSecureCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	s.store[key] = &codeEntry{
		Code:      code,
		Email:     email,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(codeTTL),
	}

	return code, nil
}

// Peek checks a code for a purpose without consuming it.
// Returns the email the code was issued for.
func (s *VerificationService) Peek(code string, purpose domain.VerificationPurpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.find(code, purpose)
	if entry == nil {
		s.chargeFailedAttempt(purpose)
		return "", ErrCodeInvalid
	}
	if time.Now().After(entry.ExpiresAt) {
		return "", ErrCodeExpired
	}
	return entry.Email, nil
}

// Consume checks a code for a purpose and removes it on success.
// Returns the email the code was issued for.
func (s *VerificationService) Consume(code string, purpose domain.VerificationPurpose) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.find(code, purpose)
	if entry == nil {
		s.chargeFailedAttempt(purpose)
		return "", ErrCodeInvalid
	}
	if time.Now().After(entry.ExpiresAt) {
		delete(s.store, storeKey(entry.Email, purpose))
		return "", ErrCodeExpired
	}

	delete(s.store, storeKey(entry.Email, purpose))
	return entry.Email, nil
}

// Revoke removes any outstanding code for an email and purpose
func (s *VerificationService) Revoke(email string, purpose domain.VerificationPurpose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, storeKey(email, purpose))
}

// chargeFailedAttempt must be called with the lock held. A wrong code
// carries no email, so it cannot be attributed to a single flow; every
// outstanding code for the purpose is charged, and a code that reaches
// the attempt cap is dropped.
func (s *VerificationService) chargeFailedAttempt(purpose domain.VerificationPurpose) {
	for key, entry := range s.store {
		if entry.Purpose != purpose {
			continue
		}
		entry.Attempts++
		if entry.Attempts >= maxAttempts {
			delete(s.store, key)
		}
	}
}

// find must be called with the lock held
func (s *VerificationService) find(code string, purpose domain.VerificationPurpose) *codeEntry {
	for _, entry := range s.store {
		if entry.Purpose == purpose && entry.Code == code {
			return entry
		}
	}
	return nil
}

// cleanupLoop periodically removes expired codes
func (s *VerificationService) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		s.mu.Lock()
		for key, entry := range s.store {
			if time.Now().After(entry.ExpiresAt) {
				delete(s.store, key)
			}
		}
		s.mu.Unlock()
	}
}

func storeKey(email string, purpose domain.VerificationPurpose) string {
	return string(purpose) + ":" + email
}

// generateSecureCode generates a cryptographically secure numeric code
func generateSecureCode(length int) (string, error) {
	result := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		result += fmt.Sprintf("%d", n.Int64())
	}
	return result, nil
}
