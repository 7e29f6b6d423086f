package services

import (
	"context"
	"log"

	"rezo-marketplace/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers and starts all scheduled jobs
func (s *CronService) Start() {
	// Purge expired refresh tokens daily at 03:00
	_, err := s.cron.AddFunc("0 3 * * *", s.purgeExpiredTokens)
	if err != nil {
		log.Printf("❌ Failed to schedule token purge: %v", err)
		return
	}

	s.cron.Start()
	log.Println("✅ Cron service started (token purge daily 03:00)")
}

// Stop stops the scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("🛑 Cron service stopped")
}

func (s *CronService) purgeExpiredTokens() {
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("⚠️ Warning: Failed to purge expired refresh tokens: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}
