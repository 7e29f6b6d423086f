package config

import (
	"log"
	"os"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedAdminUser creates the initial admin account when no admin exists yet.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD env vars.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	plain := os.Getenv("ADMIN_PASSWORD")
	if email == "" || plain == "" {
		log.Println("⚠️ ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:      email,
		Password:   hashed,
		Role:       "ADMIN",
		IsVerified: true,
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	// Admin accounts still get an empty profile row so profile reads
	// never special-case them
	profile := &models.Profile{UserID: admin.ID}
	if err := db.Create(profile).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user seeded: %s", email)
	return nil
}
