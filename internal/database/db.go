package database

import (
	"errors"
	"time"

	"lendit/internal/audit"
	"lendit/internal/logger"
	"lendit/internal/models"
	"lendit/internal/policy"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn, adminEmail, adminPassword string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logger.Log.Infow("connecting to database", "attempt", i, "max", maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
		})
		if err == nil {
			logger.Log.Infow("connected to database")
			break
		}

		logger.Log.Warnw("database connection failed", "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		logger.Log.Fatalw("giving up connecting to database", "attempts", maxAttempts, "error", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Booking{},
		&models.Review{},
		&models.VerificationRequest{},
		&models.PolicyDocument{},
		&models.AuditLog{},
	)
	if err != nil {
		logger.Log.Fatalw("migration failed", "error", err)
	}

	createDefaultAdmin(adminEmail, adminPassword)
	seedPlatformPolicy()
}

// admin account comes from config only, never from the register endpoint
func createDefaultAdmin(email, password string) {
	if email == "" {
		email = "admin@lendit.local"
	}
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		logger.Log.Errorw("failed to check admin user", "error", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash default admin password", "error", err)
		return
	}

	admin := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Platform admin",
		Role:         models.RoleAdmin,
		Verified:     true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		logger.Log.Errorw("failed to create default admin", "error", err)
		return
	}

	logger.Log.Infow("created default admin user", "email", email)
}

// a fresh database gets version 1 of the canonical policy, otherwise no
// booking can ever be created
func seedPlatformPolicy() {
	_, err := policy.Active(DB, policy.CanonicalSlug)
	if err == nil {
		return
	}
	if !errors.Is(err, policy.ErrNotFound) {
		logger.Log.Errorw("failed to check platform policy", "error", err)
		return
	}

	doc, err := policy.Publish(DB, policy.CanonicalSlug,
		"Insurance and damage policy",
		"Initial platform insurance and damage policy. Replace via the admin policy endpoint.",
		audit.Actor{}, audit.RequestMeta{},
	)
	if err != nil {
		logger.Log.Errorw("failed to seed platform policy", "error", err)
		return
	}
	logger.Log.Infow("seeded platform policy", "slug", doc.Slug, "version", doc.Version)
}
