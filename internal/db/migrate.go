package db

import (
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/pkg/logger"
	"github.com/ratehub/ratehub-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap admin account when the users table is empty.
// cmd/server passes credentials from ADMIN_EMAIL / ADMIN_PASSWORD; the
// seeder in cmd/seed adds richer development data on top.
func Seed(adminEmail, adminPassword string) error {
	if adminEmail == "" || adminPassword == "" {
		logger.Debug("Admin seed credentials not configured, skipping bootstrap admin")
		return nil
	}

	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Admin account already present, skipping bootstrap admin")
		return nil
	}

	hash, err := util.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: hash,
		Name:         "Platform Administrator Account",
		Address:      "",
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Bootstrap admin account created", map[string]interface{}{
		"email": adminEmail,
	})
	return nil
}
