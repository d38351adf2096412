package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dns_manager/internal/model"
)

// Migrate runs database migrations for all models
func Migrate(db *gorm.DB) error {
	logrus.Info("Starting database migration...")

	models := []interface{}{
		&model.User{},
		&model.CloudflareAccount{},
		&model.Domain{},
		&model.DNSRecord{},
		&model.Preset{},
		&model.PresetRecord{},
		&model.ActivityLog{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logrus.Infof("Database migration completed (%d tables)", len(models))
	return nil
}
