package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/channelwrapped/wrapbot/pkg/db/models"
)

// SetupDatabase runs migrations and opens a gorm connection.
func SetupDatabase(logger *logrus.Logger, config *Config) (*gorm.DB, error) {
	logger.Debug("Starting database setup")

	if err := RunMigrations(logger, config); err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: NewGormLogrusLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Keeps the model and the migration in step during development.
	if err := db.AutoMigrate(&models.WrappedSummary{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database schema: %w", err)
	}

	logger.Info("Database setup completed successfully")
	return db, nil
}
