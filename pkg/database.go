package pkg

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carecbt/exam-service/internal/config"
	"github.com/carecbt/exam-service/internal/models"
)

// InitDatabase opens the Postgres connection and migrates the schema
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Exam{},
		&models.Question{},
		&models.ExamQuestion{},
		&models.Attempt{},
		&models.Answer{},
		&models.Import{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := seedFreeExam(db); err != nil {
		return nil, fmt.Errorf("failed to seed free exam: %w", err)
	}

	return db, nil
}

// seedFreeExam ensures at least one free practice exam exists so a
// fresh deployment is usable without an import.
func seedFreeExam(db *gorm.DB) error {
	var existing models.Exam
	err := db.Where("is_free = ?", true).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(&models.Exam{
		ExamType: "free",
		ExamCode: "FREE-TRIAL",
		Title:    "Free Practice Exam",
		IsFree:   true,
	}).Error
}
