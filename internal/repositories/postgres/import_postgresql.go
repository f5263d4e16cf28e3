package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

type ImportPostgreSQL struct {
	db *gorm.DB
}

func NewImportPostgreSQL(db *gorm.DB) repositories.ImportRepository {
	return &ImportPostgreSQL{db: db}
}

func (i *ImportPostgreSQL) Create(ctx context.Context, imp *models.Import) error {
	return i.db.WithContext(ctx).Create(imp).Error
}
