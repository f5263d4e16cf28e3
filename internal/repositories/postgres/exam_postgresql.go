package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/cache"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

type ExamPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		cacheManager: cacheManagerFor(redisClient),
	}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	return e.db.WithContext(ctx).Create(exam).Error
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var exam models.Exam

	err := e.cacheManager.Exam.CacheOrExecute(ctx, cacheKey, &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		if err := e.db.WithContext(ctx).First(&dbExam, id).Error; err != nil {
			return nil, err
		}
		return &dbExam, nil
	})
	if err != nil {
		return nil, err
	}

	return &exam, nil
}

func (e *ExamPostgreSQL) GetFree(ctx context.Context) (*models.Exam, error) {
	var exam models.Exam
	err := e.cacheManager.Exam.CacheOrExecute(ctx, "free", &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		if err := e.db.WithContext(ctx).Where("is_free = ?", true).First(&dbExam).Error; err != nil {
			return nil, err
		}
		return &dbExam, nil
	})
	if err != nil {
		return nil, err
	}

	return &exam, nil
}

// Whitelist of sortable exam columns for SQL injection protection.
var examSortColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"title":      true,
	"exam_type":  true,
}

// examSortClause builds the ORDER BY clause from raw filter input. Only
// whitelisted column names are interpolated; anything else falls back
// to created_at.
func examSortClause(sortBy, sortOrder string) string {
	if !examSortColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}

func (e *ExamPostgreSQL) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var exams []*models.Exam
	var total int64

	query := e.db.WithContext(ctx).Model(&models.Exam{})
	if filters.ExamType != nil {
		query = query.Where("exam_type = ?", *filters.ExamType)
	}
	if filters.IsFree != nil {
		query = query.Where("is_free = ?", *filters.IsFree)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order(examSortClause(filters.SortBy, filters.SortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) UpdateQuestionCount(ctx context.Context, id uint, count int) error {
	if err := e.db.WithContext(ctx).
		Model(&models.Exam{}).
		Where("id = ?", id).
		Update("question_count", count).Error; err != nil {
		return err
	}

	return e.cacheManager.Exam.Delete(ctx, fmt.Sprintf("id:%d", id), "free")
}
