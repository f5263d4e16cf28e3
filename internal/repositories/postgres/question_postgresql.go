package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carecbt/exam-service/internal/cache"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManagerFor(redisClient),
	}
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := q.db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			return nil, err
		}
		return &dbQuestion, nil
	})
	if err != nil {
		return nil, err
	}

	return &question, nil
}

func (q *QuestionPostgreSQL) GetByExternalID(ctx context.Context, questionID string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// Upsert inserts the question or, when the external question_id already
// exists, refreshes its content and bumps the version.
func (q *QuestionPostgreSQL) Upsert(ctx context.Context, question *models.Question) error {
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"stem":        question.Stem,
			"opt1":        question.Opt1,
			"opt2":        question.Opt2,
			"opt3":        question.Opt3,
			"opt4":        question.Opt4,
			"opt5":        question.Opt5,
			"answer":      question.Answer,
			"explanation": question.Explanation,
			"tags":        question.Tags,
			"media_url":   question.MediaURL,
			"version":     gorm.Expr("questions.version + 1"),
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(question).Error
	if err != nil {
		return err
	}

	// The insert path leaves ID unset when the row already existed.
	if question.ID == 0 {
		existing, err := q.GetByExternalID(ctx, question.QuestionID)
		if err != nil {
			return err
		}
		question.ID = existing.ID
	}

	return q.cacheManager.Question.Delete(ctx, fmt.Sprintf("id:%d", question.ID))
}
