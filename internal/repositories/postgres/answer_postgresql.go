package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// Upsert writes the answer with a single conditional insert-or-update
// keyed on (attempt_id, question_id). Concurrent writes for the same
// pair are last-write-wins and never create a duplicate row.
func (a *AnswerPostgreSQL) Upsert(ctx context.Context, answer *models.Answer) error {
	err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"chosen_option": answer.ChosenOption,
			"is_correct":    answer.IsCorrect,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(answer).Error
	if err != nil {
		return err
	}

	// The insert path leaves ID unset when the row already existed.
	if answer.ID == 0 {
		var existing models.Answer
		if err := a.db.WithContext(ctx).
			Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).
			First(&existing).Error; err != nil {
			return err
		}
		answer.ID = existing.ID
		answer.UpdatedAt = existing.UpdatedAt
	}

	return nil
}

func (a *AnswerPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) GetByIDWithQuestion(ctx context.Context, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.db.WithContext(ctx).
		Preload("Question").
		First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	if err := a.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) GetByAttemptWithQuestions(ctx context.Context, attemptID uint, wrongOnly bool) ([]*models.Answer, error) {
	query := a.db.WithContext(ctx).
		Preload("Question").
		Where("attempt_id = ?", attemptID)
	if wrongOnly {
		query = query.Where("is_correct = ?", false)
	}

	var answers []*models.Answer
	if err := query.Order("id").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (a *AnswerPostgreSQL) GetStats(ctx context.Context, attemptID uint) (*repositories.AnswerStats, error) {
	var stats repositories.AnswerStats
	row := a.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select(
			"COUNT(*) AS total",
			"COUNT(CASE WHEN is_correct THEN 1 END) AS correct",
			"COUNT(CASE WHEN NOT is_correct THEN 1 END) AS wrong",
		).
		Where("attempt_id = ?", attemptID)
	if err := row.Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
