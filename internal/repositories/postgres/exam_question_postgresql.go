package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

type ExamQuestionPostgreSQL struct {
	db *gorm.DB
}

func NewExamQuestionPostgreSQL(db *gorm.DB) repositories.ExamQuestionRepository {
	return &ExamQuestionPostgreSQL{db: db}
}

// GetQuestionsForExam resolves the canonical question list: membership
// rows joined to question content, ordered by order_no.
func (e *ExamQuestionPostgreSQL) GetQuestionsForExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	var questions []*models.Question
	if err := e.db.WithContext(ctx).
		Joins("INNER JOIN exam_questions eq ON eq.question_id = questions.id").
		Where("eq.exam_id = ?", examID).
		Order("eq.order_no").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Bind attaches a question to an exam at the given canonical order,
// updating the order when the pair already exists.
func (e *ExamQuestionPostgreSQL) Bind(ctx context.Context, examID, questionID uint, orderNo int) error {
	membership := models.ExamQuestion{
		ExamID:     examID,
		QuestionID: questionID,
		OrderNo:    orderNo,
	}
	return e.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"order_no"}),
	}).Create(&membership).Error
}

func (e *ExamQuestionPostgreSQL) CountForExam(ctx context.Context, examID uint) (int64, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Where("exam_id = ?", examID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (e *ExamQuestionPostgreSQL) IsMember(ctx context.Context, examID, questionID uint) (bool, error) {
	var count int64
	if err := e.db.WithContext(ctx).
		Model(&models.ExamQuestion{}).
		Where("exam_id = ? AND question_id = ?", examID, questionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
