package repositories

import (
	"context"

	"github.com/carecbt/exam-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	ExamType  *string `json:"exam_type"`
	IsFree    *bool   `json:"is_free"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "title"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED STATISTICS STRUCTS =====

// AnswerStats is the aggregate over an attempt's recorded answers.
type AnswerStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// ===== ENTITY REPOSITORIES =====

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetFree(ctx context.Context) (*models.Exam, error)
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	UpdateQuestionCount(ctx context.Context, id uint, count int) error
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByExternalID(ctx context.Context, questionID string) (*models.Question, error)
	Upsert(ctx context.Context, question *models.Question) error
}

type ExamQuestionRepository interface {
	// GetQuestionsForExam returns the exam's questions in canonical
	// membership order (order_no ascending).
	GetQuestionsForExam(ctx context.Context, examID uint) ([]*models.Question, error)
	Bind(ctx context.Context, examID, questionID uint, orderNo int) error
	CountForExam(ctx context.Context, examID uint) (int64, error)
	IsMember(ctx context.Context, examID, questionID uint) (bool, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)
	Update(ctx context.Context, attempt *models.Attempt) error
}

type AnswerRepository interface {
	// Upsert performs a single atomic insert-or-update keyed by
	// (attempt_id, question_id). Concurrent writers for the same pair
	// are last-write-wins; no duplicate rows are ever created.
	Upsert(ctx context.Context, answer *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	GetByIDWithQuestion(ctx context.Context, id uint) (*models.Answer, error)
	GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error)
	GetByAttemptWithQuestions(ctx context.Context, attemptID uint, wrongOnly bool) ([]*models.Answer, error)
	GetStats(ctx context.Context, attemptID uint) (*AnswerStats, error)
}

type ImportRepository interface {
	Create(ctx context.Context, imp *models.Import) error
}
