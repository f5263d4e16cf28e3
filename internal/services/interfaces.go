package services

import (
	"context"
	"io"
	"time"

	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
	"github.com/carecbt/exam-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateExamRequest = validator.ExamCreateRequest
type CreateAttemptRequest = validator.AttemptCreateRequest
type SaveAnswerRequest = validator.AnswerSaveRequest
type CorrectAnswerRequest = validator.AnswerCorrectRequest
type ImportRow = validator.ImportRow

type ExamListResponse struct {
	Exams []*models.Exam `json:"exams"`
	Total int64          `json:"total"`
}

// AttemptQuestion is a question as presented to one attempt: questions
// and options are in the attempt's shuffled order, and option slots
// beyond the question's populated count are omitted. Answer is the
// correct option's 1-based position within the shuffled order; the
// client echoes this numbering back as chosen_option when answering,
// and must not render it as a correct-answer marker during the attempt.
type AttemptQuestion struct {
	ID          uint    `json:"id"`
	QuestionID  string  `json:"question_id"`
	Stem        string  `json:"stem"`
	Opt1        string  `json:"opt1"`
	Opt2        string  `json:"opt2"`
	Opt3        *string `json:"opt3,omitempty"`
	Opt4        *string `json:"opt4,omitempty"`
	Opt5        *string `json:"opt5,omitempty"`
	Answer      int     `json:"answer"`
	Explanation *string `json:"explanation,omitempty"`
	MediaURL    *string `json:"media_url,omitempty"`
	Position    int     `json:"position"`
}

type AnswerResponse struct {
	ID           uint `json:"id"`
	AttemptID    uint `json:"attempt_id"`
	QuestionID   uint `json:"question_id"`
	ChosenOption int  `json:"chosen_option"`
	IsCorrect    bool `json:"is_correct"`
}

// ResultResponse summarizes a graded attempt
type ResultResponse struct {
	AttemptID   uint       `json:"attempt_id"`
	ExamID      uint       `json:"exam_id"`
	Score       int        `json:"score"`
	Total       int        `json:"total"`
	Correct     int        `json:"correct"`
	Wrong       int        `json:"wrong"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

// ReviewAnswer is an answer in review mode: options and indices are in
// canonical numbering, with the correct answer and explanation exposed.
type ReviewAnswer struct {
	AnswerID      uint    `json:"answer_id"`
	QuestionID    uint    `json:"question_id"`
	ExternalID    string  `json:"external_question_id"`
	Stem          string  `json:"stem"`
	Opt1          string  `json:"opt1"`
	Opt2          string  `json:"opt2"`
	Opt3          *string `json:"opt3,omitempty"`
	Opt4          *string `json:"opt4,omitempty"`
	Opt5          *string `json:"opt5,omitempty"`
	CorrectAnswer int     `json:"correct_answer"`
	ChosenOption  int     `json:"chosen_option"`
	IsCorrect     bool    `json:"is_correct"`
	Explanation   *string `json:"explanation,omitempty"`
	MediaURL      *string `json:"media_url,omitempty"`
}

// GradeSummary is the aggregate produced by grading an attempt
type GradeSummary struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Score   int `json:"score"`
}

// ===== IMPORT DTOs =====

// ImportRowResult is one parsed upload row with its validation outcome
type ImportRowResult struct {
	Line   int        `json:"line"`
	Row    *ImportRow `json:"row,omitempty"`
	Errors []string   `json:"errors,omitempty"`
}

type ImportPreviewResponse struct {
	Rows     []*ImportRowResult `json:"rows"`
	RowsOK   int                `json:"rows_ok"`
	RowsFail int                `json:"rows_fail"`
}

type ImportCommitResponse struct {
	ImportID uint `json:"import_id"`
	RowsOK   int  `json:"rows_ok"`
	RowsFail int  `json:"rows_fail"`
}

// ===== SERVICE INTERFACES =====

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest) (*models.Exam, error)
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetFree(ctx context.Context) (*models.Exam, error)
	List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error)
}

type AttemptService interface {
	// Start creates an attempt with a freshly generated shuffle seed
	Start(ctx context.Context, req *CreateAttemptRequest) (*models.Attempt, error)
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)

	// GetQuestions assembles the attempt's question set in its shuffled
	// presentation. Repeated calls return the identical assembly.
	GetQuestions(ctx context.Context, attemptID uint) ([]*AttemptQuestion, error)

	// Submit grades the attempt and stores its score. Resubmission
	// regrades against the current answers but keeps the original
	// submission time.
	Submit(ctx context.Context, attemptID uint) (*ResultResponse, error)
	GetResult(ctx context.Context, attemptID uint) (*ResultResponse, error)
}

type AnswerService interface {
	// Save records a choice made against the attempt's shuffled option
	// order, translating it to canonical numbering before persisting.
	Save(ctx context.Context, req *SaveAnswerRequest) (*AnswerResponse, error)

	// Correct amends an answer after submission. The choice is given in
	// canonical numbering; the stored attempt score is left untouched.
	Correct(ctx context.Context, answerID uint, req *CorrectAnswerRequest) (*AnswerResponse, error)

	GetWrongAnswers(ctx context.Context, attemptID uint) ([]*ReviewAnswer, error)
	GetExplanations(ctx context.Context, attemptID uint) ([]*ReviewAnswer, error)
}

type GradingService interface {
	// GradeAttempt recomputes correctness over the attempt's answers
	GradeAttempt(ctx context.Context, attemptID uint) (*GradeSummary, error)

	// Score converts a correct/total pair to a 0..100 percentage
	Score(correct, total int) int
}

type ImportService interface {
	// Preview parses and validates an upload without persisting anything
	Preview(ctx context.Context, filename string, file io.Reader) (*ImportPreviewResponse, error)

	// Commit upserts every valid row into the exam's question set inside
	// one transaction and records an import audit row.
	Commit(ctx context.Context, examID uint, filename string, file io.Reader, createdBy string) (*ImportCommitResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Exam() ExamService
	Attempt() AttemptService
	Answer() AnswerService
	Grading() GradingService
	Import() ImportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
