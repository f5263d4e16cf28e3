package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/repositories"
)

type gradingService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) GradingService {
	return &gradingService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// GradeAttempt recomputes correctness for every recorded answer against
// the current canonical answer of its question. Both sides are in
// canonical numbering, so grading never consults the shuffle.
func (s *gradingService) GradeAttempt(ctx context.Context, attemptID uint) (*GradeSummary, error) {
	answers, err := s.repo.Answer().GetByAttemptWithQuestions(ctx, attemptID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for grading: %w", err)
	}

	summary := &GradeSummary{Total: len(answers)}
	for _, answer := range answers {
		if answer.ChosenOption == answer.Question.Answer {
			summary.Correct++
		} else {
			summary.Wrong++
		}
	}
	summary.Score = s.Score(summary.Correct, summary.Total)

	s.logger.Info("Attempt graded",
		"attempt_id", attemptID,
		"total", summary.Total,
		"correct", summary.Correct,
		"score", summary.Score)

	return summary, nil
}

// Score is the percentage of correct answers rounded to the nearest
// integer. An attempt with no answers scores zero.
func (s *gradingService) Score(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
