package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/events"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
	"github.com/carecbt/exam-service/internal/shuffle"
	"github.com/carecbt/exam-service/internal/validator"
)

// Seeds are drawn from 1..999999. Zero is excluded so a missing seed is
// distinguishable from a generated one.
const maxShuffleSeed = 999999

type attemptService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	grading   GradingService
	publisher events.EventPublisher
}

func NewAttemptService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.BusinessValidator,
	grading GradingService,
	publisher events.EventPublisher,
) AttemptService {
	return &attemptService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		grading:   grading,
		publisher: publisher,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *CreateAttemptRequest) (*models.Attempt, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	if _, err := s.repo.Exam().GetByID(ctx, req.ExamID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	attempt := &models.Attempt{
		ExamID:      req.ExamID,
		ShuffleSeed: rand.Int63n(maxShuffleSeed) + 1,
		StartedAt:   time.Now(),
		ClientMeta:  req.ClientMeta,
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"exam_id", attempt.ExamID,
		"shuffle_seed", attempt.ShuffleSeed)

	s.publish(ctx, events.NewEvent(events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		ShuffleSeed: attempt.ShuffleSeed,
	}))

	return attempt, nil
}

func (s *attemptService) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

// GetQuestions assembles the attempt's shuffled question set. Question
// order is permuted with the attempt seed; each question's options are
// permuted with a seed derived from the attempt seed and the question's
// internal id. The derivation is pure, so every call reproduces the
// same presentation without persisting any shuffled state.
func (s *attemptService) GetQuestions(ctx context.Context, attemptID uint) ([]*AttemptQuestion, error) {
	attempt, err := s.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ExamQuestion().GetQuestionsForExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}

	ordered := shuffle.Permute(questions, attempt.ShuffleSeed)

	out := make([]*AttemptQuestion, 0, len(ordered))
	for i, q := range ordered {
		opts, remapped, err := shuffle.RemapOptions(q.Options(), q.Answer, shuffle.OptionSeed(attempt.ShuffleSeed, q.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to remap options for question %d: %w", q.ID, err)
		}

		aq := &AttemptQuestion{
			ID:          q.ID,
			QuestionID:  q.QuestionID,
			Stem:        q.Stem,
			Answer:      remapped,
			Explanation: q.Explanation,
			MediaURL:    q.MediaURL,
			Position:    i + 1,
		}
		aq.Opt1 = opts[0].Text
		aq.Opt2 = opts[1].Text
		if len(opts) > 2 {
			aq.Opt3 = &opts[2].Text
		}
		if len(opts) > 3 {
			aq.Opt4 = &opts[3].Text
		}
		if len(opts) > 4 {
			aq.Opt5 = &opts[4].Text
		}

		out = append(out, aq)
	}

	return out, nil
}

// Submit grades the attempt and finalizes it. Resubmitting regrades
// against the answers as they stand now but keeps the first submission
// timestamp.
func (s *attemptService) Submit(ctx context.Context, attemptID uint) (*ResultResponse, error) {
	attempt, err := s.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	summary, err := s.grading.GradeAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	attempt.Score = &summary.Score
	attempt.Total = &summary.Total
	if attempt.SubmittedAt == nil {
		now := time.Now()
		attempt.SubmittedAt = &now
	}

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"score", summary.Score,
		"total", summary.Total)

	s.publish(ctx, events.NewEvent(events.EventAttemptSubmitted, events.AttemptSubmittedEvent{
		AttemptID: attempt.ID,
		ExamID:    attempt.ExamID,
		Score:     summary.Score,
		Total:     summary.Total,
		Correct:   summary.Correct,
	}))

	return &ResultResponse{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		Score:       summary.Score,
		Total:       summary.Total,
		Correct:     summary.Correct,
		Wrong:       summary.Wrong,
		SubmittedAt: attempt.SubmittedAt,
	}, nil
}

func (s *attemptService) GetResult(ctx context.Context, attemptID uint) (*ResultResponse, error) {
	attempt, err := s.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if !attempt.Submitted() {
		return nil, ErrAttemptNotSubmitted
	}

	stats, err := s.repo.Answer().GetStats(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer stats: %w", err)
	}

	result := &ResultResponse{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		Correct:     stats.Correct,
		Wrong:       stats.Wrong,
		SubmittedAt: attempt.SubmittedAt,
	}
	// Score and Total are the values frozen at submission time; later
	// corrections change the per-answer flags but not the stored score.
	if attempt.Score != nil {
		result.Score = *attempt.Score
	}
	if attempt.Total != nil {
		result.Total = *attempt.Total
	}

	return result, nil
}

func (s *attemptService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
