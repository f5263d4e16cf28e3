package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/events"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
	"github.com/carecbt/exam-service/internal/shuffle"
	"github.com/carecbt/exam-service/internal/validator"
)

type answerService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
}

func NewAnswerService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.BusinessValidator,
	publisher events.EventPublisher,
) AnswerService {
	return &answerService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Save records a choice for one question of an attempt. The incoming
// choice is numbered against the shuffled order the attempt was shown,
// so it is translated through the same permutation back to canonical
// numbering before it is stored. Saving twice for the same question
// overwrites the previous choice.
func (s *answerService) Save(ctx context.Context, req *SaveAnswerRequest) (*AnswerResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	question, err := s.repo.Question().GetByID(ctx, req.QuestionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	member, err := s.repo.ExamQuestion().IsMember(ctx, attempt.ExamID, question.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam membership: %w", err)
	}
	if !member {
		return nil, ErrQuestionNotInAttempt
	}

	shuffled, _, err := shuffle.RemapOptions(question.Options(), question.Answer,
		shuffle.OptionSeed(attempt.ShuffleSeed, question.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild option order: %w", err)
	}

	canonical, err := shuffle.CanonicalChoice(shuffled, req.ChosenOption)
	if err != nil {
		return nil, NewValidationError("chosen_option",
			fmt.Sprintf("must be between 1 and %d", len(shuffled)), req.ChosenOption)
	}

	answer := &models.Answer{
		AttemptID:    attempt.ID,
		QuestionID:   question.ID,
		ChosenOption: canonical,
		IsCorrect:    canonical == question.Answer,
	}

	if err := s.repo.Answer().Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.Debug("Answer saved",
		"attempt_id", attempt.ID,
		"question_id", question.ID,
		"is_correct", answer.IsCorrect)

	return toAnswerResponse(answer), nil
}

// Correct amends an answer after the attempt was submitted. The new
// choice arrives in canonical numbering because review surfaces show
// canonical option order. The attempt's stored score is deliberately
// left as graded at submission time.
func (s *answerService) Correct(ctx context.Context, answerID uint, req *CorrectAnswerRequest) (*AnswerResponse, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, errs
	}

	answer, err := s.repo.Answer().GetByIDWithQuestion(ctx, answerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, answer.AttemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.Submitted() {
		return nil, ErrAttemptNotSubmitted
	}

	if errs := s.validator.ValidateChosenOption(req.ChosenOption, answer.Question.OptionCount()); errs.HasErrors() {
		return nil, errs
	}

	answer.ChosenOption = req.ChosenOption
	answer.IsCorrect = req.ChosenOption == answer.Question.Answer

	if err := s.repo.Answer().Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to update answer: %w", err)
	}

	s.logger.Info("Answer corrected",
		"answer_id", answer.ID,
		"attempt_id", answer.AttemptID,
		"is_correct", answer.IsCorrect)

	s.publish(ctx, events.NewEvent(events.EventAnswerCorrected, events.AnswerCorrectedEvent{
		AnswerID:     answer.ID,
		AttemptID:    answer.AttemptID,
		QuestionID:   answer.QuestionID,
		ChosenOption: answer.ChosenOption,
		IsCorrect:    answer.IsCorrect,
	}))

	return toAnswerResponse(answer), nil
}

// GetWrongAnswers returns the submitted attempt's incorrect answers in
// canonical presentation for review.
func (s *answerService) GetWrongAnswers(ctx context.Context, attemptID uint) ([]*ReviewAnswer, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if !attempt.Submitted() {
		return nil, ErrAttemptNotSubmitted
	}

	answers, err := s.repo.Answer().GetByAttemptWithQuestions(ctx, attemptID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load wrong answers: %w", err)
	}

	return toReviewAnswers(answers), nil
}

// GetExplanations returns every recorded answer with its question's
// explanation, in canonical presentation.
func (s *answerService) GetExplanations(ctx context.Context, attemptID uint) ([]*ReviewAnswer, error) {
	if _, err := s.repo.Attempt().GetByID(ctx, attemptID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	answers, err := s.repo.Answer().GetByAttemptWithQuestions(ctx, attemptID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	return toReviewAnswers(answers), nil
}

func (s *answerService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func toAnswerResponse(answer *models.Answer) *AnswerResponse {
	return &AnswerResponse{
		ID:           answer.ID,
		AttemptID:    answer.AttemptID,
		QuestionID:   answer.QuestionID,
		ChosenOption: answer.ChosenOption,
		IsCorrect:    answer.IsCorrect,
	}
}

func toReviewAnswers(answers []*models.Answer) []*ReviewAnswer {
	out := make([]*ReviewAnswer, 0, len(answers))
	for _, a := range answers {
		q := a.Question
		out = append(out, &ReviewAnswer{
			AnswerID:      a.ID,
			QuestionID:    q.ID,
			ExternalID:    q.QuestionID,
			Stem:          q.Stem,
			Opt1:          q.Opt1,
			Opt2:          q.Opt2,
			Opt3:          q.Opt3,
			Opt4:          q.Opt4,
			Opt5:          q.Opt5,
			CorrectAnswer: q.Answer,
			ChosenOption:  a.ChosenOption,
			IsCorrect:     a.IsCorrect,
			Explanation:   q.Explanation,
			MediaURL:      q.MediaURL,
		})
	}
	return out
}
