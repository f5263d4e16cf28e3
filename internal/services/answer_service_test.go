package services

import (
	"context"
	"testing"

	"github.com/carecbt/exam-service/internal/events"
	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/validator"
)

func startAttempt(t *testing.T, env *testEnv) *models.Attempt {
	t.Helper()
	attempt, err := env.attempts.Start(context.Background(), &CreateAttemptRequest{ExamID: env.exam.ID})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return attempt
}

func TestAnswerService_SaveTranslatesToCanonical(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	// Pick the shuffled position of canonical option 3 and verify the
	// stored answer is canonical again.
	choice := shuffledPosition(t, attempt, env.q2, 3)
	saved, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q2.ID,
		ChosenOption: choice,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if saved.ChosenOption != 3 {
		t.Errorf("stored option = %d, want canonical 3", saved.ChosenOption)
	}
	if saved.IsCorrect {
		t.Error("option 3 is not the canonical answer of Q-002")
	}
}

func TestAnswerService_SaveCorrectAnswerAnyShuffle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// The shuffled position of the canonical answer must always grade
	// correct, whatever seed the attempt drew.
	for i := 0; i < 20; i++ {
		attempt := startAttempt(t, env)
		choice := shuffledPosition(t, attempt, env.q3, env.q3.Answer)

		saved, err := env.answers.Save(ctx, &SaveAnswerRequest{
			AttemptID:    attempt.ID,
			QuestionID:   env.q3.ID,
			ChosenOption: choice,
		})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if !saved.IsCorrect {
			t.Fatalf("seed %d: correct answer graded wrong", attempt.ShuffleSeed)
		}
		if saved.ChosenOption != env.q3.Answer {
			t.Fatalf("seed %d: stored %d, want canonical %d", attempt.ShuffleSeed, saved.ChosenOption, env.q3.Answer)
		}
	}
}

func TestAnswerService_SaveOverwrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	first, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q1.ID,
		ChosenOption: 1,
	})
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	second, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q1.ID,
		ChosenOption: 2,
	})
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("overwriting a choice created a second row")
	}

	stored, err := env.repo.Answer().GetByAttempt(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetByAttempt failed: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 answer row, got %d", len(stored))
	}
}

func TestAnswerService_SaveRejectsForeignQuestion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	other := env.repo.addExam(&models.Exam{ExamType: "other", Title: "Other Exam"})
	foreign := env.repo.addQuestion(other.ID, &models.Question{
		QuestionID: "Q-X",
		Stem:       "Foreign question",
		Opt1:       "A",
		Opt2:       "B",
		Answer:     1,
	})

	_, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   foreign.ID,
		ChosenOption: 1,
	})
	if err != ErrQuestionNotInAttempt {
		t.Fatalf("expected ErrQuestionNotInAttempt, got %v", err)
	}
}

func TestAnswerService_SaveChoiceOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	// Q-001 has two options; position 3 does not exist in any shuffle
	_, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q1.ID,
		ChosenOption: 3,
	})

	var verr *ValidationError
	if !asValidationError(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAnswerService_CorrectRequiresSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	saved, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q1.ID,
		ChosenOption: 1,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err = env.answers.Correct(ctx, saved.ID, &CorrectAnswerRequest{ChosenOption: 2})
	if err != ErrAttemptNotSubmitted {
		t.Fatalf("expected ErrAttemptNotSubmitted, got %v", err)
	}
}

func TestAnswerService_CorrectKeepsStoredScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	// Answer Q-001 wrongly, submit, then amend to the right option
	wrong := shuffledPosition(t, attempt, env.q1, 1)
	saved, err := env.answers.Save(ctx, &SaveAnswerRequest{
		AttemptID:    attempt.ID,
		QuestionID:   env.q1.ID,
		ChosenOption: wrong,
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := env.attempts.Submit(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("setup expected score 0, got %d", result.Score)
	}

	env.publisher.ClearEvents()

	corrected, err := env.answers.Correct(ctx, saved.ID, &CorrectAnswerRequest{ChosenOption: env.q1.Answer})
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if !corrected.IsCorrect {
		t.Error("corrected answer should be marked correct")
	}

	// The frozen score survives; only the per-answer flag moved
	after, err := env.attempts.GetResult(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	if after.Score != 0 {
		t.Errorf("stored score changed to %d after correction", after.Score)
	}
	if after.Correct != 1 {
		t.Errorf("correct count = %d, want 1", after.Correct)
	}

	published := env.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventAnswerCorrected {
		t.Errorf("expected one %s event, got %v", events.EventAnswerCorrected, published)
	}
}

func TestAnswerService_WrongAnswersReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	saves := []SaveAnswerRequest{
		{AttemptID: attempt.ID, QuestionID: env.q1.ID, ChosenOption: shuffledPosition(t, attempt, env.q1, env.q1.Answer)},
		{AttemptID: attempt.ID, QuestionID: env.q3.ID, ChosenOption: shuffledPosition(t, attempt, env.q3, 1)},
	}
	for i := range saves {
		if _, err := env.answers.Save(ctx, &saves[i]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if _, err := env.answers.GetWrongAnswers(ctx, attempt.ID); err != ErrAttemptNotSubmitted {
		t.Fatalf("expected ErrAttemptNotSubmitted before submit, got %v", err)
	}

	if _, err := env.attempts.Submit(ctx, attempt.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	wrong, err := env.answers.GetWrongAnswers(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetWrongAnswers failed: %v", err)
	}
	if len(wrong) != 1 {
		t.Fatalf("expected 1 wrong answer, got %d", len(wrong))
	}

	review := wrong[0]
	if review.ExternalID != "Q-003" {
		t.Errorf("wrong answer question = %s, want Q-003", review.ExternalID)
	}
	// Review mode is canonical: options and indices as authored
	if review.Opt1 != "One" || review.CorrectAnswer != 4 || review.ChosenOption != 1 {
		t.Errorf("review not in canonical frame: %+v", review)
	}
	if review.Explanation == nil || *review.Explanation != "Four is correct" {
		t.Error("review missing explanation")
	}
}

func TestAnswerService_Explanations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	attempt := startAttempt(t, env)

	for _, q := range []*models.Question{env.q1, env.q2} {
		if _, err := env.answers.Save(ctx, &SaveAnswerRequest{
			AttemptID:    attempt.ID,
			QuestionID:   q.ID,
			ChosenOption: 1,
		}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Explanations are available before submission
	all, err := env.answers.GetExplanations(ctx, attempt.ID)
	if err != nil {
		t.Fatalf("GetExplanations failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(all))
	}
}

func asValidationError(err error, target **ValidationError) bool {
	if err == nil {
		return false
	}
	if verr, ok := err.(*ValidationError); ok {
		*target = verr
		return true
	}
	if _, ok := err.(validator.ValidationErrors); ok {
		return true
	}
	return false
}
