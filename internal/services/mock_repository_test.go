package services

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/models"
	"github.com/carecbt/exam-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests
type mockRepository struct {
	exams         map[uint]*models.Exam
	questions     map[uint]*models.Question
	examQuestions []*models.ExamQuestion
	attempts      map[uint]*models.Attempt
	answers       map[uint]*models.Answer
	imports       []*models.Import

	nextExamID     uint
	nextQuestionID uint
	nextAttemptID  uint
	nextAnswerID   uint

	cacheInvalidations int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		exams:     make(map[uint]*models.Exam),
		questions: make(map[uint]*models.Question),
		attempts:  make(map[uint]*models.Attempt),
		answers:   make(map[uint]*models.Answer),
	}
}

func (m *mockRepository) Exam() repositories.ExamRepository                 { return &mockExamRepo{m} }
func (m *mockRepository) Question() repositories.QuestionRepository         { return &mockQuestionRepo{m} }
func (m *mockRepository) ExamQuestion() repositories.ExamQuestionRepository { return &mockExamQuestionRepo{m} }
func (m *mockRepository) Attempt() repositories.AttemptRepository           { return &mockAttemptRepo{m} }
func (m *mockRepository) Answer() repositories.AnswerRepository             { return &mockAnswerRepo{m} }
func (m *mockRepository) Import() repositories.ImportRepository             { return &mockImportRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) InvalidateQuestionCache(ctx context.Context) error {
	m.cacheInvalidations++
	return nil
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== TEST FIXTURE HELPERS =====

func (m *mockRepository) addExam(exam *models.Exam) *models.Exam {
	m.nextExamID++
	exam.ID = m.nextExamID
	m.exams[exam.ID] = exam
	return exam
}

func (m *mockRepository) addQuestion(examID uint, q *models.Question) *models.Question {
	m.nextQuestionID++
	q.ID = m.nextQuestionID
	m.questions[q.ID] = q
	m.examQuestions = append(m.examQuestions, &models.ExamQuestion{
		ExamID:     examID,
		QuestionID: q.ID,
		OrderNo:    len(m.examQuestions) + 1,
	})
	return q
}

// ===== ENTITY REPOSITORIES =====

type mockExamRepo struct{ m *mockRepository }

func (r *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	r.m.addExam(exam)
	return nil
}

func (r *mockExamRepo) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, ok := r.m.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

func (r *mockExamRepo) GetFree(ctx context.Context) (*models.Exam, error) {
	for _, exam := range r.m.exams {
		if exam.IsFree {
			return exam, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockExamRepo) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	var out []*models.Exam
	for _, exam := range r.m.exams {
		if filters.ExamType != nil && exam.ExamType != *filters.ExamType {
			continue
		}
		if filters.IsFree != nil && exam.IsFree != *filters.IsFree {
			continue
		}
		out = append(out, exam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockExamRepo) UpdateQuestionCount(ctx context.Context, id uint, count int) error {
	exam, ok := r.m.exams[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	exam.QuestionCount = count
	return nil
}

type mockQuestionRepo struct{ m *mockRepository }

func (r *mockQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	q, ok := r.m.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *mockQuestionRepo) GetByExternalID(ctx context.Context, questionID string) (*models.Question, error) {
	for _, q := range r.m.questions {
		if q.QuestionID == questionID {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockQuestionRepo) Upsert(ctx context.Context, question *models.Question) error {
	for _, existing := range r.m.questions {
		if existing.QuestionID == question.QuestionID {
			question.ID = existing.ID
			question.Version = existing.Version + 1
			r.m.questions[existing.ID] = question
			return nil
		}
	}
	r.m.nextQuestionID++
	question.ID = r.m.nextQuestionID
	question.Version = 1
	r.m.questions[question.ID] = question
	return nil
}

type mockExamQuestionRepo struct{ m *mockRepository }

func (r *mockExamQuestionRepo) GetQuestionsForExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	var memberships []*models.ExamQuestion
	for _, eq := range r.m.examQuestions {
		if eq.ExamID == examID {
			memberships = append(memberships, eq)
		}
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].OrderNo < memberships[j].OrderNo })

	var out []*models.Question
	for _, eq := range memberships {
		out = append(out, r.m.questions[eq.QuestionID])
	}
	return out, nil
}

func (r *mockExamQuestionRepo) Bind(ctx context.Context, examID, questionID uint, orderNo int) error {
	for _, eq := range r.m.examQuestions {
		if eq.ExamID == examID && eq.QuestionID == questionID {
			eq.OrderNo = orderNo
			return nil
		}
	}
	r.m.examQuestions = append(r.m.examQuestions, &models.ExamQuestion{
		ExamID:     examID,
		QuestionID: questionID,
		OrderNo:    orderNo,
	})
	return nil
}

func (r *mockExamQuestionRepo) CountForExam(ctx context.Context, examID uint) (int64, error) {
	var count int64
	for _, eq := range r.m.examQuestions {
		if eq.ExamID == examID {
			count++
		}
	}
	return count, nil
}

func (r *mockExamQuestionRepo) IsMember(ctx context.Context, examID, questionID uint) (bool, error) {
	for _, eq := range r.m.examQuestions {
		if eq.ExamID == examID && eq.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

type mockAttemptRepo struct{ m *mockRepository }

func (r *mockAttemptRepo) Create(ctx context.Context, attempt *models.Attempt) error {
	r.m.nextAttemptID++
	attempt.ID = r.m.nextAttemptID
	r.m.attempts[attempt.ID] = attempt
	return nil
}

func (r *mockAttemptRepo) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	attempt, ok := r.m.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return attempt, nil
}

func (r *mockAttemptRepo) Update(ctx context.Context, attempt *models.Attempt) error {
	if _, ok := r.m.attempts[attempt.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.m.attempts[attempt.ID] = attempt
	return nil
}

type mockAnswerRepo struct{ m *mockRepository }

func (r *mockAnswerRepo) Upsert(ctx context.Context, answer *models.Answer) error {
	for _, existing := range r.m.answers {
		if existing.AttemptID == answer.AttemptID && existing.QuestionID == answer.QuestionID {
			answer.ID = existing.ID
			r.m.answers[existing.ID] = answer
			return nil
		}
	}
	r.m.nextAnswerID++
	answer.ID = r.m.nextAnswerID
	r.m.answers[answer.ID] = answer
	return nil
}

func (r *mockAnswerRepo) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	answer, ok := r.m.answers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return answer, nil
}

func (r *mockAnswerRepo) GetByIDWithQuestion(ctx context.Context, id uint) (*models.Answer, error) {
	answer, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	answer.Question = *r.m.questions[answer.QuestionID]
	return answer, nil
}

func (r *mockAnswerRepo) GetByAttempt(ctx context.Context, attemptID uint) ([]*models.Answer, error) {
	return r.collect(attemptID, false, false), nil
}

func (r *mockAnswerRepo) GetByAttemptWithQuestions(ctx context.Context, attemptID uint, wrongOnly bool) ([]*models.Answer, error) {
	return r.collect(attemptID, true, wrongOnly), nil
}

func (r *mockAnswerRepo) GetStats(ctx context.Context, attemptID uint) (*repositories.AnswerStats, error) {
	stats := &repositories.AnswerStats{}
	for _, answer := range r.collect(attemptID, false, false) {
		stats.Total++
		if answer.IsCorrect {
			stats.Correct++
		} else {
			stats.Wrong++
		}
	}
	return stats, nil
}

func (r *mockAnswerRepo) collect(attemptID uint, withQuestions, wrongOnly bool) []*models.Answer {
	var out []*models.Answer
	for _, answer := range r.m.answers {
		if answer.AttemptID != attemptID {
			continue
		}
		if wrongOnly && answer.IsCorrect {
			continue
		}
		if withQuestions {
			answer.Question = *r.m.questions[answer.QuestionID]
		}
		out = append(out, answer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type mockImportRepo struct{ m *mockRepository }

func (r *mockImportRepo) Create(ctx context.Context, imp *models.Import) error {
	imp.ID = uint(len(r.m.imports) + 1)
	r.m.imports = append(r.m.imports, imp)
	return nil
}
