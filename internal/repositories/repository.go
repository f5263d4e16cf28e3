package repositories

import "context"

// Repository aggregates all entity repositories behind one interface so
// services depend on a single injected handle instead of a shared
// global connection.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	ExamQuestion() ExamQuestionRepository
	Attempt() AttemptRepository
	Answer() AnswerRepository
	Import() ImportRepository

	// WithTransaction runs fn inside a database transaction; every
	// repository call made through the passed Repository joins it.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// InvalidateQuestionCache drops every cached exam and question
	// entry. Transactional repositories carry no cache, so callers that
	// rewrite question content invoke this after their transaction
	// commits.
	InvalidateQuestionCache(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
