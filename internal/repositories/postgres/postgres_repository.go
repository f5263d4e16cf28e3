package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/carecbt/exam-service/internal/cache"
	"github.com/carecbt/exam-service/internal/repositories"
)

// PostgreSQLRepository implements the aggregate Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	exam         repositories.ExamRepository
	question     repositories.QuestionRepository
	examQuestion repositories.ExamQuestionRepository
	attempt      repositories.AttemptRepository
	answer       repositories.AnswerRepository
	imports      repositories.ImportRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository wires all entity repositories on a shared
// gorm handle. The redis client may be nil; cached read paths degrade
// to plain queries.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManagerFor(config.RedisClient),
	}

	repo.exam = NewExamPostgreSQL(config.DB, config.RedisClient)
	repo.question = NewQuestionPostgreSQL(config.DB, config.RedisClient)
	repo.examQuestion = NewExamQuestionPostgreSQL(config.DB)
	repo.attempt = NewAttemptPostgreSQL(config.DB)
	repo.answer = NewAnswerPostgreSQL(config.DB)
	repo.imports = NewImportPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) Exam() repositories.ExamRepository { return r.exam }

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository { return r.question }

func (r *PostgreSQLRepository) ExamQuestion() repositories.ExamQuestionRepository {
	return r.examQuestion
}

func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository { return r.attempt }

func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository { return r.answer }

func (r *PostgreSQLRepository) Import() repositories.ImportRepository { return r.imports }

// WithTransaction runs fn with a Repository bound to a transaction.
// Cached reads are skipped inside transactions to keep the cache from
// observing uncommitted state.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(RepositoryConfig{DB: tx})
		return fn(txRepo)
	})
}

// InvalidateQuestionCache flushes the exam and question caches. Nil
// redis clients make this a no-op.
func (r *PostgreSQLRepository) InvalidateQuestionCache(ctx context.Context) error {
	return r.cacheManager.InvalidateQuestionData(ctx)
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ===== REPOSITORY MANAGER =====

type postgresRepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &postgresRepositoryManager{config: config}
}

func (m *postgresRepositoryManager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("repository manager requires a database handle")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *postgresRepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *postgresRepositoryManager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *postgresRepositoryManager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}

// cacheManagerFor builds a cache helper set for a repository; nil redis
// clients produce helpers that silently pass through to the database.
func cacheManagerFor(client *redis.Client) *cache.CacheManager {
	return cache.NewCacheManager(client)
}
