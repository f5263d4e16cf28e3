package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheManager groups the cache helpers used by the repositories.
type CacheManager struct {
	client *redis.Client

	Fast     *CacheHelper
	Exam     *CacheHelper
	Question *CacheHelper
}

// NewCacheManager creates a cache manager with all cache helpers. A nil
// client produces helpers that pass every read through to the database.
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		client:   client,
		Fast:     NewCacheHelper(client, FastCacheConfig.Prefix),
		Exam:     NewCacheHelper(client, ExamCacheConfig.Prefix),
		Question: NewCacheHelper(client, QuestionCacheConfig.Prefix),
	}
}

// HealthCheck pings the underlying redis connection.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	return cm.client.Ping(ctx).Err()
}

// InvalidateQuestionData drops all exam and question entries; called
// after an administrative import rewrites question content.
func (cm *CacheManager) InvalidateQuestionData(ctx context.Context) error {
	if err := cm.Exam.InvalidatePattern(ctx, "*"); err != nil {
		return err
	}
	return cm.Question.InvalidatePattern(ctx, "*")
}
