package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
)

// AccessCacheService stores accessible-topic sets per (user, category) in
// Redis. It also backs purchase-side invalidation.
type AccessCacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewAccessCacheService constructs the cache service.
func NewAccessCacheService(client *redis.Client, ttl time.Duration, logger *zap.Logger) *AccessCacheService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessCacheService{client: client, ttl: ttl, logger: logger}
}

func accessKey(userID, categoryID string) string {
	return fmt.Sprintf("access:%s:%s", userID, categoryID)
}

// GetTopicSet returns the cached set or ErrCacheMiss.
func (s *AccessCacheService) GetTopicSet(ctx context.Context, userID, categoryID string) ([]string, error) {
	raw, err := s.client.Get(ctx, accessKey(userID, categoryID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErrors.Clone(appErrors.ErrCacheMiss, "")
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetTopicSet stores the set with the configured TTL.
func (s *AccessCacheService) SetTopicSet(ctx context.Context, userID, categoryID string, topicIDs []string) error {
	raw, err := json.Marshal(topicIDs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, accessKey(userID, categoryID), raw, s.ttl).Err()
}

// Invalidate drops the cached set. Best effort: a stale miss only costs a
// recomputation.
func (s *AccessCacheService) Invalidate(ctx context.Context, userID, categoryID string) {
	if err := s.client.Del(ctx, accessKey(userID, categoryID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate access cache",
			zap.String("user_id", userID),
			zap.String("category_id", categoryID),
			zap.Error(err))
	}
}
