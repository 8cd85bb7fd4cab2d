package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

const keyPrefix = "petsapi:matches"

type redisMatchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMatchCache stores match listings as JSON strings that expire after ttl.
func NewRedisMatchCache(client *redis.Client, ttl time.Duration) repository.MatchCache {
	return &redisMatchCache{client: client, ttl: ttl}
}

func userKey(userID int) string {
	return fmt.Sprintf("%s:usuario:%d", keyPrefix, userID)
}

func institutionKey(institutionID int) string {
	return fmt.Sprintf("%s:instituicao:%d", keyPrefix, institutionID)
}

// generationKey holds the counter Invalidate increments. It never expires.
func generationKey(key string) string {
	return key + ":gen"
}

func entryKey(key string, generation int64) string {
	return fmt.Sprintf("%s:g%d", key, generation)
}

func (c *redisMatchCache) GetUserMatches(ctx context.Context, userID int) ([]*domain.MatchDetail, int64, bool, error) {
	return c.get(ctx, userKey(userID))
}

func (c *redisMatchCache) SetUserMatches(ctx context.Context, userID int, generation int64, matches []*domain.MatchDetail) error {
	return c.set(ctx, entryKey(userKey(userID), generation), matches)
}

func (c *redisMatchCache) GetInstitutionMatches(ctx context.Context, institutionID int) ([]*domain.MatchDetail, int64, bool, error) {
	return c.get(ctx, institutionKey(institutionID))
}

func (c *redisMatchCache) SetInstitutionMatches(ctx context.Context, institutionID int, generation int64, matches []*domain.MatchDetail) error {
	return c.set(ctx, entryKey(institutionKey(institutionID), generation), matches)
}

func (c *redisMatchCache) Invalidate(ctx context.Context, userID, institutionID int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userKey(userID)))
		pipe.Incr(ctx, generationKey(institutionKey(institutionID)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate match cache: %w", err)
	}
	return nil
}

func (c *redisMatchCache) get(ctx context.Context, key string) ([]*domain.MatchDetail, int64, bool, error) {
	generation, err := c.client.Get(ctx, generationKey(key)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("failed to read match cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, entryKey(key, generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to read match cache: %w", err)
	}

	var matches []*domain.MatchDetail
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode match cache entry: %w", err)
	}
	return matches, generation, true, nil
}

func (c *redisMatchCache) set(ctx context.Context, key string, matches []*domain.MatchDetail) error {
	if matches == nil {
		matches = []*domain.MatchDetail{}
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to encode match cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write match cache: %w", err)
	}
	return nil
}
