package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
)

type localMatchCache struct {
	store *gocache.Cache
}

// NewLocalMatchCache keeps match listings in process memory. Used when no
// redis server is configured.
func NewLocalMatchCache(ttl time.Duration) repository.MatchCache {
	return &localMatchCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *localMatchCache) GetUserMatches(_ context.Context, userID int) ([]*domain.MatchDetail, int64, bool, error) {
	matches, generation, ok := c.lookup(userKey(userID))
	return matches, generation, ok, nil
}

func (c *localMatchCache) SetUserMatches(_ context.Context, userID int, generation int64, matches []*domain.MatchDetail) error {
	c.store.SetDefault(entryKey(userKey(userID), generation), cloneDetails(matches))
	return nil
}

func (c *localMatchCache) GetInstitutionMatches(_ context.Context, institutionID int) ([]*domain.MatchDetail, int64, bool, error) {
	matches, generation, ok := c.lookup(institutionKey(institutionID))
	return matches, generation, ok, nil
}

func (c *localMatchCache) SetInstitutionMatches(_ context.Context, institutionID int, generation int64, matches []*domain.MatchDetail) error {
	c.store.SetDefault(entryKey(institutionKey(institutionID), generation), cloneDetails(matches))
	return nil
}

func (c *localMatchCache) Invalidate(_ context.Context, userID, institutionID int) error {
	for _, key := range []string{userKey(userID), institutionKey(institutionID)} {
		genKey := generationKey(key)
		// Add is a no-op when the counter exists; the increment is atomic.
		_ = c.store.Add(genKey, int64(0), gocache.NoExpiration)
		if _, err := c.store.IncrementInt64(genKey, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *localMatchCache) generation(key string) int64 {
	v, ok := c.store.Get(generationKey(key))
	if !ok {
		return 0
	}
	generation, _ := v.(int64)
	return generation
}

func (c *localMatchCache) lookup(key string) ([]*domain.MatchDetail, int64, bool) {
	generation := c.generation(key)
	v, ok := c.store.Get(entryKey(key, generation))
	if !ok {
		return nil, generation, false
	}
	matches, ok := v.([]*domain.MatchDetail)
	if !ok {
		return nil, generation, false
	}
	return cloneDetails(matches), generation, true
}

// cloneDetails copies the rows so callers cannot mutate cached entries.
func cloneDetails(matches []*domain.MatchDetail) []*domain.MatchDetail {
	out := make([]*domain.MatchDetail, 0, len(matches))
	for _, m := range matches {
		cp := *m
		out = append(out, &cp)
	}
	return out
}
