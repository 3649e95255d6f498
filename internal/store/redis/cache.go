package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// CacheArticles stores one upstream article page for ttl.
func (s *Store) CacheArticles(ctx context.Context, page, perPage int, articles []domain.Article, ttl time.Duration) error {
	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}
	if err := s.client.Set(ctx, ArticlesKey(page, perPage), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache articles: %w", err)
	}
	return nil
}

// GetCachedArticles returns a cached page. ok is false on a cache miss.
func (s *Store) GetCachedArticles(ctx context.Context, page, perPage int) ([]domain.Article, bool, error) {
	data, err := s.client.Get(ctx, ArticlesKey(page, perPage)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached articles: %w", err)
	}

	var articles []domain.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal articles: %w", err)
	}
	return articles, true, nil
}

// FlushArticles removes every cached article page
func (s *Store) FlushArticles(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixArticles+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
