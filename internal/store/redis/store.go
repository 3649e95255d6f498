// Package redis stores short-lived state: sessions, magic-link tokens
// and cached article pages.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for sessions, links and caches
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
