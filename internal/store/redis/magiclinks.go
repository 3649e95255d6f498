package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// SaveMagicLink records a pending login for email under the hashed token.
func (s *Store) SaveMagicLink(ctx context.Context, tokenHash, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, MagicLinkKey(tokenHash), email, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save magic link: %w", err)
	}
	return nil
}

// ConsumeMagicLink atomically reads and deletes a pending login.
// A second call with the same hash yields domain.ErrInvalidLink.
func (s *Store) ConsumeMagicLink(ctx context.Context, tokenHash string) (string, error) {
	email, err := s.client.GetDel(ctx, MagicLinkKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrInvalidLink
		}
		return "", fmt.Errorf("failed to consume magic link: %w", err)
	}
	return email, nil
}
