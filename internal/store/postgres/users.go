package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// UpsertUserByEmail returns the user registered under email, creating it
// on first sign-in. Emails are stored lower-cased.
func (s *Storage) UpsertUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "storage.postgres.UpsertUserByEmail"

	query := `
		INSERT INTO users (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at
	`

	var u domain.User
	err := s.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&u.ID,
		&u.Email,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return &u, nil
}

// UserByID finds a user by id.
func (s *Storage) UserByID(ctx context.Context, id string) (*domain.User, error) {
	const op = "storage.postgres.UserByID"

	query := `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1
	`

	var u domain.User
	err := s.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStorageError(op, err)
	}

	return &u, nil
}
