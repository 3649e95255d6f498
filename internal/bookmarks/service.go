// Package bookmarks implements per-user bookmark operations with
// ownership enforced on every call.
package bookmarks

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// Repository is the persistence backend for bookmarks.
type Repository interface {
	ListBookmarks(ctx context.Context, userID string) ([]domain.Bookmark, error)
	CreateBookmark(ctx context.Context, userID string, nb domain.NewBookmark) (*domain.Bookmark, error)
	FindBookmark(ctx context.Context, userID, articleID string) (*domain.Bookmark, error)
	DeleteBookmark(ctx context.Context, userID, articleID string) (bool, error)
	BookmarkedArticleIDs(ctx context.Context, userID string) ([]string, error)
}

// Service is the bookmark store. It never trusts a client-supplied owner.
type Service struct {
	repo   Repository
	logger logger.Logger
}

// NewService creates a bookmark service over repo.
func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// List returns the caller's bookmarks.
func (s *Service) List(ctx context.Context, user *domain.User) ([]domain.Bookmark, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	list, err := s.repo.ListBookmarks(ctx, user.ID)
	if err != nil {
		return nil, domain.NewStorageError("bookmarks.List", err)
	}
	return list, nil
}

// Create saves a bookmark owned by user. Nothing is written when the
// payload is invalid.
func (s *Service) Create(ctx context.Context, user *domain.User, payload domain.NewBookmark) (*domain.Bookmark, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.CreateBookmark(ctx, user.ID, payload.Normalize())
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		return nil, domain.NewStorageError("bookmarks.Create", err)
	}

	s.logger.Debug("bookmark created",
		logger.String("user_id", user.ID),
		logger.String("article_id", b.ArticleID))
	return b, nil
}

// Delete removes the caller's bookmark for articleID. A bookmark owned by
// someone else is indistinguishable from a missing one.
func (s *Service) Delete(ctx context.Context, user *domain.User, articleID string) error {
	if user == nil {
		return domain.ErrUnauthenticated
	}
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return domain.ErrNotFound
	}

	if _, err := s.repo.FindBookmark(ctx, user.ID, articleID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return domain.NewStorageError("bookmarks.Delete", err)
	}

	deleted, err := s.repo.DeleteBookmark(ctx, user.ID, articleID)
	if err != nil {
		return domain.NewStorageError("bookmarks.Delete", err)
	}
	if !deleted {
		// removed concurrently between the check and the delete
		return domain.ErrNotFound
	}

	s.logger.Debug("bookmark deleted",
		logger.String("user_id", user.ID),
		logger.String("article_id", articleID))
	return nil
}

// BookmarkedIDs returns the set of article ids the caller has bookmarked.
func (s *Service) BookmarkedIDs(ctx context.Context, user *domain.User) (map[string]struct{}, error) {
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	ids, err := s.repo.BookmarkedArticleIDs(ctx, user.ID)
	if err != nil {
		return nil, domain.NewStorageError("bookmarks.BookmarkedIDs", err)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
