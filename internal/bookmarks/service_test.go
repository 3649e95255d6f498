package bookmarks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

var (
	u1 = &domain.User{ID: "u1", Email: "one@example.com"}
	u2 = &domain.User{ID: "u2", Email: "two@example.com"}
)

func validPayload(articleID string) domain.NewBookmark {
	return domain.NewBookmark{
		ArticleID:    articleID,
		ArticleTitle: "Understanding Go channels",
		ArticleURL:   "https://dev.to/x/" + articleID,
	}
}

func newService() (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo, logger.Nop()), repo
}

// brokenRepo fails every call with a backend error.
type brokenRepo struct{ err error }

func (b brokenRepo) ListBookmarks(context.Context, string) ([]domain.Bookmark, error) {
	return nil, b.err
}
func (b brokenRepo) CreateBookmark(context.Context, string, domain.NewBookmark) (*domain.Bookmark, error) {
	return nil, b.err
}
func (b brokenRepo) FindBookmark(context.Context, string, string) (*domain.Bookmark, error) {
	return nil, b.err
}
func (b brokenRepo) DeleteBookmark(context.Context, string, string) (bool, error) {
	return false, b.err
}
func (b brokenRepo) BookmarkedArticleIDs(context.Context, string) ([]string, error) {
	return nil, b.err
}

// racingRepo reports the bookmark as present, then finds nothing to delete.
type racingRepo struct{ *MemoryRepository }

func (r racingRepo) DeleteBookmark(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestUnauthenticatedCallsTouchNothing(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	_, err := svc.List(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Create(ctx, nil, validPayload("42"))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	err = svc.Delete(ctx, nil, "42")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.BookmarkedIDs(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Zero(t, repo.Count())
}

func TestCreate_ForcesOwner(t *testing.T) {
	svc, _ := newService()

	b, err := svc.Create(context.Background(), u1, validPayload("42"))
	require.NoError(t, err)
	assert.Equal(t, "u1", b.UserID)
	assert.NotEmpty(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestCreate_InvalidPayloadWritesNothing(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	cases := map[string]domain.NewBookmark{
		"missing id":       {ArticleTitle: "t", ArticleURL: "u"},
		"blank title":      {ArticleID: "1", ArticleTitle: "   ", ArticleURL: "u"},
		"missing url":      {ArticleID: "1", ArticleTitle: "t"},
		"whitespace id":    {ArticleID: "\t", ArticleTitle: "t", ArticleURL: "u"},
		"everything empty": {},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, u1, payload)
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		})
	}
	assert.Zero(t, repo.Count())
}

func TestCreate_Duplicate(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, u1, validPayload("42"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, u1, validPayload("42"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.Count())

	// another user may bookmark the same article
	_, err = svc.Create(ctx, u2, validPayload("42"))
	require.NoError(t, err)
}

func TestCreate_TrimsPayload(t *testing.T) {
	svc, _ := newService()
	empty := "  "

	b, err := svc.Create(context.Background(), u1, domain.NewBookmark{
		ArticleID:       " 42 ",
		ArticleTitle:    " Title ",
		ArticleURL:      " https://dev.to/a ",
		ArticleImageURL: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", b.ArticleID)
	assert.Equal(t, "Title", b.ArticleTitle)
	assert.Nil(t, b.ArticleImageURL)
}

func TestList_OnlyOwnBookmarks(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, u1, validPayload("1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, u2, validPayload("2"))
	require.NoError(t, err)

	list, err := svc.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0].ArticleID)
	for _, b := range list {
		assert.Equal(t, "u1", b.UserID)
	}
}

func TestDelete_Ownership(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, u1, validPayload("42"))
	require.NoError(t, err)

	// someone else's bookmark looks missing
	assert.ErrorIs(t, svc.Delete(ctx, u2, "42"), domain.ErrNotFound)

	list, err := svc.List(ctx, u1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, u1, "42"))
	assert.ErrorIs(t, svc.Delete(ctx, u1, "42"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, u1, "  "), domain.ErrNotFound)
}

func TestDelete_LostRace(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(racingRepo{repo}, logger.Nop())
	ctx := context.Background()

	_, err := repo.CreateBookmark(ctx, "u1", validPayload("42"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, u1, "42"), domain.ErrNotFound)
}

func TestStorageFailures(t *testing.T) {
	svc := NewService(brokenRepo{err: errors.New("connection reset by peer")}, logger.Nop())
	ctx := context.Background()

	_, err := svc.List(ctx, u1)
	assert.True(t, domain.IsStorageError(err))
	assert.Equal(t, "connection reset by peer", err.Error())

	_, err = svc.Create(ctx, u1, validPayload("1"))
	assert.True(t, domain.IsStorageError(err))

	err = svc.Delete(ctx, u1, "1")
	assert.True(t, domain.IsStorageError(err))

	_, err = svc.BookmarkedIDs(ctx, u1)
	assert.True(t, domain.IsStorageError(err))
}

func TestBookmarkedIDs(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	for _, id := range []string{"1", "2"} {
		_, err := svc.Create(ctx, u1, validPayload(id))
		require.NoError(t, err)
	}

	set, err := svc.BookmarkedIDs(ctx, u1)
	require.NoError(t, err)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "1")

	set, err = svc.BookmarkedIDs(ctx, u2)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestScenario(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, u1, validPayload("42"))
	require.NoError(t, err)

	list, err := svc.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	assert.ErrorIs(t, svc.Delete(ctx, u2, "42"), domain.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, u1, "42"))

	list, err = svc.List(ctx, u1)
	require.NoError(t, err)
	assert.Empty(t, list)
}
