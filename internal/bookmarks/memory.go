package bookmarks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// MemoryRepository is an in-process Repository with the same uniqueness
// rule as the database. Used in tests.
type MemoryRepository struct {
	mu        sync.Mutex
	bookmarks map[string]map[string]domain.Bookmark // user -> article -> bookmark
	now       func() time.Time
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bookmarks: make(map[string]map[string]domain.Bookmark),
		now:       time.Now,
	}
}

func (m *MemoryRepository) ListBookmarks(_ context.Context, userID string) ([]domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Bookmark, 0, len(m.bookmarks[userID]))
	for _, b := range m.bookmarks[userID] {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateBookmark(_ context.Context, userID string, nb domain.NewBookmark) (*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byArticle := m.bookmarks[userID]
	if byArticle == nil {
		byArticle = make(map[string]domain.Bookmark)
		m.bookmarks[userID] = byArticle
	}
	if _, exists := byArticle[nb.ArticleID]; exists {
		return nil, domain.ErrConflict
	}

	b := domain.Bookmark{
		ID:              uuid.NewString(),
		UserID:          userID,
		ArticleID:       nb.ArticleID,
		ArticleTitle:    nb.ArticleTitle,
		ArticleURL:      nb.ArticleURL,
		ArticleImageURL: nb.ArticleImageURL,
		CreatedAt:       m.now().UTC(),
	}
	byArticle[nb.ArticleID] = b
	return &b, nil
}

func (m *MemoryRepository) FindBookmark(_ context.Context, userID, articleID string) (*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookmarks[userID][articleID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *MemoryRepository) DeleteBookmark(_ context.Context, userID, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookmarks[userID][articleID]; !ok {
		return false, nil
	}
	delete(m.bookmarks[userID], articleID)
	return true, nil
}

func (m *MemoryRepository) BookmarkedArticleIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.bookmarks[userID]))
	for id := range m.bookmarks[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

// Count returns the total number of stored bookmarks.
func (m *MemoryRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, byArticle := range m.bookmarks {
		n += len(byArticle)
	}
	return n
}
