package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

// MemoryIndex keeps the latest front page of articles in process.
// It sits in front of Redis and lets listings survive a cache outage.
type MemoryIndex struct {
	mu         sync.RWMutex
	articles   []domain.Article // in upstream order
	lastReload time.Time        // Timestamp of last refresh
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// UpdateArticles replaces the snapshot
func (idx *MemoryIndex) UpdateArticles(articles []domain.Article) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.articles = make([]domain.Article, len(articles))
	copy(idx.articles, articles)
	idx.lastReload = time.Now()
}

// GetArticles returns a copy of the snapshot and when it was taken.
func (idx *MemoryIndex) GetArticles() ([]domain.Article, time.Time) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]domain.Article, len(idx.articles))
	copy(out, idx.articles)
	return out, idx.lastReload
}

// Fresh reports whether the snapshot is non-empty and younger than ttl.
func (idx *MemoryIndex) Fresh(ttl time.Duration) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.articles) > 0 && time.Since(idx.lastReload) < ttl
}

// Count returns the number of articles in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.articles)
}

// GetLastReload returns the timestamp of the last refresh
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
