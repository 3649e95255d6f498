package articles

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/index"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

const (
	maxPerPage = 1000
	maxPage    = 100
)

// Cache is the shared article page cache.
type Cache interface {
	GetCachedArticles(ctx context.Context, page, perPage int) ([]domain.Article, bool, error)
	CacheArticles(ctx context.Context, page, perPage int, articles []domain.Article, ttl time.Duration) error
}

// Options configures the article service.
type Options struct {
	PerPage int           // default page size
	TTL     time.Duration // cache lifetime
}

// Service lists articles through the memory snapshot, then Redis, then
// upstream. It never fails: an unreachable upstream yields an empty page.
type Service struct {
	upstream Source
	fallback Source // optional, used when upstream fails
	cache    Cache  // optional
	index    *index.MemoryIndex
	opts     Options
	logger   logger.Logger
}

// NewService creates an article service.
func NewService(upstream, fallback Source, cache Cache, idx *index.MemoryIndex, opts Options, log logger.Logger) *Service {
	if opts.PerPage <= 0 {
		opts.PerPage = 24
	}
	return &Service{
		upstream: upstream,
		fallback: fallback,
		cache:    cache,
		index:    idx,
		opts:     opts,
		logger:   log,
	}
}

// List returns one page. page < 1 means the first page; perPage < 1 means
// the default size.
func (s *Service) List(ctx context.Context, page, perPage int) []domain.Article {
	page, perPage = s.normalize(page, perPage)

	if s.isFrontPage(page, perPage) && s.index.Fresh(s.opts.TTL) {
		articles, _ := s.index.GetArticles()
		return articles
	}

	if s.cache != nil {
		articles, ok, err := s.cache.GetCachedArticles(ctx, page, perPage)
		if err != nil {
			s.logger.Warn("article cache read failed", logger.Error(err))
		} else if ok {
			return articles
		}
	}

	articles, fromFeed, err := s.fetch(ctx, page, perPage)
	if err != nil {
		s.logger.Error("failed to fetch articles",
			logger.Int("page", page),
			logger.Int("per_page", perPage),
			logger.Error(err))
		return []domain.Article{}
	}

	// feed results only stand in for the current request
	if !fromFeed {
		s.remember(ctx, page, perPage, articles)
	}
	return articles
}

// Refresh reloads the front page into both caches. It fails while the
// API is down, even when the feed could answer.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	articles, err := s.upstream.List(ctx, 1, s.opts.PerPage)
	if err != nil {
		return 0, err
	}
	s.remember(ctx, 1, s.opts.PerPage, articles)
	return len(articles), nil
}

// fetch asks the API, then the feed. fromFeed reports that the feed answered.
func (s *Service) fetch(ctx context.Context, page, perPage int) (articles []domain.Article, fromFeed bool, err error) {
	articles, err = s.upstream.List(ctx, page, perPage)
	if err == nil || s.fallback == nil {
		return articles, false, err
	}

	s.logger.Warn("article API unavailable, using feed fallback", logger.Error(err))
	articles, ferr := s.fallback.List(ctx, page, perPage)
	if ferr != nil {
		return nil, false, err
	}
	return articles, true, nil
}

func (s *Service) remember(ctx context.Context, page, perPage int, articles []domain.Article) {
	if s.isFrontPage(page, perPage) {
		s.index.UpdateArticles(articles)
	}
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheArticles(ctx, page, perPage, articles, s.opts.TTL); err != nil {
		s.logger.Warn("failed to cache articles", logger.Error(err))
	}
}

func (s *Service) normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if perPage < 1 {
		perPage = s.opts.PerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func (s *Service) isFrontPage(page, perPage int) bool {
	return page == 1 && perPage == s.opts.PerPage
}
