package articles

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/index"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
	redisstore "github.com/MrSnakeDoc/devmarks/internal/store/redis"
)

const devtoPage = `[
  {
    "id": 1842,
    "title": "Go generics in practice",
    "description": "A short tour",
    "url": "https://dev.to/ada/go-generics-1842",
    "cover_image": null,
    "social_image": "https://dev.to/social/1842.png",
    "published_at": "2024-05-01T10:00:00Z",
    "tag_list": ["go", "generics"],
    "user": {"name": "Ada", "username": "ada"}
  },
  {
    "id": 7,
    "title": "Second",
    "url": "https://dev.to/bob/second-7",
    "cover_image": "https://dev.to/cover/7.png",
    "tag_list": "rust, wasm",
    "user": {"name": "", "username": "bob"}
  }
]`

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>DEV Community</title>
    <link>https://dev.to</link>
    <item>
      <title>From the feed</title>
      <link>https://dev.to/carol/from-the-feed</link>
      <guid>https://dev.to/carol/from-the-feed</guid>
      <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
      <category>go</category>
      <pubDate>Wed, 01 May 2024 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Another</title>
      <link>https://dev.to/dave/another</link>
    </item>
  </channel>
</rss>`

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
	fail  atomic.Bool
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/articles":
			u.calls.Add(1)
			if u.fail.Load() {
				http.Error(w, "upstream sad", http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(devtoPage))
		case "/feed":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(rssFeed))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func TestClient_List(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(devtoPage))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, time.Second).List(context.Background(), 2, 24)
	require.NoError(t, err)
	assert.Equal(t, "page=2&per_page=24", gotQuery)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "1842", first.ID)
	assert.Equal(t, "https://dev.to/social/1842.png", first.ImageURL)
	assert.Equal(t, "Ada", first.Author)
	assert.Equal(t, []string{"go", "generics"}, first.Tags)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2024, first.PublishedAt.Year())

	second := got[1]
	assert.Equal(t, "https://dev.to/cover/7.png", second.ImageURL)
	assert.Equal(t, "bob", second.Author)
	assert.Equal(t, []string{"rust", "wasm"}, second.Tags)
	assert.Nil(t, second.PublishedAt)
}

func TestClient_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).List(context.Background(), 1, 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFeedClient_List(t *testing.T) {
	up := newUpstream(t)
	fc := NewFeedClient(up.srv.URL, time.Second)

	got, err := fc.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "From the feed", got[0].Title)
	assert.Equal(t, "Hello world", got[0].Description)
	assert.Equal(t, []string{"go"}, got[0].Tags)
	assert.Regexp(t, `^rss-[0-9a-f]{16}$`, got[0].ID)

	again, err := fc.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, got[0].ID, again[0].ID)

	later, err := fc.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Empty(t, later)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "Tom &amp; Jerry&#39;s &lt;3", "Tom & Jerry's <3"},
		{"script dropped", "before<script>alert(1)</script> after", "before after"},
		{"whitespace collapsed", "  a\n\n  b\t", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plainText(tt.in); got != tt.want {
				t.Errorf("plainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func newCache(t *testing.T) (*miniredis.Miniredis, *redisstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisstore.NewStore(client)
}

func TestService_CachesFrontPage(t *testing.T) {
	up := newUpstream(t)
	_, cache := newCache(t)
	idx := index.NewMemoryIndex()
	svc := NewService(NewClient(up.srv.URL, time.Second), nil, cache, idx,
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())
	ctx := context.Background()

	first := svc.List(ctx, 0, 0)
	require.Len(t, first, 2)
	assert.Equal(t, 2, idx.Count())

	second := svc.List(ctx, 1, 24)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), up.calls.Load())

	cached, ok, err := cache.GetCachedArticles(ctx, 1, 24)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, cached, 2)
}

func TestService_OtherPagesUseRedis(t *testing.T) {
	up := newUpstream(t)
	_, cache := newCache(t)
	idx := index.NewMemoryIndex()
	svc := NewService(NewClient(up.srv.URL, time.Second), nil, cache, idx,
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())
	ctx := context.Background()

	svc.List(ctx, 2, 10)
	svc.List(ctx, 2, 10)
	assert.Equal(t, int32(1), up.calls.Load())
	assert.Zero(t, idx.Count(), "only the default front page is kept in memory")
}

func TestService_UpstreamFailureYieldsEmpty(t *testing.T) {
	up := newUpstream(t)
	up.fail.Store(true)
	svc := NewService(NewClient(up.srv.URL, time.Second), nil, nil, index.NewMemoryIndex(),
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())

	got := svc.List(context.Background(), 1, 24)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_FallsBackToFeed(t *testing.T) {
	up := newUpstream(t)
	up.fail.Store(true)
	svc := NewService(NewClient(up.srv.URL, time.Second), NewFeedClient(up.srv.URL, time.Second), nil,
		index.NewMemoryIndex(), Options{PerPage: 24, TTL: time.Hour}, logger.Nop())

	got := svc.List(context.Background(), 1, 24)
	require.Len(t, got, 2)
	assert.Equal(t, "From the feed", got[0].Title)
}

func TestService_CacheOutageIsNotFatal(t *testing.T) {
	up := newUpstream(t)
	mr, cache := newCache(t)
	mr.SetError("LOADING")
	svc := NewService(NewClient(up.srv.URL, time.Second), nil, cache, index.NewMemoryIndex(),
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())

	got := svc.List(context.Background(), 3, 5)
	assert.Len(t, got, 2)
}

type stubSource struct {
	articles []domain.Article
	err      error
}

func (s stubSource) List(context.Context, int, int) ([]domain.Article, error) {
	return s.articles, s.err
}

func TestService_Refresh(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewService(stubSource{articles: []domain.Article{{ID: "1"}}}, nil, nil, idx,
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())

	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, idx.Fresh(time.Hour))

	failing := NewService(stubSource{err: errors.New("down")}, nil, nil, index.NewMemoryIndex(),
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())
	_, err = failing.Refresh(context.Background())
	assert.Error(t, err)
}

func TestService_FeedResultsAreNotCached(t *testing.T) {
	up := newUpstream(t)
	_, cache := newCache(t)
	idx := index.NewMemoryIndex()
	svc := NewService(NewClient(up.srv.URL, time.Second), NewFeedClient(up.srv.URL, time.Second), cache, idx,
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())
	ctx := context.Background()

	up.fail.Store(true)
	assert.Empty(t, svc.List(ctx, 2, 24))
	front := svc.List(ctx, 1, 24)
	require.Len(t, front, 2)
	assert.Equal(t, "From the feed", front[0].Title)
	assert.Zero(t, idx.Count())

	_, ok, err := cache.GetCachedArticles(ctx, 2, 24)
	require.NoError(t, err)
	assert.False(t, ok)

	up.fail.Store(false)
	assert.Len(t, svc.List(ctx, 2, 24), 2)
	assert.Equal(t, "Go generics in practice", svc.List(ctx, 1, 24)[0].Title)
	assert.Equal(t, int32(4), up.calls.Load())
}

func TestService_RefreshIgnoresFeed(t *testing.T) {
	idx := index.NewMemoryIndex()
	svc := NewService(stubSource{err: errors.New("down")}, stubSource{articles: []domain.Article{{ID: "rss-1"}}}, nil, idx,
		Options{PerPage: 24, TTL: time.Hour}, logger.Nop())

	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
	assert.Zero(t, idx.Count())
}

func TestService_Normalize(t *testing.T) {
	svc := NewService(stubSource{}, nil, nil, index.NewMemoryIndex(), Options{}, logger.Nop())

	tests := []struct {
		name                string
		page, perPage       int
		wantPage, wantPerPg int
	}{
		{"defaults", -3, 0, 1, 24},
		{"kept", 4, 10, 4, 10},
		{"per page capped", 1, 5000, 1, maxPerPage},
		{"page capped", 1_000_000, 10, maxPage, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := svc.normalize(tt.page, tt.perPage)
			if page != tt.wantPage || perPage != tt.wantPerPg {
				t.Errorf("normalize(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, page, perPage, tt.wantPage, tt.wantPerPg)
			}
		})
	}
}
