package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/devmarks/internal/domain"
)

func newTestStore(t *testing.T) (*miniredis.Miniredis, *Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewStore(client)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "devmarks:session:abc", SessionKey("abc"))
	assert.Equal(t, "devmarks:magic:h", MagicLinkKey("h"))
	assert.Equal(t, "devmarks:articles:page:2:24", ArticlesKey(2, 24))
}

func TestSessionLifecycle(t *testing.T) {
	mr, st := newTestStore(t)
	ctx := context.Background()

	sess := &domain.Session{
		SID:       "sid-1",
		UserID:    "u1",
		Email:     "ada@example.com",
		IssuedAt:  time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
	}
	require.NoError(t, st.SaveSession(ctx, sess))
	assert.True(t, mr.Exists(SessionKey("sid-1")))
	assert.Greater(t, mr.TTL(SessionKey("sid-1")), 59*time.Minute)

	got, err := st.GetSession(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, sess.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, st.DeleteSession(ctx, "sid-1"))
	_, err = st.GetSession(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// deleting twice is fine
	require.NoError(t, st.DeleteSession(ctx, "sid-1"))
}

func TestSessionExpires(t *testing.T) {
	mr, st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveSession(ctx, &domain.Session{
		SID:       "sid-2",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(time.Minute),
	}))
	mr.FastForward(2 * time.Minute)

	_, err := st.GetSession(ctx, "sid-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveSessionRejectsExpired(t *testing.T) {
	_, st := newTestStore(t)
	err := st.SaveSession(context.Background(), &domain.Session{
		SID:       "old",
		ExpiresAt: time.Now().Add(-time.Second),
	})
	assert.Error(t, err)
}

func TestGetSessionBackendError(t *testing.T) {
	mr, st := newTestStore(t)
	mr.SetError("LOADING")

	_, err := st.GetSession(context.Background(), "sid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestMagicLinkSingleUse(t *testing.T) {
	mr, st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveMagicLink(ctx, "hash", "ada@example.com", 15*time.Minute))
	assert.Equal(t, 15*time.Minute, mr.TTL(MagicLinkKey("hash")))

	email, err := st.ConsumeMagicLink(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)

	_, err = st.ConsumeMagicLink(ctx, "hash")
	assert.ErrorIs(t, err, domain.ErrInvalidLink)
}

func TestMagicLinkExpires(t *testing.T) {
	mr, st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveMagicLink(ctx, "hash", "ada@example.com", time.Minute))
	mr.FastForward(time.Minute + time.Second)

	_, err := st.ConsumeMagicLink(ctx, "hash")
	assert.ErrorIs(t, err, domain.ErrInvalidLink)
}

func TestArticleCache(t *testing.T) {
	mr, st := newTestStore(t)
	ctx := context.Background()

	_, ok, err := st.GetCachedArticles(ctx, 1, 24)
	require.NoError(t, err)
	assert.False(t, ok)

	articles := []domain.Article{
		{ID: "1", Title: "One", URL: "https://dev.to/1", Tags: []string{"go"}},
		{ID: "2", Title: "Two", URL: "https://dev.to/2"},
	}
	require.NoError(t, st.CacheArticles(ctx, 1, 24, articles, time.Hour))
	require.NoError(t, st.CacheArticles(ctx, 2, 24, articles[:1], time.Hour))
	require.NoError(t, mr.Set("devmarks:session:keep", "x"))

	got, ok, err := st.GetCachedArticles(ctx, 1, 24)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, articles, got)

	require.NoError(t, st.FlushArticles(ctx))
	_, ok, err = st.GetCachedArticles(ctx, 2, 24)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("devmarks:session:keep"))
}

func TestPing(t *testing.T) {
	mr, st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))

	mr.Close()
	assert.Error(t, st.Ping(context.Background()))
}
