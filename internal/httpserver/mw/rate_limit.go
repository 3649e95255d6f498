package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/respond"
	"github.com/MrSnakeDoc/devmarks/internal/utils"
)

var rateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "devmarks_rate_limited_total",
		Help: "Requests rejected by a rate limiter",
	},
	[]string{"limiter"},
)

// KeyFunc picks the bucket a request is charged to. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// ByClientIP charges requests to the client address.
func ByClientIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string { return utils.ClientIP(r, trustProxy) }
}

// ByUser charges requests to the signed-in user. It must run after RequireUser.
func ByUser(r *http.Request) string {
	if u := auth.UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

type RateLimitConfig struct {
	Name       string // metric label
	Burst      int
	PerMinute  int
	MaxEntries int           // sweep early once this many keys are tracked
	IdleTTL    time.Duration // forget keys idle this long
	Key        KeyFunc
	Now        func() time.Time
}

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu        sync.Mutex
	keys      map[string]*keyLimiter
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.PerMinute < 1 {
		cfg.PerMinute = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Key == nil {
		cfg.Key = ByClientIP(false)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		every:     rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		keys:      make(map[string]*keyLimiter),
		lastSweep: cfg.Now(),
	}
}

func (l *limiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= time.Minute || (l.cfg.MaxEntries > 0 && len(l.keys) >= l.cfg.MaxEntries) {
		for k, kl := range l.keys {
			if now.Sub(kl.lastSeen) > l.cfg.IdleTTL {
				delete(l.keys, k)
			}
		}
		l.lastSweep = now
	}

	kl, ok := l.keys[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(l.every, l.cfg.Burst)}
		l.keys[key] = kl
	}
	kl.lastSeen = now
	return kl.limiter
}

// take spends one token for key. It returns the whole tokens left, or
// how long until one is available when none is.
func (l *limiter) take(key string) (ok bool, left int, wait time.Duration) {
	now := l.cfg.Now()
	lim := l.get(key, now)

	r := lim.ReserveN(now, 1)
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, 0, d
	}
	return true, max(0, int(lim.TokensAt(now))), 0
}

// RateLimit applies a token bucket per key: Burst requests at once,
// refilled at PerMinute.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)
	rejected := rateLimitedTotal.WithLabelValues(l.cfg.Name)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.cfg.Key(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, left, wait := l.take(key)
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(left))
			if !ok {
				rejected.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
				respond.Status(w, r, http.StatusTooManyRequests, "rate_limited", "too many requests, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
