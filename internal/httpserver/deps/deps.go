package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/devmarks/internal/articles"
	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/devmarks/internal/domain"
	"github.com/MrSnakeDoc/devmarks/internal/index"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
	"github.com/MrSnakeDoc/devmarks/internal/version"
)

// Pinger is a backing service that can be health-checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UserLookup loads stored accounts.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (*domain.User, error)
}

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Build     version.Info
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AppURL       string   // public base URL for redirects
	AllowedHosts []string // Host headers allowed to reach admin endpoints
	AllowedCIDRS []string // IPs allowed to reach readyz/infra/reload/metrics
	TrustProxy   bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Guard               *auth.Guard
	Sessions            *auth.Sessions
	MagicLinks          *auth.MagicLinks
	Users               UserLookup
	SessionCookieSecure bool
	MagicLinkBurst      int // link requests per client before limiting
	MagicLinkPerMin     int // refill rate for link requests

	Bookmarks           *bookmarks.Service
	BookmarkWriteBurst  int // bookmark creates/deletes per user before limiting
	BookmarkWritePerMin int // refill rate for bookmark writes
	Articles            *articles.Service
	MemoryIndex         *index.MemoryIndex // article front page snapshot
	PerPage             int                // default article page size
	ArticlesBurst       int                // listing requests per client before limiting
	ArticlesPerMin      int                // refill rate for listing requests

	Postgres Pinger
	Redis    Pinger

	ReloadTrigger chan struct{} // Channel to trigger a manual article refresh
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
