package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/devmarks/internal/articles"
	"github.com/MrSnakeDoc/devmarks/internal/auth"
	"github.com/MrSnakeDoc/devmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/devmarks/internal/config"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver"
	"github.com/MrSnakeDoc/devmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/devmarks/internal/index"
	"github.com/MrSnakeDoc/devmarks/internal/logger"
	"github.com/MrSnakeDoc/devmarks/internal/redis"
	"github.com/MrSnakeDoc/devmarks/internal/retry"
	"github.com/MrSnakeDoc/devmarks/internal/scheduler"
	"github.com/MrSnakeDoc/devmarks/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/devmarks/internal/store/redis"
	"github.com/MrSnakeDoc/devmarks/internal/utils"
	"github.com/MrSnakeDoc/devmarks/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	pg          *postgres.Storage
	redisClient *goredis.Client
	refresher   *scheduler.ArticleRefresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	ctx := context.Background()

	// Both backends are required - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	loggerClient.Info("Connecting to Postgres")
	pg, err := postgres.New(ctx, postgres.ConnectOptions{
		URL:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		Retry: retry.Options{
			ConnectTimeout: cfg.DBConnectTimeout,
			RetryInterval:  cfg.DBRetryInterval,
			MaxWait:        cfg.DBMaxWait,
			PingTimeout:    cfg.DBPingTimeout,
			WarnThreshold:  cfg.DBWarnThreshold,
		},
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Postgres: %v", err)
		utils.CloseLogged("redis", redisClient, loggerClient)
		os.Exit(1)
	}
	if cfg.DBAutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			loggerClient.Errorf("Failed to apply schema: %v", err)
			pg.Close()
			utils.CloseLogged("redis", redisClient, loggerClient)
			os.Exit(1)
		}
		loggerClient.Info("Postgres schema up to date")
	}
	loggerClient.Info("Postgres initialized successfully")

	store := redisstore.NewStore(redisClient)

	// Auth
	sessions := auth.NewSessions(store, auth.NewTokens(cfg.SessionSecret), cfg.SessionTTL)
	var mailer auth.Mailer
	if cfg.SMTPHost != "" {
		mailer = auth.NewSMTPMailer(auth.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		loggerClient.Warn("SMTP not configured, magic links will only be logged")
		mailer = auth.NewLogMailer(loggerClient)
	}
	magicLinks := auth.NewMagicLinks(store, pg, sessions, mailer, cfg.AppURL, cfg.MagicLinkTTL, loggerClient)

	// Articles: dev.to API first, RSS feed when the API is down
	memIndex := index.NewMemoryIndex()
	articleService := articles.NewService(
		articles.NewClient(cfg.ArticlesBaseURL, cfg.ArticlesTimeout),
		articles.NewFeedClient(cfg.ArticlesBaseURL, cfg.ArticlesTimeout),
		store,
		memIndex,
		articles.Options{PerPage: cfg.ArticlesPerPage, TTL: cfg.ArticlesCacheTTL},
		loggerClient,
	)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	refresher := scheduler.NewArticleRefresher(
		articleService,
		loggerClient,
		cfg.ArticleRefreshInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:              loggerClient,
		StartTime:           time.Now(),
		Build:               version.Get(),
		TimeNow:             time.Now,
		AppURL:              cfg.AppURL,
		AllowedHosts:        cfg.AllowedHosts,
		AllowedCIDRS:        cfg.AllowedCIDRS,
		TrustProxy:          cfg.TrustProxy,
		Guard:               auth.NewGuard(sessions, cfg.SessionCookieName),
		Sessions:            sessions,
		MagicLinks:          magicLinks,
		Users:               pg,
		SessionCookieSecure: cfg.SessionCookieSecure,
		MagicLinkBurst:      cfg.MagicLinkBurst,
		MagicLinkPerMin:     cfg.MagicLinkPerMin,
		Bookmarks:           bookmarks.NewService(pg, loggerClient),
		BookmarkWriteBurst:  cfg.BookmarkWriteBurst,
		BookmarkWritePerMin: cfg.BookmarkWritePerMin,
		Articles:            articleService,
		MemoryIndex:         memIndex,
		PerPage:             cfg.ArticlesPerPage,
		ArticlesBurst:       cfg.ArticlesBurst,
		ArticlesPerMin:      cfg.ArticlesPerMin,
		Postgres:            pg,
		Redis:               store,
		ReloadTrigger:       reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		pg:          pg,
		redisClient: redisClient,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	build := version.Get()
	a.logger.Infof("🚀 Starting devmarks v%s on %s", build.Version, a.cfg.ListenPort)
	a.logger.Infof("devmarks %s (commit=%s, built=%s, go=%s)",
		build.Version, build.Commit, build.BuildDate, build.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the article front page and start periodic refresh
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start article refresher: %w", err)
	}
	a.logger.Info("article refresher started",
		logger.Duration("interval", a.cfg.ArticleRefreshInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.closeBackends()
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		a.closeBackends()
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeBackends()
	a.logger.Info("✅ devmarks stopped cleanly")
	return nil
}

func (a *App) closeBackends() {
	if a.pg != nil {
		a.pg.Close()
		a.logger.Info("✅ Postgres closed cleanly")
	}
	if a.redisClient != nil {
		utils.CloseLogged("redis", a.redisClient, a.logger)
	}
}
