// Package app wires the configuration, the store and the services into a
// running shelf server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/shelf/internal/bookmark"
	"github.com/MrSnakeDoc/shelf/internal/collection"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/extract"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/index"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/page"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/sources/taxonomy"
	"github.com/MrSnakeDoc/shelf/internal/store"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/thumbnail"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// maxBodySlack covers the JSON envelope around a captured page.
const maxBodySlack = 64 << 10

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	metrics     *metrics.Metrics
	collection  *collection.Collection
	memIndex    *index.MemoryIndex
	bookmarks   *bookmark.Service
	syncer      *scheduler.Syncer
	homepage    *scheduler.HomepageImporter
}

// New builds every component. With the redis store it blocks until Redis
// answers or the connect timeout runs out.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	tax, err := taxonomy.LoadOrDefault(cfg.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	loggerClient.Info("taxonomy loaded",
		logger.String("file", cfg.TaxonomyFile),
		logger.Int("topics", len(tax)))

	kv, redisClient, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	col := collection.New(kv, cfg.CollectionKey, m)
	memIndex := index.NewMemoryIndex()

	svc := bookmark.NewService(bookmark.Options{
		Loader:     page.NewFetcher(cfg.PageTimeout, cfg.PageMaxBytes),
		Dispatcher: extract.NewDispatcher(loggerClient, m),
		Assembler: bookmark.NewAssembler(tax, thumbnail.New(
			cfg.ThumbnailTimeout,
			cfg.ThumbnailMaxBytes,
			thumbnail.DefaultBreakerConfig(),
			loggerClient,
			m,
		)),
		Collection: col,
		Index:      memIndex,
		Taxonomy:   tax,
		RetryDelay: cfg.ExtractRetryDelay,
		Log:        loggerClient,
		Metrics:    m,
	})

	syncer := scheduler.NewSyncer(col, memIndex, m, loggerClient, cfg.SyncInterval)

	var homepage *scheduler.HomepageImporter
	if cfg.HomepageFile != "" {
		loggerClient.Info("homepage file configured, initializing importer",
			logger.String("file", cfg.HomepageFile))
		homepage = scheduler.NewHomepageImporter(cfg.HomepageFile, svc, loggerClient, cfg.HomepageInterval)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RateBurst:      cfg.RateBurst,
		RatePerMin:     cfg.RatePerMin,
		MaxBodyBytes:   cfg.PageMaxBytes + maxBodySlack,
		StoreMode:      cfg.Store,
		Bookmarks:      svc,
		Collection:     col,
		MemoryIndex:    memIndex,
		Metrics:        m,
		Syncer:         syncer,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		metrics:     m,
		collection:  col,
		memIndex:    memIndex,
		bookmarks:   svc,
		syncer:      syncer,
		homepage:    homepage,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (store.KV, *goredis.Client, error) {
	if cfg.Store == config.StoreMemory {
		loggerClient.Warn("using the in-memory store, bookmarks are lost on exit")
		return store.NewMemory(), nil, nil
	}

	redisClient, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		Username:       cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
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
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisstore.NewStore(redisClient), redisClient, nil
}

// Bookmarks exposes the bookmark service for one-shot commands.
func (a *App) Bookmarks() *bookmark.Service { return a.bookmarks }

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting shelf v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the replica and keep it in step with the collection
	a.syncer.Start(ctx)
	a.logger.Info("replica syncer started",
		logger.Int("records", a.memIndex.Count()),
		logger.Duration("interval", a.cfg.SyncInterval))

	if a.homepage != nil {
		a.homepage.Start(ctx)
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.HomepageInterval))
	}

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
		a.stopJobs()
		a.Close()
		return err
	}

	a.stopJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	a.logger.Info("✅ shelf stopped cleanly")
	return nil
}

func (a *App) stopJobs() {
	a.syncer.Stop()
	if a.homepage != nil {
		a.homepage.Stop()
	}
}

// Close releases the store connection.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	if err := a.redisClient.Close(); err != nil {
		a.logger.Warnf("failed to close redis: %v", err)
		return
	}
	a.logger.Info("✅ Redis closed cleanly")
}
