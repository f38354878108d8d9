package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/tracing"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
	redisrepo "github.com/utafrali/storefront/internal/repository/redis"
	"github.com/utafrali/storefront/internal/review"
	"github.com/utafrali/storefront/internal/session"
)

const evictionInterval = time.Minute

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *session.Manager
	httpServer     *http.Server
	shutdownTracer func(context.Context) error
	stopBackground context.CancelFunc
}

type storage struct {
	carts     repository.CartRepository
	wishlists repository.WishlistRepository
	reviews   repository.ReviewRepository
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	// Tracing.
	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracingCfg.SampleRate = cfg.OTELSampleRate
	tracingCfg.Enabled = cfg.OTELEnabled
	shutdownTracer, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	healthHandler := health.NewHandler()

	// Storage.
	store, err := a.openStorage(ctx, healthHandler)
	if err != nil {
		return nil, err
	}

	// Catalog.
	products, err := catalog.Load(ctx, a.catalogSource())
	if err != nil {
		a.closeClients()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.String("source", cfg.CatalogSource),
		slog.Int("products", products.Len()),
	)

	// Kafka producer, only when brokers are configured.
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	events := event.NewProducer(a.producer, logger)

	// Build the dependency graph.
	reviews := review.NewStore(store.reviews, logger, review.Options{
		SeedDemo:  cfg.ReviewSeedDemo,
		Publisher: events,
	})
	reviews.Load(ctx)

	a.sessions = session.NewManager(products, store.carts, store.wishlists, events, session.Config{
		SearchPath:  cfg.SearchPath,
		Debounce:    cfg.URLSyncDebounce(),
		IdleTimeout: session.DefaultIdleTimeout,
	}, logger)

	// Background work (rate limiter eviction, idle session eviction) lives
	// until Shutdown.
	bgCtx, stop := context.WithCancel(context.Background())
	a.stopBackground = stop

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(bgCtx, products, reviews, a.sessions, healthHandler, handler.RouterConfig{
		CORS: cors,
		ReviewLimit: middleware.RateLimitConfig{
			RPS:   cfg.ReviewSubmitRPS,
			Burst: cfg.ReviewSubmitBurst,
		},
	}, logger)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

func (a *App) openStorage(ctx context.Context, healthHandler *health.Handler) (storage, error) {
	if a.cfg.StorageBackend != config.StorageRedis {
		kv := memory.NewStore()
		a.logger.Info("using in-memory storage")
		return storage{
			carts:     memory.NewCartRepository(kv),
			wishlists: memory.NewWishlistRepository(kv),
			reviews:   memory.NewReviewRepository(kv),
		}, nil
	}

	redisCfg := database.DefaultRedisConfig()
	redisCfg.Addr = a.cfg.RedisAddr
	redisCfg.Password = a.cfg.RedisPass
	redisCfg.DB = a.cfg.RedisDB

	rdb, err := database.NewRedisClient(ctx, redisCfg)
	if err != nil {
		return storage{}, fmt.Errorf("connect to redis: %w", err)
	}
	a.rdb = rdb
	healthHandler.Register("redis", database.RedisChecker(rdb))
	a.logger.Info("connected to Redis",
		slog.String("addr", a.cfg.RedisAddr),
		slog.Int("db", a.cfg.RedisDB),
	)

	ttl := a.cfg.SessionTTLDuration()
	return storage{
		carts:     redisrepo.NewCartRepository(rdb, ttl),
		wishlists: redisrepo.NewWishlistRepository(rdb, ttl),
		reviews:   redisrepo.NewReviewRepository(rdb),
	}, nil
}

func (a *App) catalogSource() catalog.Source {
	switch a.cfg.CatalogSource {
	case config.CatalogFile:
		return catalog.FileSource{Path: a.cfg.CatalogFile}
	case config.CatalogRemote:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("catalog"),
			a.logger,
		)
		return catalog.RemoteSource{Client: client, URL: a.cfg.CatalogURL}
	default:
		return catalog.EmbeddedSource{}
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go a.sessions.Run(ctx, evictionInterval)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. Pending session state is saved
// before the storage clients are closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("http server: %w", err))
	}
	a.stopBackground()

	if err := a.sessions.Close(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("save sessions: %w", err))
	}
	if err := a.shutdownTracer(shutdownCtx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("tracer: %w", err))
	}
	errs = multierr.Append(errs, a.closeClients())

	if errs != nil {
		a.logger.Error("application shutdown finished with errors", slog.String("error", errs.Error()))
		return errs
	}
	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeClients() error {
	var errs error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("kafka producer: %w", err))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errs
}
