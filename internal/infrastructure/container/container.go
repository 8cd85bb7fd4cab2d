package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/config"
	httpdelivery "github.com/thalesfercaetano/Pets-API/internal/delivery/http"
	"github.com/thalesfercaetano/Pets-API/internal/delivery/http/handler"
	"github.com/thalesfercaetano/Pets-API/internal/delivery/http/middleware"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/database"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/metrics"
	"github.com/thalesfercaetano/Pets-API/internal/infrastructure/server"
	"github.com/thalesfercaetano/Pets-API/internal/repository"
	"github.com/thalesfercaetano/Pets-API/internal/repository/cache"
	"github.com/thalesfercaetano/Pets-API/internal/repository/postgres"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/auth"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/discovery"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/match"
	"github.com/thalesfercaetano/Pets-API/internal/usecase/swipe"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *sqlx.DB
	Redis        *redis.Client
	Server       *server.Server
	swipeLimiter *middleware.RateLimiter
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	// Initialize database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(cfg.Database.GetURL(), logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
	}

	// Initialize match listing cache
	var matchCache repository.MatchCache
	if cfg.Redis.Enabled() {
		redisClient, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.Redis = redisClient
		matchCache = cache.NewRedisMatchCache(redisClient, cfg.Matching.CacheTTL)
		logger.Info("match cache backed by redis", zap.String("addr", cfg.Redis.GetAddr()))
	} else {
		matchCache = cache.NewLocalMatchCache(cfg.Matching.CacheTTL)
		logger.Info("match cache kept in process memory")
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Initialize repositories
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepository(db)
	petRepo := postgres.NewPetRepository(db)
	swipeRepo := postgres.NewSwipeRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	discoveryRepo := postgres.NewDiscoveryRepository(db)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.TokenTTL(),
		logger.Named("auth"),
	)

	discoveryUseCase := discovery.NewDiscoveryUseCase(
		discoveryRepo,
		petRepo,
		logger.Named("discovery"),
		cfg.Matching.DefaultLimit,
		cfg.Matching.MaxLimit,
	)

	swipeUseCase := swipe.NewSwipeUseCase(
		txManager,
		swipeRepo,
		matchRepo,
		petRepo,
		matchCache,
		collector,
		logger.Named("swipe"),
	)

	matchUseCase := match.NewMatchUseCase(
		matchRepo,
		matchCache,
		collector,
		logger.Named("match"),
	)

	// Initialize handlers
	if err := handler.RegisterValidators(); err != nil {
		c.closeStores()
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	authHandler := handler.NewAuthHandler(authUseCase)
	discoveryHandler := handler.NewDiscoveryHandler(discoveryUseCase)
	swipeHandler := handler.NewSwipeHandler(swipeUseCase)
	matchHandler := handler.NewMatchHandler(matchUseCase)
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return database.CheckConnection(ctx, db)
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUseCase)
	c.swipeLimiter = middleware.NewRateLimiter(
		middleware.PerMinute(cfg.RateLimit.SwipesPerMinute),
		logger.Named("ratelimit"),
	)

	// Initialize router
	router := httpdelivery.NewRouter(
		authHandler,
		discoveryHandler,
		swipeHandler,
		matchHandler,
		healthHandler,
		authMiddleware,
		httpdelivery.RouterOptions{
			Logger:         logger.Named("http"),
			RequestMetrics: collector,
			MetricsHandler: metrics.Handler(registry),
			SwipeLimiter:   c.swipeLimiter,
			AuthRequired:   cfg.JWT.Required,
		},
	)

	// Initialize server
	c.Server = server.NewServer(&cfg.Server, router.Setup(), logger)

	return c, nil
}

func (c *Container) closeStores() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	_ = c.DB.Close()
}

// Close closes all connections
func (c *Container) Close() error {
	if c.swipeLimiter != nil {
		c.swipeLimiter.Stop()
	}

	// Close Redis
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("error closing redis", zap.Error(err))
		}
	}

	// Close database
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	return nil
}
