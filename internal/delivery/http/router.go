package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thalesfercaetano/Pets-API/internal/delivery/http/handler"
	"github.com/thalesfercaetano/Pets-API/internal/delivery/http/middleware"
)

// RouterOptions carries the cross-cutting pieces the router mounts.
type RouterOptions struct {
	Logger         *zap.Logger
	RequestMetrics middleware.RequestObserver
	MetricsHandler http.Handler
	SwipeLimiter   *middleware.RateLimiter
	// AuthRequired makes a valid bearer token mandatory on /match.
	AuthRequired bool
}

type Router struct {
	authHandler      *handler.AuthHandler
	discoveryHandler *handler.DiscoveryHandler
	swipeHandler     *handler.SwipeHandler
	matchHandler     *handler.MatchHandler
	healthHandler    *handler.HealthHandler
	authMiddleware   *middleware.AuthMiddleware
	opts             RouterOptions
}

func NewRouter(
	authHandler *handler.AuthHandler,
	discoveryHandler *handler.DiscoveryHandler,
	swipeHandler *handler.SwipeHandler,
	matchHandler *handler.MatchHandler,
	healthHandler *handler.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	opts RouterOptions,
) *Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Router{
		authHandler:      authHandler,
		discoveryHandler: discoveryHandler,
		swipeHandler:     swipeHandler,
		matchHandler:     matchHandler,
		healthHandler:    healthHandler,
		authMiddleware:   authMiddleware,
		opts:             opts,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(r.opts.Logger),
		middleware.Recovery(r.opts.Logger),
	)
	if r.opts.RequestMetrics != nil {
		router.Use(middleware.Metrics(r.opts.RequestMetrics))
	}

	// Health check (supports both GET and HEAD)
	router.GET("/health", r.healthHandler.Health)
	router.HEAD("/health", r.healthHandler.Health)
	router.GET("/testConnection", r.healthHandler.TestConnection)

	if r.opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.opts.MetricsHandler))
	}

	usuarios := router.Group("/usuarios")
	{
		usuarios.POST("/login", r.authHandler.Login)
		usuarios.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
	}

	matchAuth := r.authMiddleware.OptionalAuth()
	if r.opts.AuthRequired {
		matchAuth = r.authMiddleware.RequireAuth()
	}

	swipeLimit := func(c *gin.Context) { c.Next() }
	if r.opts.SwipeLimiter != nil {
		swipeLimit = r.opts.SwipeLimiter.Middleware()
	}

	match := router.Group("/match")
	match.Use(matchAuth)
	{
		discover := match.Group("/discover")
		{
			discover.GET("/pets", r.discoveryHandler.DiscoverPets)
			discover.GET("/usuarios", r.discoveryHandler.DiscoverUsers)
		}

		swipe := match.Group("/swipe")
		swipe.Use(swipeLimit)
		{
			swipe.POST("/usuario", r.swipeHandler.SwipeAsUser)
			swipe.POST("/instituicao", r.swipeHandler.SwipeAsInstitution)
		}

		match.GET("/usuario/:id", r.matchHandler.ListByUser)
		match.GET("/instituicao/:id", r.matchHandler.ListByInstitution)
		match.GET("/:id", r.matchHandler.GetByID)
		match.PATCH("/:id/status", r.matchHandler.UpdateStatus)
	}

	return router
}
