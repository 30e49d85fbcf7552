package router

import (
	"net/http"

	"github.com/Payphone-Digital/auth-service/config"
	"github.com/Payphone-Digital/auth-service/internal/constants"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/handler"
	"github.com/Payphone-Digital/auth-service/internal/middleware"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
	"github.com/gin-gonic/gin"
)

type Router struct {
	userHandler   *handler.UserHandler
	authHandler   *handler.AuthHandler
	healthHandler *handler.HealthHandler

	validMw        *middleware.ValidationMiddleware
	jwtMw          *middleware.JWTMiddleware
	limiter        middleware.Limiter
	recorder       metrics.Recorder
	metricsHandler http.Handler
	Config         *config.Config
}

// NewRouter wires handlers and middleware. limiter and metricsHandler may be
// nil to turn rate limiting or the /metrics endpoint off.
func NewRouter(
	user *handler.UserHandler,
	auth *handler.AuthHandler,
	health *handler.HealthHandler,

	validMw *middleware.ValidationMiddleware,
	jwtMw *middleware.JWTMiddleware,
	limiter middleware.Limiter,
	recorder metrics.Recorder,
	metricsHandler http.Handler,
	config *config.Config,
) *Router {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Router{
		userHandler:   user,
		authHandler:   auth,
		healthHandler: health,

		validMw:        validMw,
		jwtMw:          jwtMw,
		limiter:        limiter,
		recorder:       recorder,
		metricsHandler: metricsHandler,
		Config:         config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestContext())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.recorder))
	router.Use(middleware.RequestTimeout(r.Config.App.WriteTimeout))

	if r.metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(r.metricsHandler))
	}

	api := router.Group("/api")
	{
		api.GET("", r.healthHandler.Info)
		api.GET("/health", r.healthHandler.HealthCheck)

		users := api.Group("/users")
		r.authRoutes(users)
		r.userRoutes(users)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, constants.BuildErrorResponse(
			string(apperrors.KindNotFound),
			constants.MsgRouteNotFound,
			http.StatusNotFound,
			nil,
		))
	})

	return router
}

// rateLimited returns the rate limit middleware, or a pass-through when
// limiting is off.
func (r *Router) rateLimited() gin.HandlerFunc {
	if r.limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(r.limiter)
}
