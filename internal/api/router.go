package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/b3view/internal/middleware"
)

// RouterOptions tunes the middleware chain.
type RouterOptions struct {
	SessionTTL     time.Duration // cookie lifetime of the dashboard session
	RequestTimeout time.Duration // deadline put on every request context
}

// DefaultRouterOptions matches the default configuration.
var DefaultRouterOptions = RouterOptions{SessionTTL: 30 * time.Minute, RequestTimeout: 15 * time.Second}

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Session, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds request timeout handling.
//   - Mounts Swagger docs (/swagger/*any) and the dashboard page (/).
//   - Configures API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultRouterOptions.SessionTTL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRouterOptions.RequestTimeout
	}

	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.Session(opts.SessionTTL),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
	)

	// ─── Timeout ──────────────────────────────────
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Page ─────────────────────────────────────
	router.GET("/", Index)

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/directory", handler.GetDirectory)
		v1.GET("/state", handler.GetState)
		v1.POST("/assets/:ticker", handler.SelectAsset)
		v1.POST("/mode/:mode", handler.SetMode)

		ch := v1.Group("/chart")
		ch.GET("", handler.GetChart)
		ch.POST("/viewport", handler.SetViewport)
		ch.POST("/reset-zoom", handler.ResetZoom)
		ch.GET("/export", handler.ExportChart)
	}

	return router
}
