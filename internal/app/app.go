package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3view/config"
	"github.com/guttosm/b3view/internal/api"
	"github.com/guttosm/b3view/internal/dashboard"
	"github.com/guttosm/b3view/internal/middleware"
)

// directoryLoadTimeout bounds the startup fetch of the ticker directory.
const directoryLoadTimeout = 15 * time.Second

var errDirectoryNotLoaded = errors.New("ticker directory not loaded")

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Builds the market API client using InitMarketClient().
//   - Loads the ticker directory once. A failure is logged and leaves the
//     directory empty; /readyz then reports degraded.
//   - Creates the session store whose controllers share that directory.
//   - Configures the Gin router with the page, API routes and probes.
//   - Provides a cleanup function that closes every session.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	client, err := marketOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize market client: %w", err)
	}

	directory := dashboard.NewDirectory(client, cfg.Market.DirectoryLimit)
	ctx, cancel := context.WithTimeout(context.Background(), directoryLoadTimeout)
	_ = directory.Load(ctx) // logged inside; the page shows an empty list
	cancel()

	opts := dashboard.Options{ExportWidth: cfg.Chart.Width, ExportHeight: cfg.Chart.Height}
	sessions := dashboard.NewSessions(cfg.Session.TTL, func() *dashboard.Controller {
		return dashboard.NewController(client, directory.Tickers(), opts)
	})

	middleware.SetRateLimit(cfg.Server.RateLimit, time.Minute)

	handler := api.NewHandler(sessions)
	router := api.NewRouter(handler, api.RouterOptions{
		SessionTTL:     cfg.Session.TTL,
		RequestTimeout: cfg.Market.Timeout + 5*time.Second,
	})

	healthHandler := api.NewHealthHandler(func() error {
		if !directory.Ready() {
			return errDirectoryNotLoaded
		}
		return nil
	})
	healthHandler.Register(router)

	cleanup := func() {
		sessions.Close()
	}

	return router, cleanup, nil
}
