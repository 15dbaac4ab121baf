package main

//
//  @title           b3view API
//  @version         1.0
//  @description     B3 ticker dashboard: directory search, asset charts, display modes and PNG export.
//  @termsOfService  https://github.com/guttosm/b3view
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/b3view
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        dashboard
//  @tag.description Ticker directory, asset selection and display modes
//
//  @tag.name        chart
//  @tag.description Chart configuration, viewport and PNG export
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guttosm/b3view/config"
	_ "github.com/guttosm/b3view/docs" // swagger docs
	"github.com/guttosm/b3view/internal/app"
	"github.com/guttosm/b3view/internal/domain/models"
	"github.com/guttosm/b3view/internal/logger"
	"github.com/guttosm/b3view/internal/snapshot"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (dashboard sessions).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// splitTickers turns "petr4, VALE3,,itub4" into ["PETR4" "VALE3" "ITUB4"].
func splitTickers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// main is the entry point of the b3view application.
//
// Modes (selected via --mode flag):
//   - api:      Serves the dashboard page and its REST API.
//   - snapshot: Renders PNG charts for a set of tickers into a directory and exits.
//
// Flags:
//   - --mode:     Execution mode ("api" or "snapshot"). Default: "api".
//   - --port:     Port for the API server. Defaults to SERVER_PORT.
//   - --tickers:  Comma separated tickers for snapshot mode (empty = whole directory).
//   - --chart:    Display mode for snapshot mode. Default: "fechamento".
//   - --out:      Output directory for snapshot mode. Defaults to SNAPSHOT_DIR.
//   - --parallel: Concurrent renders in snapshot mode (0 = auto).
//   - --width/--height: PNG size. Defaults to CHART_WIDTH/CHART_HEIGHT.
//   - --force:    Overwrite existing snapshot files.
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	cfg := config.AppConfig
	mode := flag.String("mode", "api", "Mode: api or snapshot")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	tickers := flag.String("tickers", "", "Comma separated tickers for snapshot mode (empty = whole directory)")
	chartMode := flag.String("chart", string(models.DefaultMode), "Display mode for snapshot mode: fechamento, abertura, maximo, minimo or volume")
	out := flag.String("out", cfg.Snapshot.Dir, "Output directory for snapshot mode")
	parallel := flag.Int("parallel", 0, "How many charts to render concurrently (0=auto up to CPU, max 16)")
	width := flag.Int("width", cfg.Chart.Width, "PNG width in pixels")
	height := flag.Int("height", cfg.Chart.Height, "PNG height in pixels")
	force := flag.Bool("force", false, "Overwrite snapshot files that already exist")
	flag.Parse()

	switch *mode {
	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "snapshot":
		logger.L().Info().Msg("running snapshot")

		dm, err := models.ParseDisplayMode(*chartMode)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("invalid --chart")
		}
		client, err := app.InitMarketClient(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("market client error")
		}

		runCtx, stop := signalContext(ctx)
		defer stop()

		res, err := snapshot.Run(runCtx, client, snapshot.Options{
			Tickers:        splitTickers(*tickers),
			DirectoryLimit: cfg.Market.DirectoryLimit,
			Mode:           dm,
			Dir:            *out,
			Parallel:       *parallel,
			Width:          *width,
			Height:         *height,
			Force:          *force,
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("snapshot failed")
		}
		logger.L().Info().
			Int("written", len(res.Written)).
			Int("skipped", len(res.Skipped)).
			Str("dir", *out).
			Msg("snapshot completed successfully")

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
