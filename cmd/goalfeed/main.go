package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvoss/goalfeed/internal/adapters/http/api"
	"github.com/nvoss/goalfeed/internal/adapters/http/swagger"
	"github.com/nvoss/goalfeed/internal/adapters/objstore"
	"github.com/nvoss/goalfeed/internal/adapters/repository"
	app "github.com/nvoss/goalfeed/internal/app"
	"github.com/nvoss/goalfeed/internal/config"
	"github.com/nvoss/goalfeed/pkg/logger"
	"github.com/nvoss/goalfeed/pkg/metrics"
)

// HTTP server timeout constants. WriteTimeout stays zero: the SSE stream is
// a deliberately unbounded response.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 120 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env). Missing critical
	// dependencies fail fast here.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Store clients are constructed once here and injected; the components
	// never open connections lazily.
	store, err := repository.NewMongoStore(ctx, cfg.MongoURI,
		repository.WithDatabase(cfg.MongoDB),
		repository.WithCollections(cfg.StagingCollection, cfg.ActiveCollection, cfg.CompletedCollection),
		repository.WithCompletedLimit(cfg.CompletedLimit),
		repository.WithLogger(log.Named("store")),
	)
	if err != nil {
		log.Fatal(ctx, "document store unavailable at startup", logger.Error(err))
	}

	objects, err := objstore.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL,
		objstore.WithLogger(log.Named("objstore")),
	)
	if err != nil {
		log.Fatal(ctx, "object store unavailable at startup", logger.Error(err))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithObjectStore(objects),
		app.WithProbeInterval(time.Duration(cfg.ProbeIntervalSeconds)*time.Second),
		app.WithSubscriberBuffer(cfg.SubscriberBuffer),
		app.WithWorkflowEngine(cfg.WorkflowURL),
		app.WithExternalAPIKey(cfg.ExternalAPIKey),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	r := chi.NewRouter()
	swagger.Register(ctx, r)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	apiServer := api.NewServer(svc, svc.Objects(),
		api.WithHeartbeatInterval(time.Duration(cfg.HeartbeatIntervalSeconds)*time.Second),
		api.WithStreamLogger(log.Named("stream")),
	)
	apiServer.Register(ctx, r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater updates process-level metrics on a fixed period.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
