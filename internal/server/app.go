// Package server wires the filekeeper components together and runs them:
// blob store, temp URL registry, services, HTTP surface and janitor.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/config"
	"github.com/dmitrijs2005/filekeeper/internal/server/janitor"
	"github.com/dmitrijs2005/filekeeper/internal/server/observability"
	"github.com/dmitrijs2005/filekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/filekeeper/internal/server/rest"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
	"github.com/dmitrijs2005/filekeeper/internal/server/storage"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	repos      repomanager.RepositoryManager
	tracer     *sdktrace.TracerProvider
	httpServer *rest.HTTPServer
	janitor    *janitor.Manager
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(c.LogBackend, false)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	if c.TracingEnabled {
		if app.tracer, err = observability.InitTracerProvider(os.Stdout); err != nil {
			return nil, fmt.Errorf("tracer init error: %w", err)
		}
	}

	store, err := storage.Open(ctx, c.StorageBackend, c.StorageRoot, storage.S3Config{
		User:         c.S3RootUser,
		Password:     c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	app.repos, err = repomanager.New(ctx, c.RegistryBackend, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("registry init error: %w", err)
	}

	metrics := observability.NewMetrics()

	uploads := services.NewUploadService(store, services.NewPathAllocator(), c.MaxFileSize, c.BatchConcurrency, logger)
	links := services.NewTempURLService(app.repos.TempURLs(), store, c.TempURLValidityDuration, logger)
	files := services.NewFileService(store, logger)

	app.httpServer = rest.NewHTTPServer(rest.Options{
		Address:            c.EndpointAddrHTTP,
		PublicBaseURL:      c.PublicBaseURL,
		PresignRedirect:    c.S3PresignRedirect,
		CORSAllowedOrigins: c.CORSAllowedOrigins,
		MaxFileSize:        c.MaxFileSize,
	}, logger, metrics, uploads, links, files)

	app.janitor = janitor.NewManager(logger, app.repos.TempURLs(), metrics)

	logger.Info(ctx, "App initialized",
		"storage_backend", c.StorageBackend,
		"registry_backend", c.RegistryBackend,
		"temp_url_ttl", c.TempURLValidityDuration,
	)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startJanitor(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.janitor.Run(ctx, app.config.JanitorSchedule); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives, ctx is cancelled or a component fails,
// then releases the registry and flushes traces and logs.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startJanitor(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
}

func (app *App) close() {
	ctx := context.Background()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "registry close error", "error", err)
	}
	if app.tracer != nil {
		observability.ShutdownTracerProvider(ctx, app.tracer, app.logger)
	}
	app.logger.Info(ctx, "App stopped")
	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
