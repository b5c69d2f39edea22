package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lookout/api"
	"lookout/config"

	"go.uber.org/zap"
)

// App represents the lookout service with all its components.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Storage   *StorageComponents
	APIServer *api.API

	serviceWg *sync.WaitGroup
	serverErr chan error
}

// NewApp loads configuration, connects to Elasticsearch and builds the API.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{
		serviceWg: &sync.WaitGroup{},
		serverErr: make(chan error, 1),
	}

	// Bootstrap logger until the configured level is known
	_, sugar, err := InitLogger("info")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	sugar.Info("lookout starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	logger, sugar, err := InitLogger(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	if err := app.init(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// NewAppWithConfig builds the app from an already loaded configuration.
func NewAppWithConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Sugar:     logger.Sugar(),
		serviceWg: &sync.WaitGroup{},
		serverErr: make(chan error, 1),
	}
	if err := app.init(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	es, err := InitElasticsearch(a.Config, a.Sugar)
	if err != nil {
		return err
	}

	cache := InitRedis(ctx, a.Config, a.Sugar)

	components, err := InitStorage(es, cache, a.Config, a.Sugar)
	if err != nil {
		return err
	}
	a.Storage = components

	a.APIServer = api.NewAPI(api.Services{
		Annotations: components.Annotations,
		Fields:      components.Fields,
		Indices:     components.Indices,
		TimeSeries:  components.TimeSeries,
		Entities:    components.Entities,
		Health:      components.ES,
	}, a.Config, a.Sugar)
	return nil
}

// Start starts the API server in the background.
func (a *App) Start(_ context.Context) error {
	if a.APIServer == nil {
		return errors.New("API server not initialized")
	}

	a.serviceWg.Add(1)
	go func() {
		defer a.serviceWg.Done()
		if err := a.APIServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorw("API server error", "error", err)
			a.serverErr <- err
		}
	}()
	return nil
}

// WaitForShutdown blocks until a shutdown signal is received or the API server fails.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		a.Sugar.Infow("Shutdown signal received", "signal", sig.String())
	case <-a.serverErr:
	}
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	a.Sugar.Info("Phase 1: Stopping API server...")
	if a.APIServer != nil {
		timeout := a.Config.API.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
	}

	a.Sugar.Info("Phase 2: Waiting for service goroutines to complete...")
	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(15 * time.Second):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	a.Sugar.Info("Phase 3: Closing connections...")
	if a.Storage != nil && a.Storage.Cache != nil {
		if err := a.Storage.Cache.Close(); err != nil {
			a.Sugar.Errorw("Failed to close Redis connection", "error", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
