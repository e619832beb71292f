package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/boltdb/bolt"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger      *zap.Logger
	config      *Config
	server      *http.Server
	redisClient *redis.Client
	boltClient  *bolt.DB
	cleanups    []func()
	consumers   []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	var app *App
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	err = os.MkdirAll(config.LogFolder, 0o700)
	if err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logsWriter := NewRSyncWriter(config, clock)
	closer := func() {
		if cerr := logsWriter.Close(); cerr != nil {
			fmt.Println("error during closing of log file: ", cerr)
		}
	}
	logger, flusher := SetupLogging(config, logsWriter, NewTickClock(clock))

	// Setup the snapshot storage backends. The configured backend is
	// mandatory while the mirror one is best effort: a dead mirror
	// target downgrades to no replication instead of failing the boot.
	var boltClient *bolt.DB
	var redisClient *redis.Client
	var storage, mirrorTarget SnapshotStorage

	switch config.Catalog.StorageBackend {
	case BackendRedis:
		redisClient, err = GetRedisClient(config)
		if err != nil {
			return app, fmt.Errorf("failed to connect to redis server: %s", err)
		}
		storage = NewRedisSnapshotStorage(logger, redisClient, config.Redis.SnapshotKey)
		if config.Catalog.MirrorEnable {
			if boltClient, err = GetBoltDBClient(config); err != nil {
				logger.Warn("mirror backend unavailable, replication disabled", zap.Error(err))
			} else {
				mirrorTarget = NewBoltSnapshotStorage(logger, &config.BoltDB, boltClient)
			}
		}
	default:
		boltClient, err = GetBoltDBClient(config)
		if err != nil {
			return app, fmt.Errorf("failed to open the boltdb database: %s", err)
		}
		storage = NewBoltSnapshotStorage(logger, &config.BoltDB, boltClient)
		if config.Catalog.MirrorEnable {
			if redisClient, err = GetRedisClient(config); err != nil {
				logger.Warn("mirror backend unavailable, replication disabled", zap.Error(err))
				redisClient = nil
			} else {
				mirrorTarget = NewRedisSnapshotStorage(logger, redisClient, config.Redis.SnapshotKey)
			}
		}
	}

	var notifier SnapshotNotifier
	var consumers []func(context.Context) error
	if mirrorTarget != nil {
		mirror := NewSnapshotMirror(logger, mirrorTarget)
		notifier = mirror
		consumers = append(consumers, mirror.Consume)
	}

	// Setup the catalog core and api services and routing.
	ids := NewIDsHandler()
	gate := NewAdminGate(logger, config, clock, ids)
	catalog := NewCatalogStore(logger, config, clock, ids, storage, notifier)
	if err = catalog.Load(context.Background()); err != nil {
		return app, fmt.Errorf("failed to load the catalog: %s", err)
	}
	gateway := NewArchiveGateway(logger, catalog, clock, ids)
	enricher := NewGeminiEnricher(logger, &config.Gemini)

	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		ids,
		catalog,
		gateway,
		gate,
		enricher,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresAdmin, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			admin:  middlewaresAdmin.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
	}

	return &App{
		logger:      logger,
		config:      config,
		server:      srv,
		redisClient: redisClient,
		boltClient:  boltClient,
		cleanups: []func(){
			func() { _ = flusher() },
			closer,
		},
		consumers: consumers,
	}, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.RunConsumers(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.String("app.backend", app.config.Catalog.StorageBackend),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}
		if app.redisClient != nil {
			_ = app.redisClient.Close()
		}
		if app.boltClient != nil {
			_ = app.boltClient.Close()
		}
		return nil
	}
}

// RunConsumers runs all background consumers into separate controlled goroutines.
func (app *App) RunConsumers(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.consumers {
			f := func() error {
				return consume(gCtx)
			}
			g.Go(f)
		}
		return nil
	}
}
