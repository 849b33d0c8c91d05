package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/acmclub/ojrank/internal/cache"
	"github.com/acmclub/ojrank/internal/config"
	"github.com/acmclub/ojrank/internal/contest"
	"github.com/acmclub/ojrank/internal/events"
	"github.com/acmclub/ojrank/internal/handler"
	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/natsjetstream"
	"github.com/acmclub/ojrank/internal/scheduler"
	"github.com/acmclub/ojrank/internal/service"
	"github.com/acmclub/ojrank/internal/source"
	"github.com/acmclub/ojrank/internal/store"
)

type App struct {
	cfg    *config.Config
	logger *logger.Logger

	snapshotStore store.SnapshotStore
	redisClient   *cache.RedisClient
	rosterCache   *cache.RosterCache
	natsClient    *natsjetstream.Client
	publisher     *events.EventPublisher
	calendar      *contest.Calendar

	aggregationService service.AggregationService
	leaderboardService service.LeaderboardService

	scheduler  *scheduler.Scheduler
	httpServer *http.Server

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		cleanup: make([]func() error, 0),
	}

	app.initLogger()

	if err := app.initCalendar(); err != nil {
		return nil, err
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initRedis(); err != nil {
		return nil, err
	}

	if err := app.initNATS(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		return nil, err
	}

	if err := app.initScheduler(); err != nil {
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

func (a *App) initLogger() {
	if a.cfg.Server.Environment == "development" {
		a.logger = logger.Development("ojrank")
		return
	}
	a.logger = logger.New(logger.Config{
		Level:   a.cfg.Server.LogLevel,
		Format:  a.cfg.Server.LogFormat,
		Service: "ojrank",
	})
}

func (a *App) initCalendar() error {
	calendar, err := contest.NewCalendar(
		a.cfg.Contest.StartDate,
		a.cfg.Contest.ContestIDs,
		a.cfg.Contest.Timezone,
	)
	if err != nil {
		return fmt.Errorf("failed to build contest calendar: %w", err)
	}

	a.calendar = calendar
	return nil
}

func (a *App) initStore() error {
	switch a.cfg.Store.Backend {
	case "dynamo":
		dynamoClient, err := store.NewDynamoDBClient(a.cfg)
		if err != nil {
			return fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		a.snapshotStore = store.NewDynamoStore(dynamoClient, a.logger)
		a.logger.Info("Using DynamoDB snapshot store", "table", a.cfg.DynamoDB.TableName)

	default:
		a.snapshotStore = store.NewFileStore(
			a.cfg.Store.DataDir,
			a.cfg.Store.SnapshotFile,
			a.cfg.Store.ArchiveDir,
			a.logger,
		)
		a.logger.Info("Using file snapshot store", "dir", a.cfg.Store.DataDir)
	}

	return nil
}

func (a *App) initRedis() error {
	if !a.cfg.Redis.Enabled {
		return nil
	}

	redisClient, err := cache.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect roster cache: %w", err)
	}

	a.redisClient = redisClient
	a.cleanup = append(a.cleanup, redisClient.Close)

	ttl := time.Duration(a.cfg.Redis.TTLSeconds) * time.Second
	a.rosterCache = cache.NewRosterCache(redisClient, ttl, a.logger)

	return nil
}

func (a *App) initNATS() error {
	if !a.cfg.NATS.Enabled {
		return nil
	}

	natsClient, err := natsjetstream.NewClient(&natsjetstream.Config{
		URL:           a.cfg.NATS.URL,
		MaxReconnect:  a.cfg.NATS.MaxReconnect,
		ReconnectWait: time.Duration(a.cfg.NATS.ReconnectWaitSeconds) * time.Second,
		Timeout:       time.Duration(a.cfg.NATS.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}

	a.natsClient = natsClient
	a.cleanup = append(a.cleanup, natsClient.Close)
	a.publisher = events.NewEventPublisher(natsClient, a.logger)

	return nil
}

func (a *App) initServices() error {
	resultSource := source.NewHUSTOJSource(source.HUSTOJConfig{
		BaseURL:   a.cfg.Scraper.BaseURL,
		UserAgent: a.cfg.Scraper.UserAgent,
		Timeout:   time.Duration(a.cfg.Scraper.TimeoutSeconds) * time.Second,
		Problems:  a.cfg.Contest.Problems,
		IDPrefix:  a.cfg.Contest.UserIDPrefix,
		IDLength:  a.cfg.Contest.UserIDLength,
	}, a.logger)

	a.aggregationService = service.NewAggregationService(
		a.snapshotStore,
		resultSource,
		a.calendar,
		a.rosterCache,
		a.publisher,
		a.cfg.Contest.Problems,
		a.logger,
	)

	a.leaderboardService = service.NewLeaderboardService(
		a.snapshotStore,
		a.rosterCache,
		a.logger,
	)

	return nil
}

func (a *App) initScheduler() error {
	s, err := scheduler.NewScheduler(
		a.aggregationService,
		a.cfg.Contest.RunAt,
		a.calendar.Location(),
		a.logger,
	)
	if err != nil {
		return err
	}

	a.scheduler = s
	return nil
}

func (a *App) initHTTP() {
	router := mux.NewRouter()

	leaderboardHandler := handler.NewLeaderboardHandler(
		a.leaderboardService,
		a.aggregationService,
		a.logger,
	)
	leaderboardHandler.Register(router)

	router.Use(a.loggingMiddleware)

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: cors.AllowAll().Handler(router),
	}
}

func (a *App) Start() {
	go a.scheduler.Start()

	go func() {
		a.logger.Info("HTTP server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server failed", "error", err)
		}
	}()

	a.logger.Info("Application started successfully")
}

func (a *App) Stop(ctx context.Context) {
	a.logger.Info("Stopping application...")

	a.scheduler.Stop()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP shutdown error", "error", err)
	}

	for _, cleanup := range a.cleanup {
		if err := cleanup(); err != nil {
			a.logger.Error("Cleanup error", "error", err)
		}
	}

	a.logger.Info("Application stopped")
}

func (a *App) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}
