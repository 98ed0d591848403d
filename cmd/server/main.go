// @title                       Dispatch API
// @version                     1.0
// @description                 Posts shipping orders, offers them to nearby trucks and pushes responses in realtime.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/haulmatch/dispatch-api/internal/api"
	"github.com/haulmatch/dispatch-api/internal/api/handler"
	"github.com/haulmatch/dispatch-api/internal/core/service"
	"github.com/haulmatch/dispatch-api/internal/infrastructure/config"
	mongodb "github.com/haulmatch/dispatch-api/internal/infrastructure/db/mongo"
	redisdb "github.com/haulmatch/dispatch-api/internal/infrastructure/db/redis"
	"github.com/haulmatch/dispatch-api/internal/infrastructure/queue"
	"github.com/haulmatch/dispatch-api/internal/infrastructure/realtime"
	"github.com/haulmatch/dispatch-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logger.Get()
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Init(logger.Options{Service: "dispatch-api"})
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "dispatch-api",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	orderRepo := mongodb.NewOrderRepository(db)
	offerRepo := mongodb.NewOfferRepository(db)
	truckRepo := mongodb.NewTruckRepository(db)
	authRepo := mongodb.NewAuthRepository(db)
	if err := mongodb.EnsureIndexes(ctx, orderRepo, offerRepo, truckRepo, authRepo); err != nil {
		return err
	}

	// --- Realtime ---
	hub := realtime.NewHub(logger.Component("realtime"))
	broker := realtime.NewBroker(rdb, hub, cfg.Realtime.Channel, logger.Component("broker"))
	notifier := queue.NewNotifier(cfg.Dispatch.NotifyWorkers, broker, logger.Component("notifier"))

	// --- Services ---
	dispatchService := service.NewDispatchService(
		orderRepo,
		offerRepo,
		truckRepo,
		notifier,
		redisdb.NewIdempotencyStore(rdb, cfg.Dispatch.IdempotencyTTL),
		service.DispatchConfig{
			Radii:          cfg.Dispatch.Radii,
			OutreachFactor: cfg.Dispatch.OutreachFactor,
			Strategy:       service.SearchStrategy(cfg.Dispatch.SearchStrategy),
		},
		logger.Component("dispatch"),
	)
	offerService := service.NewOfferService(offerRepo, orderRepo, notifier, logger.Component("offers"))
	truckService := service.NewTruckService(truckRepo, logger.Component("trucks"))
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, cfg.TokenTTL)

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Dispatch: dispatchService,
		Offers:   offerService,
		Trucks:   truckService,
		Hub:      hub,
		Checks: map[string]handler.Check{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.Realtime.AllowedOrigins,
		Logger:         logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return notifier.Run(gctx) })
	g.Go(func() error { return broker.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting dispatch api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
