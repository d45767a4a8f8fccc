package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tripbroker/internal/app"
	"tripbroker/internal/config"
	"tripbroker/internal/handler"
	"tripbroker/internal/middleware"
	internalRedis "tripbroker/internal/redis"
	"tripbroker/internal/repository/postgres"
	"tripbroker/internal/service"
	"tripbroker/internal/stream"
	"tripbroker/internal/ws"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first so the database and redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
			nrApp = nil
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, hub, tripService := wireServer(db, redisClient, nrApp, cfg, logger)

	go hub.Run(runCtx)
	go sweepStaleConfirmations(runCtx, tripService, cfg.Broker.SweepInterval, logger)

	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server, the push
// hub, and the trip service for the background sweep.
func wireServer(db *sql.DB, redisClient *goredis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) (*http.Server, *ws.Hub, *service.TripService) {
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	txManager := postgres.NewTxManager(db)
	tripRepo := postgres.NewTripRepository(db)
	offerRepo := postgres.NewOfferRepository(db)
	userRepo := postgres.NewUserRepository(db)
	adminLogRepo := postgres.NewAdminLogRepository(db)
	topUpRepo := postgres.NewTopUpRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)

	bus := stream.NewMemoryBus()

	notificationService := service.NewNotificationService(nil, logger)
	tripService := service.NewTripService(
		txManager, tripRepo, offerRepo, userRepo,
		lockStore, cacheStore, bus, notificationService, logger,
		cfg.Broker.ConfirmationTimeout,
	)
	adminService := service.NewAdminService(txManager, userRepo, adminLogRepo, cacheStore, bus, notificationService, logger)
	billingService := service.NewBillingService(topUpRepo, pricingRepo, userRepo, notificationService, logger)
	userService := service.NewUserService(userRepo)

	hub := ws.NewHub(bus, logger)
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)

	router := app.NewRouter(app.RouterDeps{
		TripHandler:    handler.NewTripHandler(tripService),
		OfferHandler:   handler.NewOfferHandler(tripService),
		AdminHandler:   handler.NewAdminHandler(adminService),
		BillingHandler: handler.NewBillingHandler(billingService),
		UserHandler:    handler.NewUserHandler(userService),
		WSHandler:      ws.NewHandler(hub, logger),
		AuthMiddleware: authMiddleware,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, hub, tripService
}

// sweepStaleConfirmations periodically re-opens trips whose confirmation
// window elapsed without a carrier response.
func sweepStaleConfirmations(ctx context.Context, tripService *service.TripService, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reopened, err := tripService.ExpireStaleConfirmations(ctx)
			if err != nil {
				logger.Warn("stale confirmation sweep failed", zap.Error(err))
				continue
			}
			if reopened > 0 {
				logger.Info("reopened stale confirmations", zap.Int("count", reopened))
			}
		}
	}
}
