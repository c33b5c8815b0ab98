package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/config"
	"github.com/iliyamo/event-reservation-api/internal/database"
	"github.com/iliyamo/event-reservation-api/internal/handler"
	"github.com/iliyamo/event-reservation-api/internal/middleware"
	"github.com/iliyamo/event-reservation-api/internal/queue"
	"github.com/iliyamo/event-reservation-api/internal/repository"
	"github.com/iliyamo/event-reservation-api/internal/router"
	"github.com/iliyamo/event-reservation-api/internal/service"
	"github.com/iliyamo/event-reservation-api/internal/storage"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.IsProd())
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	if cfg.SeedUsers {
		if err := database.SeedUsers(ctx, db, cfg.BcryptCost, logger); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}

	storeCfg := config.LoadStorageConfig()
	images, err := storage.New(ctx, storeCfg)
	if err != nil {
		return err
	}

	// reservation events
	queueCfg := config.LoadQueueConfig()
	var publisher service.EventPublisher
	if queueCfg.Enabled {
		publisher = queue.NewPublisher(queueCfg.URL, logger)
		if queueCfg.ConsumerEnabled {
			consumer := queue.NewConsumer(queueCfg.URL, queueCfg.LogDir, logger)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("reservation consumer stopped", zap.Error(err))
				}
			}()
		}
	}

	// repositories and services
	cityRepo := repository.NewCityRepo(db)
	eventRepo := repository.NewEventRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger)

	authSvc := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost, logger)
	citySvc := service.NewCityService(cityRepo, images, cache, logger)
	eventSvc := service.NewEventService(eventRepo, cityRepo, images, cache, logger)
	publicSvc := service.NewPublicService(eventRepo, cityRepo)
	reservationSvc := service.NewReservationService(eventRepo, reservationRepo, publisher, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.NewErrorHandler(logger)
	e.Use(echomw.RequestID())
	e.Use(middleware.ZapLogger(logger))
	e.Use(echomw.Recover())
	if storeCfg.Driver != "s3" {
		e.Static(storeCfg.PublicPrefix, storeCfg.LocalRoot)
	}

	router.RegisterRoutes(e, handler.NewHealthHandler(db, rdb))
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), authSvc,
		middleware.NewTokenBucket(config.LoadAuthRateLimitConfig(), rdb, "auth", logger))
	router.RegisterPublic(e, handler.NewPublicHandler(publicSvc),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, "public", logger),
		cache.Middleware())
	router.RegisterAdmin(e, handler.NewCityHandler(citySvc), handler.NewEventHandler(eventSvc), authSvc)
	router.RegisterUser(e, handler.NewReservationHandler(reservationSvc), authSvc)

	go purgeExpiredTokens(ctx, tokenRepo, logger)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// purgeExpiredTokens removes expired access token records every hour.
func purgeExpiredTokens(ctx context.Context, tokens *repository.TokenRepo, logger *zap.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := tokens.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired tokens", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired tokens", zap.Int64("count", n))
			}
		}
	}
}
