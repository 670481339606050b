package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/app"
	"github.com/noah-isme/coaching-center-api/internal/repository"
	"github.com/noah-isme/coaching-center-api/internal/repository/memory"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/cache"
	"github.com/noah-isme/coaching-center-api/pkg/config"
	"github.com/noah-isme/coaching-center-api/pkg/database"
	"github.com/noah-isme/coaching-center-api/pkg/logger"
	"github.com/noah-isme/coaching-center-api/pkg/notify"
	"github.com/noah-isme/coaching-center-api/pkg/storage"
)

// @title Coaching Center API
// @version 1.0.0
// @description Multi-tenant student, payment and results management for coaching centers
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	stores, closeStores, err := openStores(cfg)
	if err != nil {
		logr.Fatal("failed to open database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStores()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving without cache", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	archive, err := openArchive(cfg.Archive)
	if err != nil {
		logr.Fatal("failed to init export archive", zap.String("driver", cfg.Archive.Driver), zap.Error(err))
	}

	var sms service.SMSSender
	if cfg.SMS.Enabled {
		sms = notify.NewSMSClient(cfg.SMS, logr)
	} else {
		sms = notify.NewLogSender(logr)
	}

	api := app.New(cfg, app.Dependencies{
		Stores:  stores,
		Cache:   cacheRepo,
		SMS:     sms,
		Archive: archive,
		Logger:  logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api.Start(ctx)
	defer api.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "db_driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func openStores(cfg *config.Config) (repository.Stores, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return memory.NewStores(memory.Open()), func() {}, nil
	case config.DriverPostgres, "":
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return repository.Stores{}, nil, err
		}
		return repository.NewStores(db), func() { _ = db.Close() }, nil
	default:
		return repository.Stores{}, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func openArchive(cfg config.ArchiveConfig) (app.Archive, error) {
	switch cfg.Driver {
	case config.ArchiveNone, "":
		return nil, nil
	case config.ArchiveLocal:
		return storage.NewLocalStorage(cfg.LocalDir)
	case config.ArchiveS3:
		return storage.NewS3Storage(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
	}
}
