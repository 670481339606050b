// Package app assembles services, handlers and background workers into a runnable API.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coaching-center-api/api/swagger"
	"github.com/noah-isme/coaching-center-api/internal/handler"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/repository"
	"github.com/noah-isme/coaching-center-api/internal/service"
	"github.com/noah-isme/coaching-center-api/pkg/config"
	"github.com/noah-isme/coaching-center-api/pkg/jobs"
	"github.com/noah-isme/coaching-center-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-center-api/pkg/middleware/requestid"
)

// Archive stores exported blobs.
type Archive interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Dependencies are the external resources the API runs against. Cache, SMS, Archive,
// Clock and Logger are optional.
type Dependencies struct {
	Stores  repository.Stores
	Cache   *repository.CacheRepository
	SMS     service.SMSSender
	Archive Archive
	Clock   clockwork.Clock
	Logger  *zap.Logger
}

// App is the assembled API.
type App struct {
	Router   *gin.Engine
	Queue    *jobs.Queue
	Metrics  *service.MetricsService
	Rollover *service.RolloverService
	Auth     *service.AuthService

	cfg    *config.Config
	logger *zap.Logger
}

// New wires every service and mounts the routes.
func New(cfg *config.Config, deps Dependencies) *App {
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	validate := validator.New()
	stores := deps.Stores

	metrics := service.NewMetricsService()
	var cacheRepo service.CacheRepository
	if deps.Cache != nil {
		cacheRepo = deps.Cache
	}
	cache := service.NewCacheService(cacheRepo, metrics, cfg.Cache, logr)

	auth := service.NewAuthService(service.AuthConfig{
		Secret:           cfg.JWT.Secret,
		Issuer:           cfg.JWT.Issuer,
		GuardianTokenTTL: cfg.JWT.GuardianTokenTTL,
	}, clock, logr)

	students := service.NewStudentService(stores.Students, stores.Batches, cache, validate, logr)
	payments := service.NewPaymentService(stores.Students, cache, clock, logr)
	results := service.NewResultsService(stores.Students, deps.SMS, cache, metrics, logr)
	batches := service.NewBatchService(stores.Batches, cache, validate, logr)
	attendance := service.NewAttendanceService(stores.Attendance, stores.Students, stores.Batches, validate, logr)
	accounts := service.NewAccountService(stores.Accounts, cache, logr)
	guardians := service.NewGuardianService(stores.Guardians, stores.Students, auth, validate, logr)
	rollover := service.NewRolloverService(stores.Rollovers, cache, metrics, clock, logr)

	// The export service enqueues archive jobs on the same queue that routes them back to it.
	exports := &exportRouter{}
	queue := jobs.NewQueue("background", jobs.Route(map[string]jobs.Handler{
		service.JobKindResumeRollover: rollover.HandleResumeJob,
		service.JobKindArchiveExport:  exports.handle,
	}), jobs.QueueConfig{
		Workers:    2,
		MaxRetries: cfg.Rollover.Retries,
		RetryDelay: cfg.Rollover.RetryDelay,
		Logger:     logr,
		OnExhausted: func(job jobs.Job, err error) {
			metrics.RecordJobExhausted(job.Kind)
			logr.Error("background job exhausted",
				zap.String("kind", job.Kind),
				zap.String("owner_id", job.OwnerID),
				zap.Error(err))
		},
	})

	var archive Archive
	var enqueuer interface{ Enqueue(jobs.Job) error }
	if deps.Archive != nil {
		archive = deps.Archive
		enqueuer = queue
	}
	exports.svc = service.NewExportService(stores.Students, stores.Batches, rollover, cache, metrics, archive, enqueuer, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	checks := []handler.ReadinessCheck{{Name: "database", Check: stores.Ping}}
	if deps.Cache != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "cache", Check: deps.Cache.Ping, Optional: true})
	}
	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, checks...))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Students:   handler.NewStudentHandler(students, payments),
		Exports:    handler.NewExportHandler(exports.svc),
		Results:    handler.NewResultsHandler(results),
		Batches:    handler.NewBatchHandler(batches),
		Attendance: handler.NewAttendanceHandler(attendance),
		Auth:       handler.NewAuthHandler(accounts, guardians),
	}, auth)

	return &App{
		Router:   r,
		Queue:    queue,
		Metrics:  metrics,
		Rollover: rollover,
		Auth:     auth,
		cfg:      cfg,
		logger:   logr,
	}
}

// Start runs the background queue and, when enabled, queues interrupted rollovers.
func (a *App) Start(ctx context.Context) {
	a.Queue.Start(ctx)
	if !a.cfg.Rollover.ResumeOnStart {
		return
	}
	if _, err := a.Rollover.EnqueueOpen(ctx, a.Queue); err != nil {
		a.logger.Warn("failed to queue interrupted rollovers", zap.Error(err))
	}
}

// Stop drains the background queue.
func (a *App) Stop() {
	a.Queue.Stop()
}

type exportRouter struct {
	svc *service.ExportService
}

func (e *exportRouter) handle(ctx context.Context, job jobs.Job) error {
	return e.svc.HandleArchiveJob(ctx, job)
}
