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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/leave-planner-api/api/swagger"
	"github.com/noah-isme/leave-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/leave-planner-api/internal/middleware"
	"github.com/noah-isme/leave-planner-api/internal/models"
	"github.com/noah-isme/leave-planner-api/internal/repository"
	"github.com/noah-isme/leave-planner-api/internal/service"
	"github.com/noah-isme/leave-planner-api/pkg/cache"
	"github.com/noah-isme/leave-planner-api/pkg/config"
	"github.com/noah-isme/leave-planner-api/pkg/database"
	"github.com/noah-isme/leave-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/leave-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/leave-planner-api/pkg/middleware/requestid"
)

// @title Leave Planner API
// @version 1.0.0
// @description Recommends leave windows that keep every subject above its attendance threshold.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 15 * time.Second

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, planner cache disabled", zap.Error(err))
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, redisClient != nil)

	runRepo := repository.NewPlannerRunRepository(db)
	recorder := service.NewRunRecorder(runRepo, service.RecorderConfig{
		Workers: cfg.Recorder.Workers,
		Retries: cfg.Recorder.Retries,
	}, metricsSvc, logr)
	recorder.Start(ctx)
	metricsSvc.ObserveQueue("planner-runs", recorder.Stats)

	narrator := service.NewNarratorService(service.NarratorConfig{
		Enabled: cfg.Narrator.Enabled,
		BaseURL: cfg.Narrator.BaseURL,
		APIKey:  cfg.Narrator.APIKey,
		Model:   cfg.Narrator.Model,
		Timeout: cfg.Narrator.Timeout,
	}, nil, metricsSvc, logr)

	plannerSvc := service.NewPlannerService(service.PlannerRepositories{
		Subjects:   repository.NewSubjectRepository(db),
		Attendance: repository.NewAttendanceRepository(db),
		Schedule:   repository.NewScheduleRepository(db),
		Calendar:   repository.NewCalendarRepository(db),
		Runs:       runRepo,
	}, cacheSvc, narrator, recorder, metricsSvc, validate, logr, service.PlannerConfig{
		GlobalThreshold: cfg.Planner.GlobalThreshold,
		SearchDays:      cfg.Planner.SearchDays,
		MinWindow:       cfg.Planner.MinWindow,
		MaxWindow:       cfg.Planner.MaxWindow,
		TopN:            cfg.Planner.TopN,
		Workers:         cfg.Planner.Workers,
		CacheTTL:        cfg.Planner.CacheTTL,
		Location:        cfg.Planner.Location(),
	})
	tokenSvc := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret})

	readiness := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		readiness["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Planner.Enabled {
		planner := r.Group(cfg.APIPrefix + "/planner")
		planner.Use(internalmiddleware.JWT(tokenSvc))
		planner.Use(internalmiddleware.RequireRoles(models.RoleStudent, models.RoleAdmin))
		planner.POST("/recommendations", plannerHandler.Recommend)
		planner.POST("/simulate", plannerHandler.Simulate)
		planner.GET("/recommendations/export", plannerHandler.Export)
		planner.GET("/runs", plannerHandler.Runs)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	recorder.Stop()
}
