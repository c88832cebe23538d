package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/medrost/clinsched-api/api/swagger"
	"github.com/medrost/clinsched-api/internal/handler"
	"github.com/medrost/clinsched-api/internal/middleware"
	"github.com/medrost/clinsched-api/internal/repository"
	"github.com/medrost/clinsched-api/internal/service"
	"github.com/medrost/clinsched-api/pkg/cache"
	"github.com/medrost/clinsched-api/pkg/config"
	"github.com/medrost/clinsched-api/pkg/database"
	"github.com/medrost/clinsched-api/pkg/logger"
	corsmiddleware "github.com/medrost/clinsched-api/pkg/middleware/cors"
	reqidmiddleware "github.com/medrost/clinsched-api/pkg/middleware/requestid"
)

// @title Clinsched API
// @version 1.0.0
// @description Clinical scheduling backend: patients, assignments and generated events
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, continuing without cache", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	// Repositories.
	patientRepo := repository.NewPatientRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)
	locks := service.NewIdentityLocks()

	eventSvc := service.NewEventService(assignmentRepo, patientRepo, eventRepo, cacheSvc, metricsSvc, locks, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, patientRepo, eventSvc, cacheSvc, locks, nil, logr)
	patientSvc := service.NewPatientService(patientRepo, nil, logr)

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(patientRepo, eventRepo, logr)
	}

	// Handlers.
	patientHandler := handler.NewPatientHandler(patientSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	var eventHandler *handler.EventHandler
	if exportSvc != nil {
		eventHandler = handler.NewEventHandler(eventSvc, exportSvc)
	} else {
		eventHandler = handler.NewEventHandler(eventSvc, nil)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db.DB)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		patients := api.Group("/patients")
		patients.POST("", patientHandler.Create)
		patients.GET("", patientHandler.List)
		patients.GET("/:id", patientHandler.Get)
		patients.PUT("/:id", patientHandler.Update)
		patients.DELETE("/:id", patientHandler.Delete)
		patients.GET("/:id/assignments", assignmentHandler.ListByPatient)
		patients.GET("/:id/events", eventHandler.ListByPatient)
		patients.GET("/:id/schedule/export", eventHandler.ExportSchedule)

		assignments := api.Group("/assignments")
		assignments.POST("", assignmentHandler.Create)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.PUT("/:id", assignmentHandler.Update)
		assignments.DELETE("/:id", assignmentHandler.Delete)
		assignments.GET("/:id/patient", assignmentHandler.GetPatientID)
		assignments.GET("/:id/events", eventHandler.ListByAssignment)
		assignments.POST("/:id/events/regenerate", eventHandler.Regenerate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
