package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/cecyt9/prefect-gate-api/api/swagger"
	"github.com/cecyt9/prefect-gate-api/internal/handler"
	"github.com/cecyt9/prefect-gate-api/internal/middleware"
	"github.com/cecyt9/prefect-gate-api/internal/repository"
	"github.com/cecyt9/prefect-gate-api/internal/service"
	"github.com/cecyt9/prefect-gate-api/pkg/cache"
	"github.com/cecyt9/prefect-gate-api/pkg/config"
	"github.com/cecyt9/prefect-gate-api/pkg/database"
	"github.com/cecyt9/prefect-gate-api/pkg/logger"
	corsmiddleware "github.com/cecyt9/prefect-gate-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cecyt9/prefect-gate-api/pkg/middleware/requestid"
	"github.com/cecyt9/prefect-gate-api/pkg/storage"
)

// @title Prefect Gate API
// @version 1.0.0
// @description Gate identity lookup service for school prefects
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// The service keeps working without Redis, minus cooldowns and the
	// search cache.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, cooldowns and search cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	accreditationRepo := repository.NewAccreditationRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	accessRepo := repository.NewAccessRepository(db)

	var cacheRepo *repository.CacheRepository
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Lookup.SearchCacheTTL, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, service.StudentConfig{
		SearchMinLength:  cfg.Lookup.SearchMinLength,
		SearchMaxResults: cfg.Lookup.SearchMaxResults,
		SearchCacheTTL:   cfg.Lookup.SearchCacheTTL,
	}, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, cfg.Schedule.StrictSlots, logr)
	accreditationSvc := service.NewAccreditationService(accreditationRepo, logr)
	consultationSvc := service.NewConsultationService(consultationRepo, accessRepo, service.ConsultationConfig{
		HistoryLimit: cfg.Lookup.HistoryLimit,
		StrictAuth:   cfg.Lookup.StrictAuth,
	}, logr)
	lookupSvc := service.NewLookupService(
		studentSvc, scheduleSvc, accreditationSvc, consultationSvc,
		cooldownStoreOrNil(cacheRepo), metricsSvc,
		service.LookupConfig{
			ScanCooldown:     cfg.Lookup.ScanCooldown,
			NotFoundCooldown: cfg.Lookup.NotFoundCooldown,
		}, logr)
	var archiver *service.ExportArchiver
	if cfg.Export.Enabled && cfg.Export.ArchiveDir != "" {
		store, err := storage.NewLocalStorage(cfg.Export.ArchiveDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export archive", "error", err)
		}
		archiver = service.NewExportArchiver(store, logr)
		archiver.Start(context.Background())
		archiver.Cleanup(cfg.Export.ArchiveTTL)
		defer archiver.Stop()
	}
	exportSvc := service.NewExportService(consultationSvc, archiver, cfg.Export.Enabled, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	lookupHandler := handler.NewLookupHandler(lookupSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	consultationHandler := handler.NewConsultationHandler(consultationSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	sessionGuard := middleware.JWT(authSvc)
	if !cfg.Lookup.StrictAuth {
		sessionGuard = middleware.OptionalJWT(authSvc)
	}

	protected := api.Group("")
	protected.Use(sessionGuard)
	protected.POST("/lookups/scan", lookupHandler.Scan)
	protected.POST("/lookups/select", lookupHandler.Select)
	protected.GET("/students", studentHandler.Search)
	protected.GET("/students/:boleta", studentHandler.Get)
	protected.GET("/students/:boleta/consultations", consultationHandler.History)
	protected.GET("/students/:boleta/consultations/export", consultationHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// cooldownStoreOrNil avoids handing the lookup service a typed nil that
// would dodge its nil checks.
func cooldownStoreOrNil(repo *repository.CacheRepository) service.CooldownStore {
	if repo == nil {
		return nil
	}
	return repo
}
