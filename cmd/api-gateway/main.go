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

	_ "github.com/bytezen/bytezen-api/api/swagger"
	"github.com/bytezen/bytezen-api/internal/handler"
	"github.com/bytezen/bytezen-api/internal/middleware"
	"github.com/bytezen/bytezen-api/internal/repository"
	"github.com/bytezen/bytezen-api/internal/scoring"
	"github.com/bytezen/bytezen-api/internal/service"
	"github.com/bytezen/bytezen-api/pkg/cache"
	"github.com/bytezen/bytezen-api/pkg/config"
	"github.com/bytezen/bytezen-api/pkg/database"
	"github.com/bytezen/bytezen-api/pkg/logger"
	corsmiddleware "github.com/bytezen/bytezen-api/pkg/middleware/cors"
	reqidmiddleware "github.com/bytezen/bytezen-api/pkg/middleware/requestid"
	"github.com/bytezen/bytezen-api/pkg/storage"
)

// @title ByteZen API
// @version 1.0.0
// @description Learning management backend: courses, attendance, content progress and leaderboards
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, true)
		defer cacheRepo.Close() //nolint:errcheck
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	contentRepo := repository.NewContentRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	eventRepo := repository.NewEventRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	councilRepo := repository.NewCouncilRepository(db)
	byteLogRepo := repository.NewByteLogRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, enrollmentRepo, cacheSvc, validate, logr)
	contentSvc := service.NewContentService(contentRepo, enrollmentRepo, studentRepo, cacheSvc, validate, logr)
	leaderboardSvc := service.NewLeaderboardService(
		leaderboardRepo,
		attendanceRepo,
		contentRepo,
		cacheSvc,
		metricsSvc,
		logr,
		scoring.Weights{
			Attendance: cfg.Leaderboard.AttendanceWeight,
			Progress:   cfg.Leaderboard.ProgressWeight,
			Points:     cfg.Leaderboard.PointsWeight,
		},
		cfg.Leaderboard.CacheTTL,
	)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	partnerSvc := service.NewPartnerService(partnerRepo, validate, logr)
	councilSvc := service.NewCouncilService(councilRepo, validate, logr)
	byteLogSvc := service.NewByteLogService(byteLogRepo, uploadStore, signer, validate, logr)
	codeExecSvc := service.NewCodeExecService(cfg.CodeExec.BaseURL, cfg.CodeExec.Timeout, cfg.CodeExec.Enabled, validate, logr)

	refreshQueue := leaderboardSvc.StartRefreshQueue(ctx, cfg.Leaderboard.RefreshWorkers, logr)
	defer refreshQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/metrics", metricsHandler.Prometheus())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, handler.RouterConfig{
		Prefix:          cfg.APIPrefix,
		ByteLogsEnabled: cfg.ByteLogs.Enabled,
		EventsEnabled:   cfg.Events.Enabled,
		CodeExecEnabled: cfg.CodeExec.Enabled,
	}, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Student:     handler.NewStudentHandler(studentSvc),
		Course:      handler.NewCourseHandler(courseSvc),
		Enrollment:  handler.NewEnrollmentHandler(enrollmentSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc),
		Content:     handler.NewContentHandler(contentSvc),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardSvc),
		Event:       handler.NewEventHandler(eventSvc),
		Partner:     handler.NewPartnerHandler(partnerSvc),
		Council:     handler.NewCouncilHandler(councilSvc),
		ByteLog:     handler.NewByteLogHandler(byteLogSvc),
		CodeExec:    handler.NewCodeExecHandler(codeExecSvc),
		Metrics:     metricsHandler,
		AuthService: authSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
