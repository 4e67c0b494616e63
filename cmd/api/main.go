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

	_ "github.com/absensi-sd/absensi-api/api/swagger"
	"github.com/absensi-sd/absensi-api/internal/handler"
	"github.com/absensi-sd/absensi-api/internal/middleware"
	"github.com/absensi-sd/absensi-api/internal/notify"
	"github.com/absensi-sd/absensi-api/internal/repository"
	"github.com/absensi-sd/absensi-api/internal/service"
	"github.com/absensi-sd/absensi-api/pkg/cache"
	"github.com/absensi-sd/absensi-api/pkg/config"
	"github.com/absensi-sd/absensi-api/pkg/database"
	"github.com/absensi-sd/absensi-api/pkg/logger"
	corsmiddleware "github.com/absensi-sd/absensi-api/pkg/middleware/cors"
	reqidmiddleware "github.com/absensi-sd/absensi-api/pkg/middleware/requestid"
)

// @title Absensi SD API
// @version 1.0.0
// @description Daily attendance service for elementary school rosters
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	var gateway notify.Gateway
	if cfg.WhatsApp.Enabled {
		gateway = notify.NewFonnteClient(cfg.WhatsApp.APIURL, cfg.WhatsApp.Token, cfg.WhatsApp.Timeout)
	} else {
		gateway = notify.NewConsoleGateway(logr)
	}

	notificationSvc := service.NewNotificationService(gateway, attendanceRepo, cfg.Notify, logr, metricsSvc)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, notificationSvc, cfg.Reporting.UTCOffset, validate, logr, metricsSvc)
	attendanceSvc.UseViewCache(cacheRepo)
	dashboardSvc := service.NewDashboardService(attendanceRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr, metricsSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, studentSvc, attendanceSvc.Today)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.JWT(authSvc))
		{
			protected.GET("/auth/me", authHandler.Me)

			protected.GET("/students", studentHandler.List)
			protected.POST("/students", studentHandler.Register)
			protected.GET("/students/:nis", studentHandler.Get)
			protected.DELETE("/students/:nis", studentHandler.Delete)

			protected.POST("/attendance", attendanceHandler.Record)
			protected.GET("/attendance/today", attendanceHandler.Today)
			protected.GET("/attendance/students/:nis/history", attendanceHandler.History)

			protected.GET("/dashboard/attendance", dashboardHandler.Attendance)
			protected.GET("/dashboard/attendance/export", dashboardHandler.Export)
			protected.GET("/dashboard/grades", dashboardHandler.Grades)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
