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

	_ "github.com/noah-isme/emphasis-lines-api/api/swagger"
	"github.com/noah-isme/emphasis-lines-api/internal/handler"
	internalmiddleware "github.com/noah-isme/emphasis-lines-api/internal/middleware"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
	"github.com/noah-isme/emphasis-lines-api/pkg/config"
	"github.com/noah-isme/emphasis-lines-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/emphasis-lines-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/emphasis-lines-api/pkg/middleware/requestid"
)

// @title Emphasis Lines API
// @version 1.0.0
// @description Course lines, enrollment requests, grades and notifications
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

	backend, closeBackend, err := openBackend(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open document backend", zap.String("driver", cfg.Backend.Driver), zap.Error(err))
	}
	defer closeBackend()

	metrics := service.NewMetricsService()
	docs := store.New(backend,
		store.WithLogger(logr),
		store.WithRecorder(metrics),
		store.WithSeed(cfg.Store.SeedEnabled),
		store.WithQueueSize(cfg.Store.QueueSize),
		store.WithSaveTimeout(cfg.Backend.SaveTimeout),
	)

	hub := service.NewChangeHub(cfg.Events.Buffer, metrics, logr)
	hub.Start(ctx)
	docs.OnChange(hub.Publish)

	validate := validator.New()
	courses := service.NewCourseService(docs, validate, logr, cfg.Store.DefaultTerm)
	enrollments := service.NewEnrollmentService(docs, validate, logr)
	services := handler.Services{
		Auth: service.NewAuthService(docs, validate, logr, service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            cfg.JWT.Issuer,
		}),
		Users:         service.NewUserService(docs, logr),
		CourseLines:   service.NewCourseLineService(docs, validate, logr, cfg.Store.DefaultTerm),
		Courses:       courses,
		Requests:      service.NewRequestService(docs, validate, logr, cfg.Requests.NotifyUserIDs),
		Enrollments:   enrollments,
		Evaluations:   service.NewEvaluationService(docs, validate, logr),
		Grades:        service.NewGradeService(docs, validate, logr),
		Notifications: service.NewNotificationService(docs, validate, logr),
		Admin:         service.NewAdminService(docs, logr),
		Exports:       service.NewExportService(courses, enrollments),
		Metrics:       metrics,
		Hub:           hub,
		Readiness:     docs,
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.Register(r, services, handler.RouterConfig{
		APIPrefix:          cfg.APIPrefix,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		EventsWriteTimeout: cfg.Events.WriteTimeout,
	}, logr)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// The listener comes up before the document is loaded; API routes answer 503 until then.
	go func() {
		if err := docs.Start(ctx); err != nil {
			logr.Error("store failed to start", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Backend.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	hub.Stop()
	docs.Close()
}
