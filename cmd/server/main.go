package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crackdetect-service/internal/adapters/primary/http/handlers"
	"crackdetect-service/internal/adapters/primary/http/middleware"
	"crackdetect-service/internal/adapters/secondary/filestore"
	"crackdetect-service/internal/adapters/secondary/inference"
	"crackdetect-service/internal/adapters/secondary/postgres"
	"crackdetect-service/internal/config"
	"crackdetect-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Artifact store
	store, err := filestore.New(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("init artifact store: %v", err)
	}

	// Detector client. A cold model server is not fatal at boot; requests
	// fail individually until it comes up.
	detector := inference.NewClient(cfg.Inference.URL, cfg.Inference.Timeout)
	if err := detector.CheckHealth(context.Background()); err != nil {
		log.Warnf("model server not ready (continuing, detections will fail until it is): %v", err)
	} else {
		log.Info("model server ready")
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(pool)
	detectionRepo := postgres.NewDetectionRepository(pool)

	// Services
	authSvc := services.NewAuthService(accountRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	submissionSvc := services.NewSubmissionService(
		accountRepo, detectionRepo, store, detector,
		cfg.Inference.ConfidenceThreshold, cfg.Inference.Timeout,
	)
	detectionSvc := services.NewDetectionService(detectionRepo)

	// HTTP
	h := handlers.New(authSvc, submissionSvc, detectionSvc, store)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
