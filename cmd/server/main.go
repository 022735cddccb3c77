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

	"alcyxob/tiktok-uploader/internal/api"
	"alcyxob/tiktok-uploader/internal/config"
	"alcyxob/tiktok-uploader/internal/credentials"
	"alcyxob/tiktok-uploader/internal/engine"
	"alcyxob/tiktok-uploader/internal/observability"
	"alcyxob/tiktok-uploader/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Logging ---
	logger, err := observability.InitLogger(cfg.Log.Development)
	if err != nil {
		log.Fatalf("FATAL: Could not init logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("starting TikTok uploader server")

	// --- Cookie Store ---
	var cookieStore credentials.Store
	switch cfg.Cookies.Backend {
	case "", "fs":
		cookieStore = credentials.NewFilesystemStore(cfg.Cookies)
		logger.Info("using filesystem cookie store", zap.String("dir", cfg.Cookies.Dir))
	case "s3":
		cookieStore, err = credentials.NewS3Store(cfg.S3, cfg.Cookies)
		if err != nil {
			logger.Fatal("failed to initialize S3 cookie store", zap.Error(err))
		}
		logger.Info("using S3 cookie store", zap.String("bucket", cfg.S3.BucketName))
	default:
		logger.Fatal("unknown cookie store backend", zap.String("backend", cfg.Cookies.Backend))
	}

	// --- Metrics ---
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	// --- Automation Engine & Orchestrator ---
	uploadEngine := engine.NewExecEngine(cfg.Engine, logger)
	uploadService := service.NewUploadService(cookieStore, uploadEngine, cfg.Upload, cfg.Cookies, metrics, logger)

	// --- HTTP ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	api.SetupRoutes(router, cfg.Auth.JWTSecret, uploadService, metrics, logger)

	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 5 * time.Minute, // the video part can be large
		IdleTimeout: 120 * time.Second,
		// No WriteTimeout: the response waits on a long browser-automation run
		// bounded by upload.timeout instead.
	}

	logger.Info("server starting", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// In-flight automation runs get a window to finish before the process exits.
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
