package api

import (
	"alcyxob/tiktok-uploader/internal/observability"
	"alcyxob/tiktok-uploader/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	uploadService service.UploadService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) {
	uploadHandler := NewUploadHandler(uploadService, logger)

	router.GET("/health", Health)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	uploadGroup := router.Group("")
	if jwtSecret != "" {
		uploadGroup.Use(AuthMiddleware(jwtSecret))
	}
	uploadGroup.POST("/upload", uploadHandler.Upload)
}
