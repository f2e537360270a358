package http

import (
	"github.com/gin-gonic/gin"

	"github.com/docmatch/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Endpoint paths kept compatible with the existing frontend
	router.POST("/submit_job", handler.SubmitJob)
	router.GET("/status/:job_id", handler.GetStatus)
	router.POST("/extract_preview", handler.ExtractPreview)

	return router
}
