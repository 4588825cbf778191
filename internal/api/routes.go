package api

import (
	"github.com/RishiKendai/foldercheck/internal/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(cfg *config.Config, handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Create rate limiter
	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Middleware
	router.Use(RequestLogger())
	router.Use(MetricsMiddleware())
	router.Use(ErrorHandlerMiddleware())

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// API routes (with auth and rate limiting)
	api := router.Group("/api/v1/plagiarism")
	api.Use(JWTAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	api.Use(RateLimitMiddleware(rateLimiter))
	{
		api.POST("/checks", handler.CreateCheck)
		api.POST("/checks/async", handler.CreateCheckAsync)
		api.GET("/checks/:projectId/:promotionId", handler.GetLatestReport)
		api.GET("/checks/:projectId/:promotionId/status", handler.GetStatus)

		api.GET("/reports/:checkId", handler.GetReport)
		api.GET("/reports/:checkId/folders", handler.GetFolderSummaries)

		api.GET("/folders/:sha1", handler.GetFoldersBySHA1)
	}

	return router
}
