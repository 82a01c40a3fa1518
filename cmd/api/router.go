package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"elog-backend/internal/shared/middleware"
	"elog-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))

		setupLogbookRoutes(v1, c)
		setupEntryRoutes(v1, c)
		setupAttachmentRoutes(v1, c)
	}

	return router
}

// ========================================
// LOGBOOK ROUTES
// ========================================
func setupLogbookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	logbooks := v1.Group("/logbooks")
	{
		logbooks.GET("", c.LogbookHandler.List)
		logbooks.GET("/:id", c.LogbookHandler.Get)
	}
}

// ========================================
// ENTRY ROUTES
// ========================================
func setupEntryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	entries := v1.Group("/entries")
	entries.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		entries.POST("", c.EntryHandler.CreateEntry)
		entries.GET("", c.EntryHandler.SearchEntries)
		entries.GET("/summaries/:shiftId/:date", c.EntryHandler.GetSummaryID)
		entries.GET("/:id", c.EntryHandler.GetEntry)
		entries.POST("/:id/supersede", c.EntryHandler.SupersedeEntry)
		entries.POST("/:id/follow-ups", c.EntryHandler.CreateFollowUp)
		entries.GET("/:id/follow-ups", c.EntryHandler.GetFollowUps)
		entries.GET("/:id/references", c.EntryHandler.GetReferences)
	}
}

// ========================================
// ATTACHMENT ROUTES
// ========================================
func setupAttachmentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	attachments := v1.Group("/attachments")
	attachments.Use(middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		attachments.POST("", c.AttachmentHandler.Upload)
		attachments.GET("/:id", c.AttachmentHandler.Get)
		attachments.GET("/:id/download", c.AttachmentHandler.Download)
		attachments.GET("/:id/preview", c.AttachmentHandler.Preview)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  gin.H{},
		}

		// Check database
		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis
		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
