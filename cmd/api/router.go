package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"editflow-backend/internal/shared/middleware"
	"editflow-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Raw footage and deliverable cuts come in as multipart uploads.
	router.MaxMultipartMemory = 64 << 20

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		c.UserHandler.RegisterAuthRoutes(v1)

		// Client portal: no account, the project public ID is the credential.
		public := v1.Group("/public")
		{
			c.PublicProjectHandler.RegisterRoutes(public)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireAdmin())
		{
			c.ProjectHandler.RegisterAdminRoutes(admin)
			c.UserHandler.RegisterAdminRoutes(admin)
		}

		editor := v1.Group("/editor")
		editor.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireEditor())
		{
			c.ProjectHandler.RegisterEditorRoutes(editor)
		}
	}

	return router
}

func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  gin.H{},
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.Ping(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

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
