package main

import (
	"net/http"
	"time"

	"catalog-backend/internal/shared/middleware"
	"catalog-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCatalogRoutes(v1, c)
	}

	return router
}

func setupCatalogRoutes(v1 *gin.RouterGroup, c *container.Container) {
	catalog := v1.Group("/catalog")
	{
		entities := catalog.Group("/entities")
		{
			entities.GET("", c.EntityHandler.List)
			entities.POST("", c.EntityHandler.Create)
			entities.GET("/:id", c.EntityHandler.Get)
			entities.PATCH("/:id", c.EntityHandler.Update)
			entities.DELETE("/:id", c.EntityHandler.Delete)
		}

		types := catalog.Group("/types")
		{
			types.GET("", c.SchemaHandler.ListTypes)
			types.GET("/:key", c.SchemaHandler.GetType)
		}

		imports := catalog.Group("/import")
		{
			imports.POST("", c.BulkImportHandler.Import)
			imports.POST("/preview", c.BulkImportHandler.Preview)
			imports.GET("/jobs/:id", c.BulkImportHandler.JobStatus)
		}
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := "healthy"
		checks := gin.H{}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = err.Error()
		} else {
			checks["database"] = "ok"
		}

		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}

		code := http.StatusOK
		if status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}

		ctx.JSON(code, gin.H{
			"status":    status,
			"version":   c.Config.App.Version,
			"timestamp": time.Now().UTC(),
			"checks":    checks,
		})
	}
}
