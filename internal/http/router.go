package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates the HTTP router. Routes whose dependency is missing
// from cfg are not registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Settings != nil {
		settings := NewSettingsController(cfg.Settings, cfg.Scheduler, cfg.Audit)
		router.GET("/api/settings", settings.GetSettings)
		router.PUT("/api/settings", settings.UpdateSettings)
		router.DELETE("/api/settings", settings.ResetSettings)

		imports := NewImportController(cfg.Settings, cfg.Scheduler, cfg.TaskQueue, cfg.Runs, cfg.Status)
		router.POST("/api/import", imports.StartImport)
		router.GET("/api/import/status", imports.GetStatus)
		if cfg.Runs != nil {
			router.GET("/api/import/runs", imports.ListRuns)
			router.GET("/api/import/runs/:id", imports.GetRun)
		}
	}

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit)
		router.GET("/api/audit", auditController.GetAuditEvents)
	}

	return router
}
