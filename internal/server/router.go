package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/propscan/audit-backend/internal/handlers"
)

type RouterConfig struct {
	PropertyHandler *handlers.PropertyHandler
	AuditHandler    *handlers.AuditHandler
	StepHandler     *handlers.StepHandler
	MediaHandler    *handlers.MediaHandler
	ChatHandler     *handlers.ChatHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Properties
		api.GET("/properties", cfg.PropertyHandler.List)
		api.POST("/properties", cfg.PropertyHandler.Create)
		api.GET("/properties/:id", cfg.PropertyHandler.Get)
		api.PUT("/properties/:id", cfg.PropertyHandler.Update)
		api.DELETE("/properties/:id", cfg.PropertyHandler.Delete)
		api.POST("/properties/:id/upload-utility-bill", cfg.PropertyHandler.UploadUtilityBill)
		api.POST("/properties/:id/audits", cfg.AuditHandler.Create)
		api.GET("/properties/:id/audit", cfg.AuditHandler.GetByProperty)

		// Audits
		api.POST("/audits", cfg.AuditHandler.Create)
		api.GET("/audits/:id", cfg.AuditHandler.Get)
		api.GET("/audits/:id/steps", cfg.AuditHandler.ListSteps)
		api.POST("/audits/:id/steps", cfg.StepHandler.ResolveOrUpdate)
		api.GET("/audits/:id/media", cfg.AuditHandler.ListMedia)
		api.GET("/audits/:id/steps/:label/media", cfg.MediaHandler.ListByLabel)
		api.POST("/audits/:id/steps/:label/upload", cfg.MediaHandler.UploadByLabel)

		// Steps
		api.PATCH("/steps/:id", cfg.StepHandler.Patch)
		api.POST("/steps/:id/upload", cfg.StepHandler.Upload)
		api.POST("/steps/:id/findings", cfg.StepHandler.CreateFinding)

		// Chat stub
		api.POST("/chat", cfg.ChatHandler.Chat)
	}

	return router
}
