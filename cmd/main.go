package main

import (
	"fmt"
	"os"
	"time"

	"github.com/propscan/audit-backend/internal/db"
	"github.com/propscan/audit-backend/internal/handlers"
	"github.com/propscan/audit-backend/internal/logger"
	"github.com/propscan/audit-backend/internal/repos"
	"github.com/propscan/audit-backend/internal/server"
	"github.com/propscan/audit-backend/internal/services"
	"github.com/propscan/audit-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	bucketPrivate := utils.GetEnvAsBool("BUCKET_PRIVATE", false, log)
	signedURLTTL := time.Duration(utils.GetEnvAsInt("SIGNED_URL_TTL", 3600, log)) * time.Second

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	propertyRepo := repos.NewPropertyRepo(thePG, log)
	auditRepo := repos.NewAuditRepo(thePG, log)
	auditStepRepo := repos.NewAuditStepRepo(thePG, log)
	auditMediaRepo := repos.NewAuditMediaRepo(thePG, log)
	auditFindingRepo := repos.NewAuditFindingRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	stepService := services.NewStepService(thePG, log, auditStepRepo)
	mediaService := services.NewMediaService(thePG, log, auditMediaRepo, auditStepRepo, stepService, bucketService, bucketPrivate, signedURLTTL)
	auditService := services.NewAuditService(thePG, log, auditRepo, auditStepRepo, propertyRepo, mediaService)
	propertyService := services.NewPropertyService(thePG, log, propertyRepo, bucketService, bucketPrivate, signedURLTTL)
	findingService := services.NewFindingService(thePG, log, auditFindingRepo, auditStepRepo)
	chatService := services.NewChatService(log)

	// Handlers
	log.Info("Setting up handlers from main...")
	propertyHandler := handlers.NewPropertyHandler(log, propertyService)
	auditHandler := handlers.NewAuditHandler(log, auditService, mediaService)
	stepHandler := handlers.NewStepHandler(log, stepService, mediaService, findingService)
	mediaHandler := handlers.NewMediaHandler(log, mediaService)
	chatHandler := handlers.NewChatHandler(log, chatService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		PropertyHandler: propertyHandler,
		AuditHandler:    auditHandler,
		StepHandler:     stepHandler,
		MediaHandler:    mediaHandler,
		ChatHandler:     chatHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
