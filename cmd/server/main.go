package main

import (
	"log"

	"afiliados-api/internal/api"
	"afiliados-api/internal/asaas"
	"afiliados-api/internal/config"
	"afiliados-api/internal/database"
	"afiliados-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	cfg := config.Load()

	// Initialize logging
	logging.InitLogging()

	// Initialize database (and Redis when configured)
	if err := database.InitDatabase(cfg); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	if cfg.AsaasAPIKey == "" {
		logging.Infof("ASAAS_API_KEY not set: provider operations disabled, lookups served from the local mirror")
	}

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()

	// Wire dependencies and routes
	client := asaas.New(cfg)
	store := database.NewStore(database.GetDB())
	api.New(cfg, client, store, database.GetRedis()).SetupRoutes(r)

	// Start server
	logging.Infof("Starting server on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
