package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"rezo-marketplace/internal/adapters/http/middleware"
	"rezo-marketplace/internal/adapters/http/routes"
	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/services"

	_ "rezo-marketplace/docs"

	"github.com/gofiber/fiber/v2"
)

// @title Rezo Marketplace API
// @version 1.0
// @description Real estate marketplace backend with onboarding and role requests
// @host localhost:3000
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// 2. Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	// 3. Run migrations
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	// 4. Seed admin user
	if err := config.SeedAdminUser(db); err != nil {
		log.Printf("⚠️ Failed to seed admin user: %v", err)
	}

	// 5. Start background jobs
	cronService := services.NewCronService(repositories.NewRefreshTokenRepository(db))
	cronService.Start()

	// 6. Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Rezo Marketplace",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// 7. Setup middleware and routes
	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg)

	// 8. Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")
		cronService.Stop()
		_ = config.CloseDatabase()
		_ = app.Shutdown()
	}()

	// 9. Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
