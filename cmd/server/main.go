package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"biblio-circulate/internal/adapters/http/middleware"
	"biblio-circulate/internal/adapters/http/routes"
	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/config"
	"biblio-circulate/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "biblio-circulate/docs" // Swagger docs
)

// @title Biblio Circulate API
// @version 1.0
// @description Library circulation API: catalog, loan lifecycle and fine settlement.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@library.example.org

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed starter accounts and catalog
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Start cron service for the overdue sweep (08:30 daily)
	finePolicy := services.FinePolicy{
		RatePerDay:       cfg.Policy.FinePerDay,
		TeacherGraceDays: cfg.Policy.TeacherGraceDays,
		DefaultGraceDays: cfg.Policy.DefaultGraceDays,
	}
	cronService := services.NewCronService(db, finePolicy)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Biblio Circulate API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		ReadTimeout:  30 * time.Second,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg, cronService)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
