package routes

import (
	"time"

	"biblio-circulate/internal/adapters/http/handlers"
	"biblio-circulate/internal/adapters/http/middleware"
	"biblio-circulate/internal/adapters/persistence/repositories"
	"biblio-circulate/internal/config"
	"biblio-circulate/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, cronService *services.CronService) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	loanRepo := repositories.NewLoanRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)

	// Policies from config
	finePolicy := services.FinePolicy{
		RatePerDay:       cfg.Policy.FinePerDay,
		TeacherGraceDays: cfg.Policy.TeacherGraceDays,
		DefaultGraceDays: cfg.Policy.DefaultGraceDays,
	}
	circPolicy := services.CirculationPolicy{
		LoanDays:       cfg.Policy.LoanDays,
		RejectCooldown: time.Duration(cfg.Policy.RejectCooldownHrs) * time.Hour,
		Fine:           finePolicy,
	}

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	bookService := services.NewBookService(bookRepo)
	loanService := services.NewLoanService(loanRepo, bookRepo, userRepo, circPolicy)
	gatewayService := services.NewGatewayService(cfg.Gateway)
	paymentService := services.NewPaymentService(paymentRepo, loanRepo, userRepo, loanService, gatewayService, finePolicy)
	reportService := services.NewReportService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService)
	bookHandler := handlers.NewBookHandler(bookService)
	loanHandler := handlers.NewLoanHandler(loanService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(reportService, cronService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + profile)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes (Admin only)
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	userRoutes.Use(middleware.AdminOnly())
	setupUserRoutes(userRoutes, authHandler)

	// Catalog routes (reads public, mutations Librarian/Admin)
	bookRoutes := apiV1.Group("/books")
	setupBookRoutes(bookRoutes, bookHandler, cfg)

	// Loan lifecycle routes (Authenticated)
	loanRoutes := apiV1.Group("/loans")
	loanRoutes.Use(middleware.AuthMiddleware(cfg))
	setupLoanRoutes(loanRoutes, loanHandler)

	// Payment routes (verify callback is public)
	paymentRoutes := apiV1.Group("/payments")
	setupPaymentRoutes(paymentRoutes, paymentHandler, cfg)

	// Dashboard routes (Librarian/Admin)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.LibrarianOrAdmin())
	dashboardRoutes.Get("/", dashboardHandler.Dashboard)

	// Notification routes (Authenticated)
	noteRoutes := apiV1.Group("/notifications")
	noteRoutes.Use(middleware.AuthMiddleware(cfg))
	noteRoutes.Get("/me", dashboardHandler.MyNotifications)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/register", handler.Register)
	router.Post("/login", handler.Login)

	// Protected routes
	router.Get("/profile", middleware.AuthMiddleware(cfg), handler.Profile)
}

// setupUserRoutes configures user management routes (Admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.AuthHandler) {
	router.Get("/", handler.ListUsers)
	router.Post("/", handler.CreateUser)
}

// setupBookRoutes configures catalog routes
func setupBookRoutes(router fiber.Router, handler *handlers.BookHandler, cfg *config.Config) {
	// Public reads
	router.Get("/", handler.List)
	router.Get("/:id", handler.Get)

	// Librarian/Admin mutations
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.AuthMiddleware(cfg))
	staffRoutes.Use(middleware.LibrarianOrAdmin())

	staffRoutes.Post("/", handler.Create)
	staffRoutes.Put("/:id", handler.Update)
	staffRoutes.Patch("/:id/stock", handler.AdjustStock)
	staffRoutes.Delete("/:id", handler.Delete)
}

// setupLoanRoutes configures loan lifecycle routes
func setupLoanRoutes(router fiber.Router, handler *handlers.LoanHandler) {
	// Borrower routes
	router.Post("/request", handler.Request)
	router.Post("/return", handler.Return)
	router.Get("/me", handler.MyLoans)

	// Librarian/Admin routes
	staffRoutes := router.Group("")
	staffRoutes.Use(middleware.LibrarianOrAdmin())

	staffRoutes.Get("/", handler.List)
	staffRoutes.Get("/:id", handler.Get)
	staffRoutes.Post("/:id/approve", handler.Approve)
	staffRoutes.Post("/:id/reject", handler.Reject)
	staffRoutes.Post("/direct", handler.DirectBorrow)
}

// setupPaymentRoutes configures fine settlement routes
func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler, cfg *config.Config) {
	// Provider callback (public, reached by redirect and webhook)
	router.Get("/verify", handler.Verify)

	// Borrower routes
	router.Get("/quote", middleware.AuthMiddleware(cfg), handler.Quote)
	router.Post("/settle", middleware.AuthMiddleware(cfg), handler.Settle)
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.MyPayments)
}
