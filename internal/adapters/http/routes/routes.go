package routes

import (
	"rezo-marketplace/internal/adapters/http/handlers"
	"rezo-marketplace/internal/adapters/http/middleware"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers, then registers all routes
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	roleRequestRepo := repositories.NewRoleRequestRepository(db)
	propertyRepo := repositories.NewPropertyRepository(db)

	// Services
	verificationService := services.NewVerificationService()
	authService := services.NewAuthService(userRepo, profileRepo, refreshTokenRepo, verificationService, cfg)
	profileService := services.NewProfileService(profileRepo, userRepo)
	roleRequestService := services.NewRoleRequestService(roleRequestRepo, userRepo, profileRepo)
	propertyService := services.NewPropertyService(propertyRepo, userRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	profileHandler := handlers.NewProfileHandler(profileService, cfg)
	roleRequestHandler := handlers.NewRoleRequestHandler(roleRequestService)
	adminHandler := handlers.NewAdminHandler(roleRequestService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)

	authRequired := middleware.AuthMiddleware(cfg)

	// Root and health
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger docs
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded files
	app.Static(cfg.Upload.PublicPrefix, cfg.Upload.Dir)

	api := app.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/verify-email", middleware.AuthRateLimiter(), authHandler.VerifyEmail)
	auth.Post("/password-reset", middleware.StrictRateLimiter(), authHandler.RequestPasswordReset)
	auth.Post("/password-reset/verify", middleware.AuthRateLimiter(), authHandler.VerifyResetCode)
	auth.Post("/password-reset/confirm", middleware.AuthRateLimiter(), authHandler.ConfirmPasswordReset)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", authRequired, authHandler.LogoutAll)
	auth.Get("/me", authRequired, authHandler.Me)

	// Profile routes
	profile := api.Group("/profile", authRequired)
	profile.Get("/", profileHandler.Get)
	profile.Put("/", profileHandler.Update)
	profile.Patch("/", profileHandler.Update)
	profile.Post("/photo", profileHandler.UploadAvatar)
	profile.Post("/documents", profileHandler.UploadDocuments)
	profile.Get("/completeness", profileHandler.Completeness)

	// Role request routes
	api.Post("/ownership-requests", authRequired, roleRequestHandler.ApplyOwnership)
	api.Post("/builder-requests", authRequired, roleRequestHandler.ApplyBuilder)
	api.Get("/role-requests/mine", authRequired, roleRequestHandler.MyRequests)
	api.Get("/user-roles/:id/check-roles", authRequired, roleRequestHandler.CheckRoles)

	// Admin review routes
	admin := api.Group("/admin", authRequired, middleware.AdminOnly())
	admin.Get("/role-requests", adminHandler.ListPending)
	admin.Post("/role-requests/:id/approve", adminHandler.Approve)
	admin.Post("/role-requests/:id/reject", adminHandler.Reject)

	// Property routes
	properties := api.Group("/properties")
	properties.Get("/", propertyHandler.List)
	properties.Get("/mine", authRequired, propertyHandler.MyListings)
	properties.Get("/:id", propertyHandler.GetByID)
	properties.Post("/", authRequired, propertyHandler.Create)
	properties.Delete("/:id", authRequired, propertyHandler.Delete)
}
