package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/medsuite/pharmacare-api/internal/config"
	domainRepo "github.com/medsuite/pharmacare-api/internal/domain/repository"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/handler"
	"github.com/medsuite/pharmacare-api/internal/presentation/http/middleware"
	"github.com/medsuite/pharmacare-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth         *handler.AuthHandler
	Patient      *handler.PatientHandler
	Prescription *handler.PrescriptionHandler
	Inventory    *handler.InventoryHandler
	Bill         *handler.BillHandler
	Dashboard    *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(deps.Cfg.RateLimit)
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.Refresh)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Profile
	protected.GET("/me", h.Auth.Me)

	// Dashboard
	dashboard := protected.Group("/dashboard")
	dashboard.Use(middleware.RequirePermission("view-dashboard"))
	{
		dashboard.GET("", h.Dashboard.Stats)
	}

	// Patients
	registerPatientRoutes(protected, h)

	// Prescriptions
	registerPrescriptionRoutes(protected, h)

	// Inventory, categories and stock adjustments
	registerInventoryRoutes(protected, h)

	// Bills and settlement
	registerBillRoutes(protected, h, deps)
}

func registerPatientRoutes(protected *gin.RouterGroup, h *Handlers) {
	patients := protected.Group("/patients")
	patients.Use(middleware.RequirePermission("manage-patients"))
	{
		patients.GET("", h.Patient.List)
		patients.POST("", h.Patient.Create)
		patients.GET("/:id", h.Patient.Get)
		patients.PUT("/:id", h.Patient.Update)
		patients.DELETE("/:id", h.Patient.Delete)
	}
}

func registerPrescriptionRoutes(protected *gin.RouterGroup, h *Handlers) {
	prescriptions := protected.Group("/prescriptions")
	prescriptions.Use(middleware.RequirePermission("manage-prescriptions"))
	{
		prescriptions.GET("", h.Prescription.List)
		prescriptions.POST("", h.Prescription.Create)
		prescriptions.GET("/:id", h.Prescription.Get)
		prescriptions.POST("/:id/void", h.Prescription.Void)
	}
}

func registerInventoryRoutes(protected *gin.RouterGroup, h *Handlers) {
	inventory := protected.Group("/inventory")
	inventory.Use(middleware.RequirePermission("manage-inventory"))
	{
		inventory.GET("", h.Inventory.List)
		inventory.POST("", h.Inventory.Create)
		inventory.GET("/low-stock", h.Inventory.LowStock)
		inventory.GET("/:id", h.Inventory.Get)
		inventory.PUT("/:id", h.Inventory.Update)
		inventory.DELETE("/:id", h.Inventory.Delete)
	}

	categories := protected.Group("/categories")
	categories.Use(middleware.RequirePermission("manage-categories"))
	{
		categories.GET("", h.Inventory.ListCategories)
		categories.POST("", h.Inventory.CreateCategory)
		categories.DELETE("/:id", h.Inventory.DeleteCategory)
	}

	adjustments := protected.Group("/adjustments")
	adjustments.Use(middleware.RequirePermission("manage-adjustments"))
	{
		adjustments.GET("", h.Inventory.ListAdjustments)
		adjustments.POST("", h.Inventory.CreateAdjustment)
		adjustments.POST("/:id/resolve", h.Inventory.ResolveAdjustment)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	bills := protected.Group("/bills")
	bills.Use(middleware.RequirePermission("manage-bills"))
	{
		bills.GET("", h.Bill.List)
		// Settlement uses idempotency middleware so a retried request cannot
		// decrement stock twice
		bills.POST("", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Bill.Settle)
		bills.GET("/number/:number", h.Bill.GetByNumber)
		bills.GET("/:id", h.Bill.Get)
		bills.POST("/:id/void", h.Bill.Void)
	}
}
