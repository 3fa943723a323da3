package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/handler"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/middleware"
	"github.com/tillpoint/tillpoint-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Sale     *handler.SaleHandler
	Shift    *handler.ShiftHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Kitchen  *handler.KitchenHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
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
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Auth/Profile routes
	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/register", middleware.RequireRole("admin"), h.Auth.Register)

	// Sales
	sales := protected.Group("/sales")
	{
		sales.POST("", h.Sale.Commit)
		sales.GET("", h.Sale.List)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/refund", middleware.RequireRole("admin", "manager"), h.Sale.Refund)
	}

	// Shifts
	shifts := protected.Group("/shifts")
	{
		shifts.POST("/open", h.Shift.Open)
		shifts.GET("", h.Shift.List)
		shifts.GET("/current", h.Shift.Current)
		shifts.GET("/:id", h.Shift.Get)
		shifts.GET("/:id/totals", h.Shift.Totals)
		shifts.POST("/:id/close", h.Shift.Close)
	}

	// Products
	products := protected.Group("/products")
	{
		products.POST("", middleware.RequireRole("admin", "manager"), h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.LowStock)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", middleware.RequireRole("admin", "manager"), h.Product.Update)
		products.DELETE("/:id", middleware.RequireRole("admin"), h.Product.Delete)
	}

	// Categories
	categories := protected.Group("/categories")
	{
		categories.POST("", middleware.RequireRole("admin", "manager"), h.Product.CreateCategory)
		categories.GET("", h.Product.ListCategories)
	}

	// Customers
	customers := protected.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", middleware.RequireRole("admin"), h.Customer.Delete)
	}

	// Kitchen display
	kitchen := protected.Group("/kitchen")
	{
		kitchen.GET("/tickets", h.Kitchen.ListTickets)
		kitchen.PATCH("/tickets/:id/status", h.Kitchen.UpdateTicketStatus)
		kitchen.GET("/stations", h.Kitchen.ListStations)
		kitchen.POST("/stations", middleware.RequireRole("admin", "manager"), h.Kitchen.CreateStation)
	}
}
