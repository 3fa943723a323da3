package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tillpoint/tillpoint-api/internal/application/service"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/infrastructure/database"
	"github.com/tillpoint/tillpoint-api/internal/infrastructure/repository"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/handler"
	"github.com/tillpoint/tillpoint-api/internal/presentation/http/routes"
	"github.com/tillpoint/tillpoint-api/internal/scheduler"
	"github.com/tillpoint/tillpoint-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	ticketRepo := repository.NewKitchenTicketRepository(db)
	stationRepo := repository.NewKitchenStationRepository(db)

	// Initialize services
	consumption := service.NewConsumptionResolver(productRepo, ingredientRepo)
	loyalty := service.NewLoyaltyCalculator(customerRepo)
	reconciliation := service.NewReconciliationService(saleRepo)
	shiftService := service.NewShiftService(shiftRepo, saleRepo, reconciliation, cfg.Shift)
	saleService := service.NewSaleService(txManager, saleRepo, shiftRepo, productRepo, ticketRepo, shiftService, consumption, loyalty)
	authService := service.NewAuthService(userRepo, shiftService, jwtManager)
	productService := service.NewProductService(productRepo, categoryRepo)
	customerService := service.NewCustomerService(customerRepo)
	kitchenService := service.NewKitchenService(ticketRepo, stationRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Sale:     handler.NewSaleHandler(saleService),
		Shift:    handler.NewShiftHandler(shiftService),
		Product:  handler.NewProductHandler(productService),
		Customer: handler.NewCustomerHandler(customerService),
		Kitchen:  handler.NewKitchenHandler(kitchenService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
	})

	// Start the shift scheduler
	shiftScheduler := scheduler.New(shiftService, cfg.Shift)
	shiftScheduler.Start()

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests and stop the scheduler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shiftScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
