package database

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/tillpoint/tillpoint-api/internal/config"
	"github.com/tillpoint/tillpoint-api/internal/domain/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Staff
		&entity.User{},

		// Catalog
		&entity.Category{},
		&entity.Product{},
		&entity.Ingredient{},
		&entity.Recipe{},
		&entity.RecipeItem{},
		&entity.KitchenStation{},

		// Customers
		&entity.Customer{},

		// Seating
		&entity.Floor{},
		&entity.DiningTable{},

		// Transactions
		&entity.Shift{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.SalePayment{},
		&entity.Refund{},
		&entity.KitchenTicket{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// One open shift per cashier. AutoMigrate cannot express a partial
	// unique index, so it is created directly.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_open_per_cashier
		 ON shifts (cashier_id) WHERE status = 0`,
	).Error; err != nil {
		return fmt.Errorf("failed to create open-shift index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedDefaultData seeds the database with default data (stations, admin user)
func SeedDefaultData(db *gorm.DB) error {
	log.Println("Seeding default data...")

	// Default kitchen stations
	stations := []entity.KitchenStation{
		{Name: "Kitchen", Active: true},
		{Name: "Bar", Active: true},
	}
	for i := range stations {
		var existing entity.KitchenStation
		if err := db.Where("name = ?", stations[i].Name).First(&existing).Error; err != nil {
			if err := db.Create(&stations[i]).Error; err != nil {
				log.Printf("Warning: failed to create kitchen station %s: %v", stations[i].Name, err)
			}
		}
	}

	// Create admin user if configured via environment variables
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail != "" && adminPassword != "" {
		var existingAdmin entity.User
		if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Printf("Warning: failed to hash admin password: %v", err)
			} else {
				if adminName == "" {
					adminName = "Store Admin"
				}
				// Split admin name into first and last name
				firstName := adminName
				lastName := ""
				for i, c := range adminName {
					if c == ' ' {
						firstName = adminName[:i]
						lastName = adminName[i+1:]
						break
					}
				}
				adminUser := entity.User{
					ID:        uuid.New(),
					FirstName: firstName,
					LastName:  lastName,
					Email:     adminEmail,
					Password:  string(hashedPassword),
					Role:      "admin",
					Active:    true,
				}
				if err := db.Create(&adminUser).Error; err != nil {
					log.Printf("Warning: failed to create admin user: %v", err)
				} else {
					log.Printf("Admin user created: %s", adminEmail)
				}
			}
		} else {
			log.Printf("Admin user already exists: %s", adminEmail)
		}
	}

	log.Println("Default data seeding completed")
	return nil
}
