package config

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fleetops/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB opens the fleet store and migrates the collections. The default
// is an embedded sqlite file so the service stays usable with nothing else
// running; set DB_DRIVER=postgres for a shared store.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	db, err := openDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Migrate the fleet collections
	err = db.AutoMigrate(
		&models.Truck{},
		&models.Driver{},
		&models.Trip{},
		&models.Destination{},
		&models.Notification{},
		&models.TripHistory{},
		&models.DriverTripHistory{},
		&models.TruckSchedule{},
		&models.DriverSchedule{},
		&models.ScheduledMaintenance{},
		&models.DriverDocument{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	// Assign to global
	DB = db
}

func openDB() (*gorm.DB, error) {
	switch getEnv("DB_DRIVER", "sqlite") {
	case "postgres":
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "password")
		dbname := getEnv("DB_NAME", "fleetops")
		sslmode := getEnv("DB_SSLMODE", "disable")
		timezone := getEnv("DB_TIMEZONE", "UTC")

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone,
		)
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(getEnv("DB_PATH", "./fleetops.db")), &gorm.Config{})
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}

// GetEnv exposes the env helper to other packages.
func GetEnv(key, defaultValue string) string {
	return getEnv(key, defaultValue)
}
