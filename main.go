package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Samy440/ebookstore/auth"
	"github.com/Samy440/ebookstore/config"
	"github.com/Samy440/ebookstore/events"
	"github.com/Samy440/ebookstore/metrics"
	"github.com/Samy440/ebookstore/middleware"
	"github.com/Samy440/ebookstore/models"
	"github.com/Samy440/ebookstore/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().Msg("starting bookstore API")

	// Init DB
	db := initDatabase(cfg)

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Book{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Favorite{},
	); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	// First admin comes from the environment, never from registration
	if err := ensureAdmin(db); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	// Order event publisher; disabled when AMQP_URL is unset
	pub, err := events.Connect(cfg.AMQPURL)
	if err != nil {
		log.Fatal().Err(err).Msg("event publisher connection failed")
	}
	defer pub.Close()

	// Gin setup
	r := gin.Default()
	r.Use(metrics.Middleware())

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Bookstore API"})
	})
	r.GET("/healthz", healthz(db))
	r.GET("/metrics", middleware.RequireMetricsKey(), metrics.Handler())

	// Setup routes
	routes.SetupRoutes(r, db, pub)

	// Start server
	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.PrettyLog {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// initDatabase sets up the GORM DB connection. TranslateError turns
// driver-specific unique violations into gorm.ErrDuplicatedKey, which the
// registration and favorites paths rely on.
func initDatabase(cfg config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	return db
}

// ensureAdmin creates or promotes the account named by ADMIN_USERNAME /
// ADMIN_EMAIL / ADMIN_PASSWORD. Registration always produces standard
// users, so the first admin has to come from the environment.
func ensureAdmin(db *gorm.DB) error {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		if !existing.IsAdmin {
			existing.IsAdmin = true
			if err := db.Save(&existing).Error; err != nil {
				return err
			}
			log.Info().Str("username", username).Msg("bootstrap account promoted to admin")
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
		IsActive:       true,
		IsAdmin:        true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("bootstrap admin created")
	return nil
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
