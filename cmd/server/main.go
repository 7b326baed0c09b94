package main

import (
	"context" // context package is needed for Redis operations
	"time"    // CORS preflight cache

	"storefront/internal/api"     // Custom package for API handlers
	"storefront/internal/config"  // Custom package for configuration
	"storefront/internal/db"      // Database connection
	"storefront/internal/service" // Business services
	"storefront/internal/store"   // Record store

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET must be set") // Tokens cannot be signed without it
	}

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}
	if cfg.DBDriver == "sqlite" {
		// SQLite is used for local runs, create the schema on boot
		if err := db.Migrate(gdb); err != nil {
			logrus.Fatalf("failed to migrate: %v", err)
		}
	}
	records := store.New(gdb)

	// Setup Redis client, the catalog cache is optional
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.WithField("addr", cfg.RedisAddr).Warnf("Redis unreachable, catalog cache disabled: %v", err)
			_ = redisClient.Close()
			redisClient = nil
		}
	}

	catalog := service.NewCatalogService(records, redisClient, cfg.CacheTTL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// The frontend sends the session cookie cross-origin
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.RegisterRoutes(r, api.Deps{
		Store:        records,
		Redis:        redisClient,
		Accounts:     service.NewAccountService(records, cfg.JWTSecret),
		Catalog:      catalog,
		Carts:        service.NewCartService(records),
		Orders:       service.NewOrderService(records, catalog),
		JWTSecret:    cfg.JWTSecret,
		SecureCookie: cfg.IsProd,
	})

	logrus.WithFields(logrus.Fields{"port": cfg.AppPort, "driver": cfg.DBDriver}).Info("Server running") // Log server start
	if err := r.Run(":" + cfg.AppPort); err != nil {                                                     // Start the server on port cfg.AppPort
		logrus.Fatalf("server stopped: %v", err)
	}
}
