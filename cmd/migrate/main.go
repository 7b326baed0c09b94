package main

import (
	"context" // Context for the admin seed

	"storefront/internal/config"  // Custom import path (Config)
	"storefront/internal/db"      // Custom import path (Database)
	"storefront/internal/service" // Account service for the admin seed
	"storefront/internal/store"   // Record store

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	// Seed the admin account when a password is configured
	if cfg.AdminPassword == "" {
		logrus.Info("ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	accounts := service.NewAccountService(store.New(gdb), cfg.JWTSecret)
	created, err := accounts.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logrus.Fatalf("admin seed failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{"email": cfg.AdminEmail, "created": created}).Info("Admin account ready")
}
