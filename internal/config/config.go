package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For cache TTL

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBDriver      string        // Database driver: mysql or sqlite
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name (file path for sqlite)
	JWTSecret     string        // JWT secret key
	RedisAddr     string        // Redis server address, empty disables caching
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	CacheTTL      time.Duration // Lifetime of cached catalog reads
	FrontendURL   string        // Origin allowed by CORS
	AdminEmail    string        // Seeded admin account email
	AdminPassword string        // Seeded admin account password
	IsProd        bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	ttl, err := strconv.Atoi(os.Getenv("CACHE_TTL_SECONDS"))
	if err != nil || ttl <= 0 {
		ttl = 60 // Default to one minute, as the admin listings always did
	}
	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),                      // Application port
		DBDriver:      getEnv("DB_DRIVER", "mysql"),                    // Database driver
		DBUser:        os.Getenv("DB_USER"),                            // Database user
		DBPassword:    os.Getenv("DB_PASSWORD"),                        // Database password
		DBHost:        getEnv("DB_HOST", "127.0.0.1"),                  // Database host
		DBPort:        getEnv("DB_PORT", "3306"),                       // Database port
		DBName:        os.Getenv("DB_NAME"),                            // Database name
		JWTSecret:     os.Getenv("JWT_SECRET"),                         // JWT secret key
		RedisAddr:     os.Getenv("REDIS_ADDR"),                         // Redis server address
		RedisPass:     os.Getenv("REDIS_PASS"),                         // Redis password
		RedisDB:       redisDB,                                         // Redis database number
		CacheTTL:      time.Duration(ttl) * time.Second,                // Cache TTL
		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"), // CORS origin
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@storefront.local"), // Seeded admin email
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),                     // Seeded admin password
		IsProd:        os.Getenv("IS_PROD") == "true",                  // Is production environment
	}
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// getEnv returns the variable or a fallback when it is unset
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
