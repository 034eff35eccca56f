// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DevSessionSecret is the fallback signing key. It is only accepted with DEV=1.
const DevSessionSecret = "devsessionsecret"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Seed      SeedConfig
	App       AppConfig
	Blob      BlobConfig
	Cache     CacheConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	URL      string // DATABASE_URL, wins over the discrete fields
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AuthConfig holds session settings.
type AuthConfig struct {
	SessionSecret string
	SessionTTL    time.Duration
	BcryptCost    int
	SecureCookie  bool
}

// UploadConfig controls where portfolio images land.
type UploadConfig struct {
	Dir          string
	PublicPrefix string
	MaxBytes     int64
}

// RateLimitConfig holds per-IP request budgets.
type RateLimitConfig struct {
	ContactPerMinute int
	LoginPerMinute   int
	TrustProxy       bool // use X-Forwarded-For for the client ip
}

// SeedConfig describes the admin account created by -seed-only.
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// BlobConfig is the object-storage token. Only its presence is reported.
type BlobConfig struct {
	Token string
}

// CacheConfig selects the portfolio listing cache. An empty RedisAddr keeps
// the cache in process.
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if !c.App.Dev && (c.Auth.SessionSecret == "" || c.Auth.SessionSecret == DevSessionSecret) {
		return errors.New("SESSION_SECRET must be set when DEV is off")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// MigrateURL returns the postgres URL used by golang-migrate.
func (d DatabaseConfig) MigrateURL() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "nats"),
			Password: getEnv("DB_PASSWORD", "nats123"),
			DBName:   getEnv("DB_NAME", "nats"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Debug:    getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			SessionSecret: getEnv("SESSION_SECRET", DevSessionSecret),
			SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24*14)) * time.Hour,
			BcryptCost:    getEnvInt("BCRYPT_COST", 12),
			SecureCookie:  getEnvBool("SECURE_COOKIE", false),
		},
		Upload: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "public/uploads/portfolio"),
			PublicPrefix: getEnv("UPLOAD_PUBLIC_PREFIX", "/uploads/portfolio"),
			MaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)),
		},
		RateLimit: RateLimitConfig{
			ContactPerMinute: getEnvInt("RATE_LIMIT_CONTACT_PER_MIN", 10),
			LoginPerMinute:   getEnvInt("RATE_LIMIT_LOGIN_PER_MIN", 5),
			TrustProxy:       getEnvBool("TRUST_PROXY", false),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("ADMIN_EMAIL", ""),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			AdminName:     getEnv("ADMIN_NAME", "Admin"),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", false),
			Migrations: getEnvBool("MIGRATIONS", false),
		},
		Blob: BlobConfig{
			Token: getEnv("BLOB_READ_WRITE_TOKEN", ""),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			TTL:           time.Duration(getEnvInt("CACHE_TTL_SECONDS", 60)) * time.Second,
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
