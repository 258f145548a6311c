// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/stillwater/lodge/internal/apperr"
)

// Storage and registry drivers.
const (
	StorageMinio = "minio"
	StorageS3    = "s3"

	RegistryPostgres = "postgres"
	RegistryDynamo   = "dynamodb"
	RegistryMemory   = "memory"
)

// Signed URL expiry bounds.
const (
	MinUploadTTL = 60 * time.Second
	MaxUploadTTL = 300 * time.Second
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel slog.Level

	// Object storage (S3-compatible: MinIO locally, S3 in production)
	StorageDriver    string
	StorageEndpoint  string
	StorageRegion    string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	// browser-accessible base URL, e.g. "https://media.stillwaterlodge.com"
	StoragePublicBase string

	UploadTTL    time.Duration
	UploadAPIKey string

	RegistryDriver      string
	DatabaseURL         string
	RegistryTable       string
	RegistryFolderIndex string
	DynamoEndpoint      string
	RegistryCacheSize   int
	RegistryCacheTTL    time.Duration

	OIDCJWKSURL  string
	OIDCIssuer   string
	OIDCAudience string
}

// Load reads configuration from a .env file (if present) and environment
// variables. Missing required values produce a configuration error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", StorageMinio)),
		StorageEndpoint:   os.Getenv("STORAGE_ENDPOINT"),
		StorageRegion:     os.Getenv("STORAGE_REGION"),
		StorageAccessKey:  os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey:  os.Getenv("STORAGE_SECRET_KEY"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		StorageUseSSL:     getEnv("STORAGE_USE_SSL", "false") == "true",
		StoragePublicBase: os.Getenv("STORAGE_PUBLIC_BASE"),

		UploadAPIKey: os.Getenv("UPLOAD_API_KEY"),

		RegistryDriver:      strings.ToLower(getEnv("REGISTRY_DRIVER", RegistryPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RegistryTable:       os.Getenv("REGISTRY_TABLE"),
		RegistryFolderIndex: getEnv("REGISTRY_FOLDER_INDEX", "folder-index"),
		DynamoEndpoint:      os.Getenv("DYNAMODB_ENDPOINT"),

		OIDCJWKSURL:  os.Getenv("OIDC_JWKS_URL"),
		OIDCIssuer:   os.Getenv("OIDC_ISSUER"),
		OIDCAudience: os.Getenv("OIDC_AUDIENCE"),
	}

	var errs []error

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.LogLevel = level

	ttl, err := time.ParseDuration(getEnv("UPLOAD_URL_TTL", "5m"))
	if err != nil {
		errs = append(errs, apperr.Configuration("UPLOAD_URL_TTL: "+err.Error()))
	}
	cfg.UploadTTL = clampTTL(ttl)

	cfg.RegistryCacheSize, err = strconv.Atoi(getEnv("REGISTRY_CACHE_SIZE", "128"))
	if err != nil {
		errs = append(errs, apperr.Configuration("REGISTRY_CACHE_SIZE: "+err.Error()))
	}
	cfg.RegistryCacheTTL, err = time.ParseDuration(getEnv("REGISTRY_CACHE_TTL", "30s"))
	if err != nil {
		errs = append(errs, apperr.Configuration("REGISTRY_CACHE_TTL: "+err.Error()))
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// IdentityEnabled reports whether admin routes require a verified session.
func (c *Config) IdentityEnabled() bool {
	return c.OIDCJWKSURL != ""
}

func (c *Config) validate() []error {
	var errs []error
	require := func(name, value string) {
		if value == "" {
			errs = append(errs, apperr.Configuration(name+" is required"))
		}
	}

	require("STORAGE_REGION", c.StorageRegion)
	require("STORAGE_BUCKET", c.StorageBucket)
	require("STORAGE_PUBLIC_BASE", c.StoragePublicBase)

	switch c.StorageDriver {
	case StorageMinio:
		require("STORAGE_ENDPOINT", c.StorageEndpoint)
		require("STORAGE_ACCESS_KEY", c.StorageAccessKey)
		require("STORAGE_SECRET_KEY", c.StorageSecretKey)
	case StorageS3:
	default:
		errs = append(errs, apperr.Configuration(fmt.Sprintf("STORAGE_DRIVER %q is not supported", c.StorageDriver)))
	}

	switch c.RegistryDriver {
	case RegistryPostgres:
		require("DATABASE_URL", c.DatabaseURL)
	case RegistryDynamo:
		require("REGISTRY_TABLE", c.RegistryTable)
	case RegistryMemory:
	default:
		errs = append(errs, apperr.Configuration(fmt.Sprintf("REGISTRY_DRIVER %q is not supported", c.RegistryDriver)))
	}

	return errs
}

func clampTTL(d time.Duration) time.Duration {
	if d < MinUploadTTL {
		return MinUploadTTL
	}
	if d > MaxUploadTTL {
		return MaxUploadTTL
	}
	return d
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, apperr.Configuration("LOG_LEVEL: " + err.Error())
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
