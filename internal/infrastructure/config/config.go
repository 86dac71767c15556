// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultArchiveBaseURL is the NASA Exoplanet Archive TAP sync endpoint
const DefaultArchiveBaseURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string
	LogLevel   string

	// Server
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	APIPrefix       string
	CORSAllowOrigin string

	// Catalog store
	StoreDriver string

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL
	PostgresDSN string

	// Exoplanet archive
	ArchiveBaseURL      string
	ArchiveTimeout      time.Duration
	ArchiveToken        string
	ArchiveClientID     string
	ArchiveClientSecret string
	ArchiveTokenURL     string

	// Metrics
	MetricsNamespace string
	PushgatewayURL   string
}

// ConfigurationError lists required settings that are absent
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:      getEnv("APP_VERSION", "1.0.0"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnv("PORT", "3000"),
		ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 30*time.Second),
		APIPrefix:       normalizePrefix(getEnv("API_PREFIX", "/api")),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "*"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDB:       getEnv("MONGO_DB", "nextplanet"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),

		ArchiveBaseURL:      getEnv("EXO_API_BASE", DefaultArchiveBaseURL),
		ArchiveTimeout:      getEnvAsDuration("EXO_API_TIMEOUT", 60*time.Second),
		ArchiveToken:        getEnv("EXO_API_TOKEN", ""),
		ArchiveClientID:     getEnv("EXO_API_CLIENT_ID", ""),
		ArchiveClientSecret: getEnv("EXO_API_CLIENT_SECRET", ""),
		ArchiveTokenURL:     getEnv("EXO_API_TOKEN_URL", ""),

		MetricsNamespace: getEnv("METRICS_NAMESPACE", "nextplanet"),
		PushgatewayURL:   getEnv("PUSHGATEWAY_URL", ""),
	}

	return config, nil
}

// Validate checks the settings the catalog store needs
func (c *Config) Validate() error {
	var missing []string

	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGODB_URI")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			missing = append(missing, "POSTGRES_DSN")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// ValidateSync checks the settings an ingestion run needs on top of Validate
func (c *Config) ValidateSync() error {
	var missing []string
	if err := c.Validate(); err != nil {
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			return err
		}
		missing = append(missing, cfgErr.Missing...)
	}

	if c.ArchiveBaseURL == "" {
		missing = append(missing, "EXO_API_BASE")
	}
	if c.ArchiveClientID != "" {
		if c.ArchiveClientSecret == "" {
			missing = append(missing, "EXO_API_CLIENT_SECRET")
		}
		if c.ArchiveTokenURL == "" {
			missing = append(missing, "EXO_API_TOKEN_URL")
		}
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("45s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}
