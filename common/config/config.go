package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// JointStrategy selects how joint-group siblings are resolved for a scanned
// card. Chosen once per deployment, never per scan.
type JointStrategy string

const (
	// JointByLotModel bundles every card sharing the same (model, lot) pair.
	JointByLotModel JointStrategy = "by_lot_model"
	// JointByField bundles cards whose joint-A/joint-B keys match the
	// scanned card's corresponding key.
	JointByField JointStrategy = "by_joint_field"
	// JointByHarnessCode bundles cards sharing a harness code within a lot.
	JointByHarnessCode JointStrategy = "by_harness_code"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Scan     ScanConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
	// GateKey is the shared floor password checked on mutating routes.
	// Empty disables the gate.
	GateKey string
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	Host           string
	Port           int
	Database       string
	User           string
	Password       string
	MaxConns       int
	MinConns       int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds summary cache settings
type RedisConfig struct {
	Enabled    bool
	Addr       string
	Password   string
	DB         int
	SummaryTTL time.Duration
}

// ScanConfig holds scan-confirmation settings
type ScanConfig struct {
	JointStrategy JointStrategy
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8080),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"), // Default to text for development
			GateKey:     getEnv("GATE_KEY", ""),
		},
		Database: DatabaseConfig{
			Host:           getEnv("POSTGRES_HOST", "localhost"),
			Port:           getEnvInt("POSTGRES_PORT", 5432),
			Database:       getEnv("POSTGRES_DB", "kanban"),
			User:           getEnv("POSTGRES_USER", "kanban"),
			Password:       getEnv("POSTGRES_PASSWORD", "kanban"),
			MaxConns:       getEnvInt("POSTGRES_MAX_CONNS", 50),
			MinConns:       getEnvInt("POSTGRES_MIN_CONNS", 10),
			MaxIdleTime:    getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime:    getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "common/db/migrations"),
		},
		Redis: RedisConfig{
			Enabled:    getEnvBool("REDIS_ENABLED", true),
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			SummaryTTL: getEnvDuration("SUMMARY_CACHE_TTL", 30*time.Second),
		},
		Scan: ScanConfig{
			JointStrategy: JointStrategy(getEnv("JOINT_STRATEGY", string(JointByField))),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("max_conns must be >= min_conns")
	}

	switch c.Scan.JointStrategy {
	case JointByLotModel, JointByField, JointByHarnessCode:
	default:
		return fmt.Errorf("unknown joint strategy: %q", c.Scan.JointStrategy)
	}

	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
