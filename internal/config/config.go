package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Policy   PolicyConfig
	Gateway  GatewayConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// PolicyConfig holds circulation policy knobs
type PolicyConfig struct {
	LoanDays          int // due date window after a loan becomes active
	FinePerDay        int64
	TeacherGraceDays  int
	DefaultGraceDays  int
	RejectCooldownHrs int
}

// GatewayConfig holds external payment provider configuration
type GatewayConfig struct {
	BaseURL   string
	SecretKey string
	ReturnURL string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Policy:   loadPolicyConfig(),
		Gateway:  loadGatewayConfig(appMode),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "biblio_circulate"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", "default_secret"),
		AccessTokenMins: accessMins,
	}
}

// loadPolicyConfig loads circulation policy (fixed defaults, overridable)
func loadPolicyConfig() PolicyConfig {
	loanDays, _ := strconv.Atoi(getEnv("LOAN_DAYS", "7"))
	finePerDay, _ := strconv.ParseInt(getEnv("FINE_PER_DAY", "10"), 10, 64)
	teacherGrace, _ := strconv.Atoi(getEnv("TEACHER_GRACE_DAYS", "2"))
	defaultGrace, _ := strconv.Atoi(getEnv("DEFAULT_GRACE_DAYS", "1"))
	cooldown, _ := strconv.Atoi(getEnv("REJECT_COOLDOWN_HOURS", "24"))

	return PolicyConfig{
		LoanDays:          loanDays,
		FinePerDay:        finePerDay,
		TeacherGraceDays:  teacherGrace,
		DefaultGraceDays:  defaultGrace,
		RejectCooldownHrs: cooldown,
	}
}

// loadGatewayConfig loads payment gateway config based on mode
func loadGatewayConfig(mode string) GatewayConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return GatewayConfig{
		BaseURL:   getEnv(prefix+"GATEWAY_BASE_URL", "https://api.pay.example.com/v1"),
		SecretKey: getEnv(prefix+"GATEWAY_SECRET_KEY", ""),
		ReturnURL: getEnv(prefix+"GATEWAY_RETURN_URL", "http://localhost:3000/api/v1/payments/verify"),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://library.example.org"
	}
	return origins
}
