package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database    DatabaseConfig
	JWT         JWTConfig
	App         AppConfig
	Geocoder    GeocoderConfig
	Geolocation GeolocationConfig
	Workday     WorkdayConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
}

// GeocoderConfig holds reverse-geocoding provider configuration
type GeocoderConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// GeolocationConfig holds device location acquisition configuration
type GeolocationConfig struct {
	AcquireTimeout time.Duration
	MaxFixAge      time.Duration
}

// WorkdayConfig holds the workday policy used for status derivation
type WorkdayConfig struct {
	StartHour    int
	StartMinute  int
	GraceMinutes int
	FullDayHours float64
	HalfDayHours float64
}

func Load() (*Config, error) {
	// Optional in production where env vars come from the platform
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "shiftly-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Reverse geocoding configuration
	geocoderTimeout, err := time.ParseDuration(getEnv("GEOCODER_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODER_TIMEOUT: %w", err)
	}

	config.Geocoder = GeocoderConfig{
		BaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		UserAgent: getEnv("GEOCODER_USER_AGENT", "shiftly-attendance/1.0"),
		Timeout:   geocoderTimeout,
	}

	// Geolocation acquisition configuration
	acquireTimeout, err := time.ParseDuration(getEnv("GEOLOCATION_ACQUIRE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOLOCATION_ACQUIRE_TIMEOUT: %w", err)
	}
	maxFixAge, err := time.ParseDuration(getEnv("GEOLOCATION_MAX_FIX_AGE", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOLOCATION_MAX_FIX_AGE: %w", err)
	}

	config.Geolocation = GeolocationConfig{
		AcquireTimeout: acquireTimeout,
		MaxFixAge:      maxFixAge,
	}

	// Workday policy configuration
	startHour, err := strconv.Atoi(getEnv("WORKDAY_START_HOUR", "9"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_START_HOUR: %w", err)
	}
	startMinute, err := strconv.Atoi(getEnv("WORKDAY_START_MINUTE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_START_MINUTE: %w", err)
	}
	graceMinutes, err := strconv.Atoi(getEnv("WORKDAY_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_GRACE_MINUTES: %w", err)
	}
	fullDayHours, err := strconv.ParseFloat(getEnv("WORKDAY_FULL_DAY_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_FULL_DAY_HOURS: %w", err)
	}
	halfDayHours, err := strconv.ParseFloat(getEnv("WORKDAY_HALF_DAY_HOURS", "4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKDAY_HALF_DAY_HOURS: %w", err)
	}

	config.Workday = WorkdayConfig{
		StartHour:    startHour,
		StartMinute:  startMinute,
		GraceMinutes: graceMinutes,
		FullDayHours: fullDayHours,
		HalfDayHours: halfDayHours,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if c.Workday.StartHour < 0 || c.Workday.StartHour > 23 {
		return fmt.Errorf("WORKDAY_START_HOUR must be between 0 and 23")
	}
	if c.Workday.HalfDayHours > c.Workday.FullDayHours {
		return fmt.Errorf("WORKDAY_HALF_DAY_HOURS must not exceed WORKDAY_FULL_DAY_HOURS")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the configured local timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
