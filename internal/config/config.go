package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-prakriti-web/pkg/validation"
)

type Config struct {
	Host                string
	Port                string
	RequestTimeout      time.Duration
	PredictAPIURL       string
	PredictAllowedHosts []string
	PredictTimeout      time.Duration
	MaxUploadSize       int64
	SessionTTL          time.Duration
	MaxSessions         int
	PreviewMaxDimension int
	CORSAllowedOrigins  []string
	LogLevel            string
	GinMode             string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// MaxRequestBodySize is the transport ceiling for a multipart upload: the advertised
// image ceiling plus room for part headers and boundaries.
func (c *Config) MaxRequestBodySize() int64 {
	return c.MaxUploadSize + 1<<20
}

func LoadFromEnv() (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 90*time.Second),
		PredictAPIURL:       getEnvOrDefault("PREDICT_API_URL", "http://localhost:5000/api/predict"),
		PredictAllowedHosts: parseListOrDefault("PREDICT_ALLOWED_HOSTS", nil),
		PredictTimeout:      parseDurationOrDefault("PREDICT_TIMEOUT", 60*time.Second),
		MaxUploadSize:       parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB
		SessionTTL:          parseDurationOrDefault("SESSION_TTL", 30*time.Minute),
		MaxSessions:         int(parseIntOrDefault("MAX_SESSIONS", 1000)),
		PreviewMaxDimension: int(parseIntOrDefault("PREVIEW_MAX_DIMENSION", 512)),
		CORSAllowedOrigins:  parseListOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		GinMode:             getEnvOrDefault("GIN_MODE", "release"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the prediction endpoint URL.
func (c *Config) Validate() error {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be > 0 (got %d)", c.MaxSessions)
	}
	if c.PreviewMaxDimension <= 0 {
		return fmt.Errorf("PREVIEW_MAX_DIMENSION must be > 0 (got %d)", c.PreviewMaxDimension)
	}
	if c.RequestTimeout <= 0 || c.PredictTimeout <= 0 || c.SessionTTL <= 0 {
		return fmt.Errorf("durations must be > 0 (got request=%s, predict=%s, session=%s)",
			c.RequestTimeout, c.PredictTimeout, c.SessionTTL)
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE: %q", c.GinMode)
	}
	// An empty host list allows any host.
	endpoints := validation.NewURLValidatorWithOptions([]string{"http", "https"}, c.PredictAllowedHosts)
	if err := endpoints.ValidateEndpointURL(c.PredictAPIURL); err != nil {
		return fmt.Errorf("invalid PREDICT_API_URL %q: %w", c.PredictAPIURL, err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
