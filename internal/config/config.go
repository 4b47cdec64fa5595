package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	JWTSecret string

	Currency          string
	StripeSecretKey   string
	PaymentSuccessURL string
	PaymentCancelURL  string
	AllowFakePayments bool

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	KafkaBrokers          string
	AppointmentEventTopic string

	GeminiAPIKey   string
	GeminiModelID  string
	ChatSessionTTL time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Currency:          strings.ToLower(getEnv("CURRENCY", "usd")),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		PaymentSuccessURL: getEnv("PAYMENT_SUCCESS_URL", ""),
		PaymentCancelURL:  getEnv("PAYMENT_CANCEL_URL", ""),
		AllowFakePayments: getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Prescripto Clinic"),

		KafkaBrokers:          getEnv("KAFKA_BROKERS", ""),
		AppointmentEventTopic: getEnv("APPOINTMENT_EVENT_TOPIC", "appointment-events"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-1.5-pro-latest"),
		ChatSessionTTL: getEnvAsDuration("CHAT_SESSION_TTL", 24*time.Hour),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
