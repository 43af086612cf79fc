package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration (user-facing notifications)
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Checkout gateway configuration
	GatewayProvider   string
	GatewayKeyID      string
	GatewayKeySecret  string
	GatewayBaseURL    string
	GatewayScriptURL  string
	GatewayPNSubKey   string
	GatewayPNChannel  string
	GatewayPNUUID     string
	CurrencyCode      string
	MerchantName      string
	PaymentDescriptor string

	// Booking persistence endpoint (one POST per leg)
	BookingAPIBaseURL string
	BookingAPIToken   string

	// Timeout configuration
	SessionTTL             time.Duration
	ScriptLoadTimeout      time.Duration
	WidgetTimeout          time.Duration
	PersistTimeout         time.Duration
	SandboxCompletionDelay time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Gateway
		GatewayProvider:   getEnv("GATEWAY_PROVIDER", "razorpay"),
		GatewayKeyID:      getEnv("GATEWAY_KEY_ID", "rzp_test_WnFqacWYcdg5qe"),
		GatewayKeySecret:  getEnv("GATEWAY_KEY_SECRET", ""),
		GatewayBaseURL:    getEnv("GATEWAY_BASE_URL", "https://api.razorpay.com"),
		GatewayScriptURL:  getEnv("GATEWAY_SCRIPT_URL", "https://checkout.razorpay.com/v1/checkout.js"),
		GatewayPNSubKey:   getEnv("GATEWAY_PN_SUB_KEY", ""),
		GatewayPNChannel:  getEnv("GATEWAY_PN_CHANNEL", "gateway-payment-notifications"),
		GatewayPNUUID:     getEnv("GATEWAY_PN_UUID", "flight-booking-server"),
		CurrencyCode:      getEnv("CURRENCY_CODE", "INR"),
		MerchantName:      getEnv("MERCHANT_NAME", "Flight Booking"),
		PaymentDescriptor: getEnv("PAYMENT_DESCRIPTOR", "Flight Fare Payment"),

		// Booking persistence
		BookingAPIBaseURL: getEnv("BOOKING_API_BASE_URL", "http://localhost:8090"),
		BookingAPIToken:   getEnv("BOOKING_API_TOKEN", ""),

		// Timeouts
		SessionTTL:             getEnvAsDuration("SESSION_TTL", "30m"),
		ScriptLoadTimeout:      getEnvAsDuration("SCRIPT_LOAD_TIMEOUT", "10s"),
		WidgetTimeout:          getEnvAsDuration("WIDGET_TIMEOUT", "10m"),
		PersistTimeout:         getEnvAsDuration("PERSIST_TIMEOUT", "15s"),
		SandboxCompletionDelay: getEnvAsDuration("SANDBOX_COMPLETION_DELAY", "2s"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
