package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	Version     string
	LogLevel    string
	LogJSON     bool
	CORSOrigins []string

	FirebaseProject         string
	FirebaseCredentialsFile string
	FirebaseCredentialsJSON string

	AuthMode    string
	AuthJWKSURL string

	StorageBucket  string
	StorageTimeout time.Duration
	UploadMaxBytes int64

	StripeSecretKey string
	PaymentCurrency string
	PaymentTimeout  time.Duration

	ResendAPIKey   string
	EmailFrom      string
	EmailWorkers   int
	EmailQueueSize int

	ChatMessagesPerMinute int
	ChatCreatesPerMinute  int
	TypingEventsPerSecond int
}

const (
	AuthModeHeader   = "header"
	AuthModeFirebase = "firebase"
	AuthModeJWKS     = "jwks"
)

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("PORT", getEnv("SERVER_PORT", "8080")),
		Environment: getEnv("ENVIRONMENT", "development"),
		Version:     getEnv("APP_VERSION", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogJSON:     getEnvAsBool("LOG_JSON", false),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"*"}),

		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),

		AuthMode:    strings.ToLower(getEnv("AUTH_MODE", AuthModeHeader)),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		StorageBucket:  getEnv("STORAGE_BUCKET", ""),
		StorageTimeout: time.Duration(getEnvAsInt64("STORAGE_TIMEOUT_SECONDS", 5)) * time.Second,
		UploadMaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 5*1024*1024),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency: strings.ToLower(getEnv("PAYMENT_CURRENCY", "aed")),
		PaymentTimeout:  time.Duration(getEnvAsInt64("PAYMENT_TIMEOUT_SECONDS", 10)) * time.Second,

		ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", "ServiBid <noreply@servibid.tech>"),
		EmailWorkers:   int(getEnvAsInt64("EMAIL_WORKERS", 2)),
		EmailQueueSize: int(getEnvAsInt64("EMAIL_QUEUE_SIZE", 256)),

		ChatMessagesPerMinute: int(getEnvAsInt64("CHAT_MESSAGES_PER_MINUTE", 60)),
		ChatCreatesPerMinute:  int(getEnvAsInt64("CHAT_CREATES_PER_MINUTE", 10)),
		TypingEventsPerSecond: int(getEnvAsInt64("TYPING_EVENTS_PER_SECOND", 5)),
	}

	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
