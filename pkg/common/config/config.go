package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string
	AuditTopic   string

	// Blob storage (license documents)
	BlobEndpoint  string
	BlobAccessKey string
	BlobSecretKey string
	BlobBucket    string
	BlobUseSSL    bool
	BlobPublicURL string

	// Tokens & sessions
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	SessionTTL  time.Duration

	// Workflow
	ReapplyCoolDownDays int
	GeographyCatalog    string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 16*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 100),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 200),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "lifelink"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "lifelink123"),
		PostgresDB:       getEnv("POSTGRES_DB", "lifelink"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "lifelink-portal"),
		AuditTopic:   getEnv("AUDIT_TOPIC", "portal.audit"),

		BlobEndpoint:  getEnv("BLOB_ENDPOINT", "localhost:9000"),
		BlobAccessKey: getEnv("BLOB_ACCESS_KEY", "lifelink"),
		BlobSecretKey: getEnv("BLOB_SECRET_KEY", "lifelink123"),
		BlobBucket:    getEnv("BLOB_BUCKET", "lifelink-documents"),
		BlobUseSSL:    getBoolEnv("BLOB_USE_SSL", false),
		BlobPublicURL: getEnv("BLOB_PUBLIC_URL", ""),

		JWTSecret:   getEnv("JWT_SECRET", "change-me-in-production"),
		JWTIssuer:   getEnv("JWT_ISSUER", "lifelink-portal"),
		JWTAudience: getEnv("JWT_AUDIENCE", "lifelink-portal"),
		SessionTTL:  getDuration("SESSION_TTL", 12*time.Hour),

		ReapplyCoolDownDays: getIntEnv("REAPPLY_COOLDOWN_DAYS", 15),
		GeographyCatalog:    getEnv("GEOGRAPHY_CATALOG", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
