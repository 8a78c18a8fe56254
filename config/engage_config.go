package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// JWT
	JWTSecret string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	LLMModel      string
	LLMTimeoutSec int

	// Worker
	WorkerID        string
	WorkerMax       int
	WorkerQueueSize int
	ConsumerGroup   string

	// CORS
	AllowedOrigins []string

	// Rate limiting (per tenant, per second)
	RateLimitPerSec int
	RateLimitBurst  int

	// Scheduler
	SchedulerEnabled bool
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "engage"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),

		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		LLMModel:      getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTimeoutSec: getEnvInt("LLM_TIMEOUT_SEC", 30),

		// Worker
		WorkerID:        getEnv("WORKER_ID", generateWorkerID()),
		WorkerMax:       getEnvInt("WORKER_MAX", 8),
		WorkerQueueSize: getEnvInt("WORKER_QUEUE_SIZE", 500),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", "engage-workers"),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		RateLimitPerSec: getEnvInt("RATE_LIMIT_PER_SEC", 20),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 40),

		// Scheduler
		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
