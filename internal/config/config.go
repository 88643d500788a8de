package config

import (
	"os"
	"strconv"
	"time"
)

// Chat backends
const (
	BackendAssistant  = "assistant"
	BackendCompletion = "completion"
)

// DefaultSystemPrompt is used by the completion backend when SYSTEM_PROMPT is unset
const DefaultSystemPrompt = "You are a helpful assistant specializing in accounting and legal services in Poland. Answer briefly, clearly and professionally."

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	// Chat backend: "assistant" (threads + runs) or "completion" (single call)
	ChatBackend string
	// OpenAI Configuration
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	OpenAIAssistantID string
	OpenAIModel       string
	SystemPrompt      string
	// Run polling
	RunPollInterval time.Duration
	RunTimeout      time.Duration
	// Persistence (empty DatabaseURL disables transcripts)
	DatabaseURL            string
	TranscriptWriteTimeout time.Duration
	// Session directory: "memory" or "redis"
	SessionStore   string
	RedisURL       string
	RedisKeyPrefix string
	// CRM webhook used by the create_lead tool
	CRMWebhookURL string
	CRMTimeout    time.Duration
	// Admin auth (JWKS takes precedence over the shared secret)
	AdminJWKSURL   string
	AdminJWTSecret string
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		TablePrefix: getTablePrefix(env),
		ChatBackend: getEnv("CHAT_BACKEND", BackendAssistant),
		// OpenAI Configuration
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
		OpenAIAssistantID: getEnv("OPENAI_ASSISTANT_ID", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		SystemPrompt:      getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
		// Never poll more often than once per second
		RunPollInterval: atLeast(getEnvDuration("RUN_POLL_INTERVAL", time.Second), time.Second),
		RunTimeout:      getEnvDuration("RUN_TIMEOUT", 90*time.Second),
		// Persistence
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		TranscriptWriteTimeout: getEnvDuration("TRANSCRIPT_WRITE_TIMEOUT", 3*time.Second),
		// Session directory
		SessionStore:   getEnv("SESSION_STORE", "memory"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "chatrelay:session:"),
		// CRM
		CRMWebhookURL: getEnv("CRM_WEBHOOK_URL", ""),
		CRMTimeout:    getEnvDuration("CRM_TIMEOUT", 15*time.Second),
		// Admin auth
		AdminJWKSURL:   getEnv("ADMIN_JWKS_URL", ""),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// PersistenceEnabled reports whether transcripts are written to Postgres
func (c *Config) PersistenceEnabled() bool {
	return c.DatabaseURL != ""
}

// AdminEnabled reports whether admin routes can authenticate anyone
func (c *Config) AdminEnabled() bool {
	return c.AdminJWKSURL != "" || c.AdminJWTSecret != ""
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("1500ms", "2m") or plain seconds ("90")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func atLeast(d, floor time.Duration) time.Duration {
	if d < floor {
		return floor
	}
	return d
}
