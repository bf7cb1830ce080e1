package config

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/obinnaokafor/symptomsense/backend/pkg/secrets"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Typesense TypesenseConfig
	OpenAI    OpenAIConfig
	WhatsApp  WhatsAppConfig
	OTEL      OTELConfig
	Knowledge KnowledgeConfig
	Session   SessionConfig
	Analytics AnalyticsConfig
	Engine    EngineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// OpenAIConfig holds configuration for the optional LLM phrase extractor.
// A negative RateLimitRPM disables client-side rate limiting.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	RateLimitRPM   int
	RateLimitBurst int
}

// WhatsAppConfig holds outbound emergency alert configuration. Alerts are
// sent only when all three fields are set.
type WhatsAppConfig struct {
	AccessToken      string
	PhoneNumberID    string
	EmergencyContact string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// KnowledgeConfig selects where the knowledge base is loaded from.
// Source is "file" (JSON artifacts) or "postgres".
type KnowledgeConfig struct {
	Source                string
	KnowledgeBasePath     string
	EmergencyProfilesPath string
}

// SessionConfig selects the conversation session store.
// Store is "memory" or "redis".
type SessionConfig struct {
	Store      string
	TTLSeconds int
}

// AnalyticsConfig controls turn analytics persistence.
type AnalyticsConfig struct {
	Enabled bool
}

// EngineConfig carries the diagnosis policy constants. Thresholds and
// band cutoffs are deliberately configuration, not code.
type EngineConfig struct {
	HighTierThreshold    float64
	MediumTierThreshold  float64
	MinMatchedForHigh    int
	TopNMissing          int
	MaxCandidates        int
	ShortDurationMaxDays int
	LongDurationMinDays  int
	MaxFollowupQuestions int
}

// validate rejects threshold overrides that would break tier monotonicity.
func (c *EngineConfig) validate() error {
	if c.HighTierThreshold <= 0 || c.HighTierThreshold > 1 {
		return fmt.Errorf("ENGINE_HIGH_TIER_THRESHOLD must be in (0,1], got %v", c.HighTierThreshold)
	}
	if c.MediumTierThreshold <= 0 || c.MediumTierThreshold > 1 {
		return fmt.Errorf("ENGINE_MEDIUM_TIER_THRESHOLD must be in (0,1], got %v", c.MediumTierThreshold)
	}
	if c.MediumTierThreshold >= c.HighTierThreshold {
		return fmt.Errorf("ENGINE_MEDIUM_TIER_THRESHOLD (%v) must be below ENGINE_HIGH_TIER_THRESHOLD (%v)",
			c.MediumTierThreshold, c.HighTierThreshold)
	}
	return nil
}

// Load loads configuration from environment variables. When
// VAULT_ENABLED=true, secrets are pulled from Vault into the environment
// first, so the rest of the lookup is uniform.
func Load() (*Config, error) {
	vaultCfg := secrets.LoadVaultConfigFromEnv("")
	if _, err := secrets.ApplyVaultSecrets(context.Background(), vaultCfg); err != nil {
		return nil, fmt.Errorf("failed to apply vault secrets: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "symptomsense"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:      getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			PhoneNumberID:    getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			EmergencyContact: getEnv("WHATSAPP_EMERGENCY_CONTACT", ""),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "symptomsense"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Knowledge: KnowledgeConfig{
			Source:                getEnv("KNOWLEDGE_SOURCE", "file"),
			KnowledgeBasePath:     getEnv("KNOWLEDGE_BASE_PATH", "config/knowledge_base.json"),
			EmergencyProfilesPath: getEnv("EMERGENCY_PROFILES_PATH", "config/emergency_profiles.json"),
		},
		Session: SessionConfig{
			Store:      getEnv("SESSION_STORE", "memory"),
			TTLSeconds: getEnvAsInt("SESSION_TTL_SECONDS", 1800),
		},
		Analytics: AnalyticsConfig{
			Enabled: getEnvAsBool("ANALYTICS_ENABLED", false),
		},
		Engine: EngineConfig{
			HighTierThreshold:    getEnvAsFloat("ENGINE_HIGH_TIER_THRESHOLD", 0.7),
			MediumTierThreshold:  getEnvAsFloat("ENGINE_MEDIUM_TIER_THRESHOLD", 0.4),
			MinMatchedForHigh:    getEnvAsInt("ENGINE_MIN_MATCHED_FOR_HIGH", 2),
			TopNMissing:          getEnvAsInt("ENGINE_TOP_N_MISSING", 3),
			MaxCandidates:        getEnvAsInt("ENGINE_MAX_CANDIDATES", 5),
			ShortDurationMaxDays: getEnvAsInt("ENGINE_SHORT_DURATION_MAX_DAYS", 3),
			LongDurationMinDays:  getEnvAsInt("ENGINE_LONG_DURATION_MIN_DAYS", 14),
			MaxFollowupQuestions: getEnvAsInt("ENGINE_MAX_FOLLOWUP_QUESTIONS", 5),
		},
	}

	if err := cfg.Engine.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether outbound WhatsApp alerts can be sent.
func (c *WhatsAppConfig) Configured() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.EmergencyContact != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
