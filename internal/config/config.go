package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the server configuration. Every heuristic constant used by the
// pipeline (tolerances, thresholds, pool sizes) is an overridable value here
// rather than a magic number inside a component.
type Config struct {
	// Server
	Port string `json:"port"`

	// Database
	DatabasePath    string        `json:"database_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Store detection
	DetectionPrefixLen int `json:"detection_prefix_len"`

	// Arithmetic verification
	MathTolerance         float64 `json:"math_tolerance"`
	SignificantDifference float64 `json:"significant_difference"`
	MaxDiscountShare      float64 `json:"max_discount_share"`

	// Normalization
	AliasSimilarityThreshold float64       `json:"alias_similarity_threshold"`
	AutoPersistThreshold     float64       `json:"auto_persist_threshold"`
	MinAcceptableConfidence  float64       `json:"min_acceptable_confidence"`
	ModelConfidence          float64       `json:"model_confidence"`
	ConfirmationTimeout      time.Duration `json:"confirmation_timeout"`

	// Model gateway
	Gateway *GatewayConfig `json:"gateway"`
}

// GatewayConfig configures the batch model gateway and its providers.
type GatewayConfig struct {
	Provider string `json:"provider"` // ollama | openrouter | gemini | disabled

	OllamaURL        string `json:"ollama_url"`
	OllamaModel      string `json:"ollama_model"`
	OpenRouterAPIKey string `json:"openrouter_api_key"`
	OpenRouterModel  string `json:"openrouter_model"`
	GeminiAPIKey     string `json:"gemini_api_key"`
	GeminiModel      string `json:"gemini_model"`

	ModelTimeout time.Duration `json:"model_timeout"`
	SubBatchSize int           `json:"sub_batch_size"`
	Workers      int           `json:"workers"`

	ExactCacheSize     int           `json:"exact_cache_size"`
	ApproxCacheSize    int           `json:"approx_cache_size"`
	ApproxSimThreshold float64       `json:"approx_sim_threshold"`
	RateLimitPerSecond float64       `json:"rate_limit_per_second"`
	RateLimitBurst     int           `json:"rate_limit_burst"`
	MaxRetries         int           `json:"max_retries"`
	RetryInitialDelay  time.Duration `json:"retry_initial_delay"`
	RetryMaxDelay      time.Duration `json:"retry_max_delay"`
}

// LoadConfig loads the configuration from environment variables, applying
// defaults for anything unset.
func LoadConfig() (*Config, error) {
	config := &Config{
		// Server
		Port: getEnv("SERVER_PORT", "8090"),

		// Database
		DatabasePath:    getEnv("DATABASE_PATH", "receipts.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		// Store detection
		DetectionPrefixLen: getEnvInt("DETECTION_PREFIX_LEN", 512),

		// Arithmetic verification
		MathTolerance:         getEnvFloat("MATH_TOLERANCE", 0.01),
		SignificantDifference: getEnvFloat("SIGNIFICANT_DIFFERENCE", 0.05),
		MaxDiscountShare:      getEnvFloat("MAX_DISCOUNT_SHARE", 0.90),

		// Normalization
		AliasSimilarityThreshold: getEnvFloat("ALIAS_SIMILARITY_THRESHOLD", 0.80),
		AutoPersistThreshold:     getEnvFloat("AUTO_PERSIST_THRESHOLD", 0.95),
		MinAcceptableConfidence:  getEnvFloat("MIN_ACCEPTABLE_CONFIDENCE", 0.60),
		ModelConfidence:          getEnvFloat("MODEL_CONFIDENCE", 0.70),
		ConfirmationTimeout:      getEnvDuration("CONFIRMATION_TIMEOUT", 2*time.Minute),

		// Model gateway
		Gateway: LoadGatewayConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadGatewayConfig loads the model gateway configuration from environment
// variables.
func LoadGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		Provider: getEnv("MODEL_PROVIDER", "ollama"),

		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "llama3.2"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "meta-llama/llama-3.1-8b-instruct"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		ModelTimeout: getEnvDuration("MODEL_TIMEOUT", 30*time.Second),
		SubBatchSize: getEnvInt("GATEWAY_SUB_BATCH_SIZE", 10),
		Workers:      getEnvInt("GATEWAY_WORKERS", 2),

		ExactCacheSize:     getEnvInt("GATEWAY_EXACT_CACHE_SIZE", 2048),
		ApproxCacheSize:    getEnvInt("GATEWAY_APPROX_CACHE_SIZE", 512),
		ApproxSimThreshold: getEnvFloat("GATEWAY_APPROX_SIM_THRESHOLD", 0.92),
		RateLimitPerSecond: getEnvFloat("GATEWAY_RATE_LIMIT_PER_SECOND", 4),
		RateLimitBurst:     getEnvInt("GATEWAY_RATE_LIMIT_BURST", 2),
		MaxRetries:         getEnvInt("GATEWAY_MAX_RETRIES", 2),
		RetryInitialDelay:  getEnvDuration("GATEWAY_RETRY_INITIAL_DELAY", 500*time.Millisecond),
		RetryMaxDelay:      getEnvDuration("GATEWAY_RETRY_MAX_DELAY", 5*time.Second),
	}
}

// getEnv reads an environment variable or returns the default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as int or returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat reads an environment variable as float64 or returns the default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration reads an environment variable as Duration or returns the default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
