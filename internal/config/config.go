package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the service. All values come from the
// environment (optionally seeded from a .env file) so the same binary runs
// locally and in deployment without rebuilds.
type Config struct {
	HTTPPort string
	LogLevel string

	GeminiAPIKey         string
	GeminiChatModel      string
	GeminiEmbeddingModel string

	// Vector store selection. "sqlite" keeps everything in a local file,
	// "qdrant" talks to a remote collection over gRPC.
	VectorBackend    string
	DatabasePath     string
	QdrantAddr       string
	QdrantCollection string

	GuardrailEnabled    bool
	SimilarityThreshold float32
	TopK                int
	MinMatches          int

	LiveDataEnabled bool
	LiveDataURL     string

	MinQuestionLength int
	MemoryWindow      int
	ChunkSize         int
	MinChunkLength    int

	RequestTimeoutSeconds int

	BucketURL       string
	BucketPublicURL string

	TurnstileSecretKey string
	DiscordWebhookURL  string
}

// Load reads configuration from the environment, loading a .env file first
// if one exists. It fails only on settings the pipeline cannot run without.
func Load() (*Config, error) {
	// A missing .env file is fine; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiChatModel:      getEnv("GEMINI_CHAT_MODEL", "gemini-1.5-flash-latest"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),

		VectorBackend:    getEnv("VECTOR_BACKEND", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "inobot.db"),
		QdrantAddr:       getEnv("QDRANT_ADDR", "localhost:6334"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "inovus-knowledge"),

		GuardrailEnabled:    getEnvAsBool("GUARDRAIL_ENABLED", true),
		SimilarityThreshold: float32(getEnvAsFloat("SIMILARITY_THRESHOLD", 0.7)),
		TopK:                getEnvAsInt("TOP_K", 5),
		MinMatches:          getEnvAsInt("MIN_MATCHES", 1),

		LiveDataEnabled: getEnvAsBool("LIVE_DATA_ENABLED", true),
		LiveDataURL:     getEnv("LIVE_DATA_URL", ""),

		MinQuestionLength: getEnvAsInt("MIN_QUESTION_LENGTH", 5),
		MemoryWindow:      getEnvAsInt("MEMORY_WINDOW", 4),
		ChunkSize:         getEnvAsInt("CHUNK_SIZE", 1000),
		MinChunkLength:    getEnvAsInt("MIN_CHUNK_LENGTH", 50),

		RequestTimeoutSeconds: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 60),

		BucketURL:       getEnv("BUCKET_URL", ""),
		BucketPublicURL: getEnv("BUCKET_PUBLIC_URL", ""),

		TurnstileSecretKey: getEnv("TURNSTILE_SECRET_KEY", ""),
		DiscordWebhookURL:  getEnv("DISCORD_WEBHOOK_URL", ""),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	switch cfg.VectorBackend {
	case "sqlite", "qdrant":
	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q (expected sqlite or qdrant)", cfg.VectorBackend)
	}

	return cfg, nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
