package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Storage
	StoreDriver string // "postgres" or "memory"
	DatabaseURL string
	DataDir     string

	// Auth
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Claude data
	ClaudeDataPath  string
	ClaudeChatsPath string

	// AI classifier
	AIProvider      string
	LiteLLMURL      string
	LiteLLMAPIKey   string
	LiteLLMModel    string
	OllamaBaseURL   string
	OllamaModel     string
	GeminiApiKey    string
	ClassifyTimeout time.Duration

	// Extraction schedule
	ExtractionInterval     time.Duration
	ExtractionInitialDelay time.Duration
	ExtractionLimit        int

	// Docker
	DockerSocket               string
	DockerHost                 string
	ContainerURLsFile          string
	DockerAutocompleteInterval time.Duration

	// n8n
	N8NAPIURL string
	N8NAPIKey string

	// Google
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	CORSAllowedOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")
	databaseURL := getEnv("DATABASE_URL", "")

	storeDriver := "memory"
	if databaseURL != "" {
		storeDriver = "postgres"
	}

	return &Config{
		Port: getEnv("PORT", "3001"),

		StoreDriver: getEnv("STORE_DRIVER", storeDriver),
		DatabaseURL: databaseURL,
		DataDir:     dataDir,

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 7*24*time.Hour),

		ClaudeDataPath:  getEnv("CLAUDE_DATA_PATH", "/app/claude-data"),
		ClaudeChatsPath: getEnv("CLAUDE_CHATS_PATH", filepath.Join(os.Getenv("HOME"), ".config", "claude", "chats")),

		AIProvider:      getEnv("AI_PROVIDER", "auto"),
		LiteLLMURL:      getEnv("LITELLM_URL", "http://172.17.0.1:4000"),
		LiteLLMAPIKey:   getEnv("LITELLM_API_KEY", ""),
		LiteLLMModel:    getEnv("LITELLM_MODEL", "chatgpt-4o-latest"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3"),
		GeminiApiKey:    getEnv("GEMINI_API_KEY", ""),
		ClassifyTimeout: getDuration("CLASSIFY_TIMEOUT", 30*time.Second),

		ExtractionInterval:     getDuration("EXTRACTION_INTERVAL", 10*time.Minute),
		ExtractionInitialDelay: getDuration("EXTRACTION_INITIAL_DELAY", 5*time.Second), // let the LLM proxy come up
		ExtractionLimit:        getInt("EXTRACTION_LIMIT", 50),

		DockerSocket:               getEnv("DOCKER_SOCKET", "/var/run/docker.sock"),
		DockerHost:                 getEnv("DOCKER_HOST", ""),
		ContainerURLsFile:          getEnv("CONTAINER_URLS_FILE", filepath.Join(dataDir, "container-urls.yaml")),
		DockerAutocompleteInterval: getDuration("DOCKER_AUTOCOMPLETE_INTERVAL", time.Minute),

		N8NAPIURL: getEnv("N8N_API_URL", "http://localhost:5678"),
		N8NAPIKey: getEnv("N8N_API_KEY", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3001/api/auth/google/callback"),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
