package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Interview InterviewConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini  string
	PrepareTopic  string // Session preparation topic
	EvaluateTopic string // Session evaluation topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LLMModel          string // e.g. "gemini-2.5-flash-lite", "llama3"
}

// InterviewConfig holds the tunables of the preparation pipeline.
type InterviewConfig struct {
	MinTopics               int
	MaxTopics               int
	QuestionsPerTopicMin    int
	QuestionsPerTopicMax    int
	RetrievalK              int
	ContextCharBudget       int
	ChunkSize               int
	ChunkOverlap            int
	MaxConcurrentTopicTasks int
	ExternalCallTimeout     time.Duration
	ExternalCallMaxRetries  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			PrepareTopic:  getEnv("PREPARE_SESSION_TOPIC_NAME", "PREPARE_INTERVIEW_SESSION"),
			EvaluateTopic: getEnv("EVALUATE_SESSION_TOPIC_NAME", "EVALUATE_INTERVIEW_SESSION"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.5-flash-lite"),
		},
		Interview: InterviewConfig{
			MinTopics:               getEnvAsInt("MIN_TOPICS", 5),
			MaxTopics:               getEnvAsInt("MAX_TOPICS", 7),
			QuestionsPerTopicMin:    getEnvAsInt("QUESTIONS_PER_TOPIC_MIN", 2),
			QuestionsPerTopicMax:    getEnvAsInt("QUESTIONS_PER_TOPIC_MAX", 4),
			RetrievalK:              getEnvAsInt("RETRIEVAL_K", 4),
			ContextCharBudget:       getEnvAsInt("CONTEXT_CHAR_BUDGET", 4000),
			ChunkSize:               getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap:            getEnvAsInt("CHUNK_OVERLAP", 200),
			MaxConcurrentTopicTasks: getEnvAsInt("MAX_CONCURRENT_TOPIC_TASKS", 5),
			ExternalCallTimeout:     time.Duration(getEnvAsInt("EXTERNAL_CALL_TIMEOUT_SECONDS", 60)) * time.Second,
			ExternalCallMaxRetries:  getEnvAsInt("EXTERNAL_CALL_MAX_RETRIES", 3),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
