package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr  string
	LogMode     string
	StoreDriver string
	CORSOrigins string

	PG PGConfig

	UploadDir    string
	MaxUploadMB  int
	ChunkSize    int
	ChunkOverlap int

	Embedding EmbeddingConfig
	LLM       LLMConfig

	YouTubeAPIKey   string
	ExternalTimeout time.Duration
}

type PGConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

func (c PGConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", c.Host, c.Port, c.User, c.Password, c.DBName)
}

type EmbeddingConfig struct {
	Backend     string // openai, ollama or none
	APIKey      string
	BaseURL     string
	Model       string
	Dim         int
	OllamaURL   string
	OllamaModel string
}

// Enabled reports whether an embedding backend has enough configuration to be used.
func (c EmbeddingConfig) Enabled() bool {
	switch c.Backend {
	case "openai":
		return c.APIKey != ""
	case "ollama":
		return c.OllamaURL != "" && c.OllamaModel != ""
	}
	return false
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	QuizModel string
}

// Load reads .env (when present) and the process environment. The returned
// error reports only a missing .env file; the config is usable either way.
func Load() (Config, error) {
	envErr := godotenv.Load()

	cfg := Config{
		ServerAddr:  String("SERVER_ADDR", ":5000"),
		LogMode:     String("LOG_MODE", "dev"),
		StoreDriver: strings.ToLower(String("STORE_DRIVER", "postgres")),
		CORSOrigins: String("CORS_ORIGINS", "http://localhost:5173"),
		PG: PGConfig{
			Host:     String("PG_HOST", "localhost"),
			Port:     Int("PG_PORT", 5432),
			User:     String("PG_USER", "postgres"),
			Password: String("PG_PASS", ""),
			DBName:   String("PG_DB_NAME", "studyrag"),
		},
		UploadDir:    String("UPLOAD_DIR", "uploads"),
		MaxUploadMB:  Int("MAX_UPLOAD_MB", 10),
		ChunkSize:    Int("CHUNK_SIZE", 500),
		ChunkOverlap: Int("CHUNK_OVERLAP", 50),
		Embedding: EmbeddingConfig{
			Backend:     strings.ToLower(String("EMBEDDING_BACKEND", "openai")),
			APIKey:      String("OPENAI_API_KEY", ""),
			BaseURL:     String("OPENAI_BASE_URL", ""),
			Model:       String("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dim:         Int("EMBEDDING_DIM", 1536),
			OllamaURL:   String("OLLAMA_EMBEDDING_URL", ""),
			OllamaModel: String("OLLAMA_EMBEDDING_MODEL", ""),
		},
		LLM: LLMConfig{
			APIKey:    String("LLM_API_KEY", String("GROQ_API_KEY", "")),
			BaseURL:   String("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:     String("LLM_MODEL", "llama-3.3-70b-versatile"),
			QuizModel: String("QUIZ_MODEL", "llama-3.1-8b-instant"),
		},
		YouTubeAPIKey:   String("YOUTUBE_API_KEY", ""),
		ExternalTimeout: Duration("EXTERNAL_TIMEOUT", 30*time.Second),
	}
	return cfg, envErr
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
