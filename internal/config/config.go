package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Storage StorageConfig
	Worker  WorkerConfig
	Prompts PromptConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogJSON        bool
	RequestTimeout time.Duration
}

// ModelConfig is the immutable model gateway configuration.
type ModelConfig struct {
	Backend          string
	Host             string
	APIKey           string
	Project          string
	Location         string
	Primary          string
	Fallback         string
	Temperature      float32
	MaxTokens        int32
	FinalizeFacts    bool
	LogPreviewLength int
}

type StorageConfig struct {
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type PromptConfig struct {
	Dir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("ENV", "development"),
			LogJSON:        getEnvAsBool("LOG_JSON", false),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", "120s"),
		},
		Model: ModelConfig{
			Backend:          strings.ToLower(getEnv("MODEL_BACKEND", BackendGemini)),
			Host:             getEnv("MODEL_HOST", ""),
			APIKey:           getEnv("GEMINI_API_KEY", ""),
			Project:          getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:         getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Primary:          getEnv("MODEL_PRIMARY", "gemini-2.5-flash"),
			Fallback:         getEnv("MODEL_FALLBACK", "gemini-2.5-flash-lite"),
			Temperature:      getEnvAsFloat32("TEMPERATURE", 0.2),
			MaxTokens:        getEnvAsInt32("MAX_TOKENS", 2048),
			FinalizeFacts:    getEnvAsBool("FINALIZE_FACTS", true),
			LogPreviewLength: getEnvAsInt("LOG_PREVIEW_LENGTH", 2000),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 1),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 16),
		},
		Prompts: PromptConfig{
			Dir: getEnv("PROMPTS_DIR", ""),
		},
	}
}

// Validate reports every invalid setting at once so startup fails with the full picture.
func (c *Config) Validate() error {
	var errs []error

	m := c.Model
	switch m.Backend {
	case BackendGemini:
		if m.APIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini backend"))
		}
	case BackendVertex:
		if m.Project == "" {
			errs = append(errs, errors.New("GOOGLE_CLOUD_PROJECT is required for the vertex backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported MODEL_BACKEND %q", m.Backend))
	}

	if strings.TrimSpace(m.Primary) == "" {
		errs = append(errs, errors.New("MODEL_PRIMARY must not be empty"))
	}
	if strings.TrimSpace(m.Fallback) == "" {
		errs = append(errs, errors.New("MODEL_FALLBACK must not be empty"))
	}
	if m.Temperature < 0 || m.Temperature > 2 {
		errs = append(errs, fmt.Errorf("TEMPERATURE must be within [0, 2], got %v", m.Temperature))
	}
	if m.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TOKENS must be positive, got %d", m.MaxTokens))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Worker.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.Worker.Concurrency))
	}
	if c.Worker.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("WORKER_QUEUE_SIZE must not be negative, got %d", c.Worker.QueueSize))
	}
	if c.Storage.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 32); err == nil {
		return int32(value)
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
