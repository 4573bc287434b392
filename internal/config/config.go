package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"repochat"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"repochat"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	NSQDHost string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	GithubToken  string `envconfig:"GITHUB_TOKEN"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	EmbedModel     string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`
	EmbedDimension int    `envconfig:"EMBED_DIMENSION" default:"3072"`
	GenModel       string `envconfig:"GEN_MODEL" default:"gemini-2.5-flash"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"3000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	// Retrieval and generation behavior.
	ChatTopK               int `envconfig:"CHAT_TOP_K" default:"10"`
	IndexTimeoutSeconds    int `envconfig:"INDEX_TIMEOUT_SECONDS" default:"30"`
	ResponseTimeoutSeconds int `envconfig:"RESPONSE_TIMEOUT_SECONDS" default:"60"`
	ChatRetryAttempts      int `envconfig:"CHAT_RETRY_ATTEMPTS" default:"3"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.ChatTopK < 1 || c.ChatTopK > 50 {
		return fmt.Errorf("%w: CHAT_TOP_K must be between 1 and 50, got %d", ErrInvalid, c.ChatTopK)
	}
	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_SIZE=%d CHUNK_OVERLAP=%d", ErrInvalid, c.ChunkSize, c.ChunkOverlap)
	}
	if c.EmbedDimension <= 0 {
		return fmt.Errorf("%w: EMBED_DIMENSION must be positive", ErrInvalid)
	}
	if c.ChatRetryAttempts < 1 {
		return fmt.Errorf("%w: CHAT_RETRY_ATTEMPTS must be at least 1", ErrInvalid)
	}
	return nil
}
