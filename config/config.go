// Package config loads the detector's closed configuration from the
// environment, using the struct-tag style the teacher's sibling configs
// use (e.g. pkg/opensearch's env-tagged structs), via
// github.com/caarlos0/env/v11. Validation is layered on top with the
// Validator already defined in this package.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/corpusguard/plagdetect/chunking"
)

// Config is the detector's closed, validated configuration (§6 env vars).
type Config struct {
	ChunkSize            int     `env:"CHUNK_SIZE" envDefault:"100"`
	ChunkOverlap         int     `env:"CHUNK_OVERLAP" envDefault:"20"`
	MinChunkSize         int     `env:"MIN_CHUNK_SIZE" envDefault:"30"`
	TopKResults          int     `env:"TOP_K_RESULTS" envDefault:"10"`
	MinScoreThreshold    float64 `env:"MIN_SCORE_THRESHOLD" envDefault:"0.50"`
	MaxResultsPerSource  int     `env:"MAX_RESULTS_PER_SOURCE" envDefault:"3"`
	SimilarityCritical   float64 `env:"SIMILARITY_CRITICAL" envDefault:"0.95"`
	SimilarityHigh       float64 `env:"SIMILARITY_HIGH" envDefault:"0.85"`
	SimilarityMedium     float64 `env:"SIMILARITY_MEDIUM" envDefault:"0.70"`
	SimilarityLow        float64 `env:"SIMILARITY_LOW" envDefault:"0.50"`
	EmbeddingDims        int     `env:"EMBEDDING_DIMS" envDefault:"768"`

	PostgresDSN  string `env:"POSTGRES_DSN"`
	MongoURI     string `env:"MONGO_URI"`
	RedisAddr    string `env:"REDIS_ADDR"`
	OpenSearchURL string `env:"OPENSEARCH_URL"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"300s"`
	EmbedTimeout   time.Duration `env:"EMBED_TIMEOUT" envDefault:"60s"`
	KNNTimeout     time.Duration `env:"KNN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if present) then populates Config from the process
// environment, applying §6's documented defaults, and validates the
// result.
func Load() (Config, error) {
	// A missing .env file is not an error: production deployments set
	// real environment variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded configuration against the ranges the
// detection pipeline assumes.
func (c Config) Validate() error {
	v := NewValidator()
	v.RequirePositive("CHUNK_SIZE", c.ChunkSize)
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		v.errors = append(v.errors, ValidationError{
			Field:   "CHUNK_OVERLAP",
			Message: fmt.Sprintf("must be in [0, CHUNK_SIZE) = [0, %d)", c.ChunkSize),
		})
	}
	v.RequirePositive("MIN_CHUNK_SIZE", c.MinChunkSize)
	v.RequirePositive("TOP_K_RESULTS", c.TopKResults)
	v.ValidateFloatRange("MIN_SCORE_THRESHOLD", c.MinScoreThreshold, 0, 1)
	v.RequirePositive("MAX_RESULTS_PER_SOURCE", c.MaxResultsPerSource)
	v.ValidateFloatRange("SIMILARITY_CRITICAL", c.SimilarityCritical, 0, 1)
	v.ValidateFloatRange("SIMILARITY_HIGH", c.SimilarityHigh, 0, 1)
	v.ValidateFloatRange("SIMILARITY_MEDIUM", c.SimilarityMedium, 0, 1)
	v.ValidateFloatRange("SIMILARITY_LOW", c.SimilarityLow, 0, 1)
	v.RequirePositive("EMBEDDING_DIMS", c.EmbeddingDims)
	return v.Error()
}

// Preset returns the named documented default chunking preset: "default"
// (100/20/30) or "large" (250/50/50), applied on top of an otherwise
// env-loaded Config (§9 design note: two documented default sets, both
// exposed).
func (c Config) Preset(name string) Config {
	var chunk chunking.Config
	switch name {
	case "large":
		chunk = chunking.LargePreset()
	default:
		chunk = chunking.DefaultConfig()
	}
	c.ChunkSize, c.ChunkOverlap, c.MinChunkSize = chunk.ChunkSize, chunk.ChunkOverlap, chunk.MinChunkSize
	return c
}
