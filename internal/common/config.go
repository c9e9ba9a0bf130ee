package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Safety      SafetyConfig    `toml:"safety"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	FAQ         FAQConfig       `toml:"faq"`
	Ingest      IngestConfig    `toml:"ingest"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// SafetyConfig controls the classifier fail-safe and per-mode SLA observation.
// SLA budgets are logged when exceeded, never enforced as hard aborts.
type SafetyConfig struct {
	LatencyBudget  string `toml:"latency_budget"`  // classifier budget, e.g. "2s"
	LiveSLA        string `toml:"live_sla"`        // soft total budget for live mode
	PreparationSLA string `toml:"preparation_sla"` // soft total budget for preparation mode
}

// RetrievalConfig contains retriever backend endpoints and evidence limits.
// Empty endpoints disable the remote path; retrieval then runs entirely on
// the local fallback caches.
type RetrievalConfig struct {
	VectorEndpoint string `toml:"vector_endpoint"` // remote vector similarity service base URL
	GraphEndpoint  string `toml:"graph_endpoint"`  // remote graph semantic-search service base URL
	VectorTopK     int    `toml:"vector_top_k" validate:"gt=0"`
	GraphTopK      int    `toml:"graph_top_k" validate:"gt=0"`
	EvidenceLimit  int    `toml:"evidence_limit" validate:"gt=0"`
	RequestTimeout string `toml:"request_timeout"` // per remote call, e.g. "10s"
}

// LLMConfig selects the completion provider and its call budget
type LLMConfig struct {
	Provider      string  `toml:"provider" validate:"oneof=claude gemini offline"`
	RatePerSecond float64 `toml:"rate_per_second"` // completion call rate limit (0 = unlimited)
	Burst         int     `toml:"burst"`
}

// ClaudeConfig contains Anthropic Claude API settings
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
	Timeout     string  `toml:"timeout"`
}

// GeminiConfig contains Google Gemini API settings
type GeminiConfig struct {
	APIKey         string  `toml:"api_key"`
	ChatModelName  string  `toml:"chat_model_name"`
	EmbedModelName string  `toml:"embed_model_name"`
	EmbedDimension int     `toml:"embed_dimension" validate:"gt=0"`
	Temperature    float32 `toml:"temperature"`
	Timeout        string  `toml:"timeout"`
}

// FAQConfig contains semantic FAQ cache settings
type FAQConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold" validate:"gt=0,lte=1"`
	DefaultTTLDays      int     `toml:"default_ttl_days" validate:"gt=0"`
	SweepSchedule       string  `toml:"sweep_schedule"` // cron spec for the expired-entry sweep
	SeedDefaults        bool    `toml:"seed_defaults"`  // populate canonical FAQs when the cache is empty
}

// IngestConfig points at the append-only NDJSON chunk stream produced by the
// ingestion collaborator. Loaded at startup into the retriever fallback caches.
type IngestConfig struct {
	ChunkFile string `toml:"chunk_file"`
}

// LoadFromFiles loads configuration with layering: defaults, then each file in
// order (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration using go-playground/validator tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, value := range map[string]string{
		"safety.latency_budget":     c.Safety.LatencyBudget,
		"safety.live_sla":           c.Safety.LiveSLA,
		"safety.preparation_sla":    c.Safety.PreparationSLA,
		"retrieval.request_timeout": c.Retrieval.RequestTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	return nil
}

// applyEnvOverrides applies environment variables on top of file configuration
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CONSILIUM_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("CONSILIUM_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("CONSILIUM_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("CONSILIUM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CONSILIUM_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("CONSILIUM_VECTOR_ENDPOINT"); v != "" {
		config.Retrieval.VectorEndpoint = v
	}
	if v := os.Getenv("CONSILIUM_GRAPH_ENDPOINT"); v != "" {
		config.Retrieval.GraphEndpoint = v
	}
	if v := os.Getenv("CONSILIUM_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("CONSILIUM_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("CONSILIUM_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("CONSILIUM_CHUNK_FILE"); v != "" {
		config.Ingest.ChunkFile = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// SafetyLatencyBudget returns the parsed classifier latency budget
func (c *Config) SafetyLatencyBudget() time.Duration {
	return mustDuration(c.Safety.LatencyBudget, 2*time.Second)
}

// ModeSLA returns the soft total-latency budget for the given mode
func (c *Config) ModeSLA(mode string) time.Duration {
	if mode == "preparation" {
		return mustDuration(c.Safety.PreparationSLA, 30*time.Second)
	}
	return mustDuration(c.Safety.LiveSLA, 5*time.Second)
}

// RetrievalTimeout returns the parsed remote retrieval call timeout
func (c *Config) RetrievalTimeout() time.Duration {
	return mustDuration(c.Retrieval.RequestTimeout, 10*time.Second)
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
