package common

// NewDefaultConfig returns the baseline configuration applied before any
// config file or environment override.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/consilium",
				ResetOnStartup: false,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Safety: SafetyConfig{
			LatencyBudget:  "2s",
			LiveSLA:        "5s",
			PreparationSLA: "30s",
		},
		Retrieval: RetrievalConfig{
			VectorTopK:     3,
			GraphTopK:      5,
			EvidenceLimit:  5,
			RequestTimeout: "10s",
		},
		LLM: LLMConfig{
			Provider:      "offline",
			RatePerSecond: 5,
			Burst:         10,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   1024,
			Temperature: 0.2,
			Timeout:     "60s",
		},
		Gemini: GeminiConfig{
			ChatModelName:  "gemini-2.0-flash",
			EmbedModelName: "gemini-embedding-001",
			EmbedDimension: 768,
			Temperature:    0.2,
			Timeout:        "60s",
		},
		FAQ: FAQConfig{
			SimilarityThreshold: 0.85,
			DefaultTTLDays:      30,
			SweepSchedule:       "@daily",
			SeedDefaults:        true,
		},
		Ingest: IngestConfig{
			ChunkFile: "./data/chunks.ndjson",
		},
	}
}
