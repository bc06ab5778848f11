package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a SmartMem client.
//
// It includes settings for:
//   - Storage backend (for memory persistence)
//   - Embedding provider (for vector generation)
//   - LLM provider (optional, for summarization and importance scoring)
//   - Memory behavior (capacity, decay, retrieval and consolidation tuning)
//
// Example:
//
//	config := &core.Config{
//	    Storage: core.StorageConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path": "./memories.db",
//	        },
//	    },
//	    Embedder: core.EmbedderConfig{
//	        Provider:   "openai",
//	        APIKey:     "sk-...",
//	        Model:      "text-embedding-ada-002",
//	        Dimensions: 1536,
//	    },
//	    Memory: core.DefaultMemoryConfig(),
//	}
type Config struct {
	// Storage contains storage backend configuration.
	Storage StorageConfig `json:"storage"`

	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// LLM contains LLM provider configuration (optional).
	//
	// When set, summaries of consolidated memories and importance scores
	// for new memories are produced by the model. When nil, rule-based
	// fallbacks are used for both.
	LLM *LLMConfig `json:"llm,omitempty"`

	// Memory contains memory behavior configuration.
	Memory MemoryConfig `json:"memory"`
}

// StorageConfig contains configuration for the storage backend.
//
// Supported providers: sqlite, postgres, mysql, inmem
//
// Example:
//
//	storageConfig := core.StorageConfig{
//	    Provider: "sqlite",
//	    Config: map[string]interface{}{
//	        "db_path":    "./memories.db",
//	        "table_name": "memories",
//	    },
//	}
type StorageConfig struct {
	// Provider is the storage provider name (sqlite, postgres, mysql, inmem).
	Provider string `json:"provider"`

	// Config contains provider-specific configuration.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: openai, mock
type EmbedderConfig struct {
	// Provider is the embedding provider name (openai, mock).
	Provider string `json:"provider"`

	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (e.g., "text-embedding-ada-002").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors (e.g., 1536, 64).
	Dimensions int `json:"dimensions,omitempty"`
}

// LLMConfig contains configuration for the LLM provider.
//
// Supported providers: openai
type LLMConfig struct {
	// Provider is the LLM provider name (openai).
	Provider string `json:"provider"`

	// APIKey is the API key for the LLM provider.
	APIKey string `json:"api_key"`

	// Model is the model name to use (e.g., "gpt-4").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional, uses provider default if empty).
	BaseURL string `json:"base_url,omitempty"`
}

// MemoryConfig contains tuning parameters for memory behavior.
//
// All fields have sensible defaults, see DefaultMemoryConfig. The full
// configuration is validated when the client is constructed; an invalid
// value is rejected there rather than surfacing as odd runtime behavior.
type MemoryConfig struct {
	// MaxMemories is the soft capacity of the store. Capacity enforcement
	// evicts down to this bound. Must be positive.
	MaxMemories int `json:"max_memories"`

	// HardLimitFactor sets the absolute ceiling as a multiple of
	// MaxMemories. Inserts beyond MaxMemories*HardLimitFactor fail with
	// ErrCapacityExceeded. Must be >= 1.
	HardLimitFactor float64 `json:"hard_limit_factor"`

	// DefaultImportance is assigned to new memories when no explicit
	// importance is given and no LLM evaluator is configured.
	DefaultImportance float64 `json:"default_importance"`

	// AccessBoost controls how strongly a recall reinforces a memory.
	// Each access moves importance toward 1.0 by this fraction of the
	// remaining headroom. Range (0, 1).
	AccessBoost float64 `json:"access_boost"`

	// DecayRate is the retention multiplier applied per half-life of
	// inactivity. Range (0, 1).
	DecayRate float64 `json:"decay_rate"`

	// HalfLifeHours is the inactivity period after which importance is
	// multiplied by DecayRate. Must be positive.
	HalfLifeHours float64 `json:"half_life_hours"`

	// ImportanceFloor is the minimum importance decay can reach.
	// Decayed memories stay retrievable at this floor.
	ImportanceFloor float64 `json:"importance_floor"`

	// CriticalThreshold marks memories as protected from eviction.
	// Memories with importance above this value are never evicted.
	CriticalThreshold float64 `json:"critical_threshold"`

	// SimilarityWeight, ImportanceWeight and RecencyWeight blend the
	// three recall signals. They should sum to 1.
	SimilarityWeight float64 `json:"similarity_weight"`
	ImportanceWeight float64 `json:"importance_weight"`
	RecencyWeight    float64 `json:"recency_weight"`

	// RecencyHalfLifeHours controls how fast the recency signal fades.
	RecencyHalfLifeHours float64 `json:"recency_half_life_hours"`

	// ConsolidationThreshold is the cosine similarity above which two
	// memories are considered near-duplicates and merged. Range (0, 1].
	ConsolidationThreshold float64 `json:"consolidation_threshold"`

	// MaintenanceInterval triggers automatic maintenance (decay pass and
	// capacity enforcement) after this many inserts. Zero disables
	// automatic maintenance; Maintain can still be called explicitly.
	MaintenanceInterval int `json:"maintenance_interval"`
}

// DefaultMemoryConfig returns the default memory behavior configuration.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		MaxMemories:            10000,
		HardLimitFactor:        2.0,
		DefaultImportance:      0.8,
		AccessBoost:            0.1,
		DecayRate:              0.5,
		HalfLifeHours:          24,
		ImportanceFloor:        0.01,
		CriticalThreshold:      0.9,
		SimilarityWeight:       0.7,
		ImportanceWeight:       0.2,
		RecencyWeight:          0.1,
		RecencyHalfLifeHours:   24,
		ConsolidationThreshold: 0.9,
		MaintenanceInterval:    100,
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Parses environment variables into a Config struct
//
// Supported environment variables:
//   - DATABASE_PROVIDER (sqlite, postgres, mysql, inmem)
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, etc.
//   - MYSQL_HOST, MYSQL_PORT, MYSQL_USER, MYSQL_PASSWORD, etc.
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL, EMBEDDING_DIMS
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - MEMORY_MAX_MEMORIES, MEMORY_DECAY_RATE, MEMORY_HALF_LIFE_HOURS,
//     MEMORY_CRITICAL_THRESHOLD, MEMORY_CONSOLIDATION_THRESHOLD,
//     MEMORY_MAINTENANCE_INTERVAL
//
// Returns a Config instance, or an error if loading fails.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	provider := getEnvOrDefault("DATABASE_PROVIDER", "sqlite")

	storageConfig := make(map[string]interface{})

	switch provider {
	case "sqlite":
		storageConfig = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./smartmem.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "memories"),
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       port,
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "smartmem"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "memories"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))

		storageConfig = map[string]interface{}{
			"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
			"port":       port,
			"user":       getEnvOrDefault("MYSQL_USER", "root"),
			"password":   os.Getenv("MYSQL_PASSWORD"),
			"db_name":    getEnvOrDefault("MYSQL_DATABASE", "smartmem"),
			"table_name": getEnvOrDefault("MYSQL_TABLE", "memories"),
		}
	}

	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", "openai")
	embedderModel := os.Getenv("EMBEDDING_MODEL")
	if embedderProvider == "openai" && embedderModel == "" {
		embedderModel = "text-embedding-ada-002"
	}
	dims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_DIMS", "1536"))

	config := &Config{
		Storage: StorageConfig{
			Provider: provider,
			Config:   storageConfig,
		},
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      embedderModel,
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		},
		Memory: DefaultMemoryConfig(),
	}

	// LLM configuration (optional, enables summarization and importance scoring)
	if llmProvider := os.Getenv("LLM_PROVIDER"); llmProvider != "" {
		config.LLM = &LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		}
	}

	// Memory behavior overrides
	if v := os.Getenv("MEMORY_MAX_MEMORIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Memory.MaxMemories = n
		}
	}
	if v := os.Getenv("MEMORY_DECAY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Memory.DecayRate = f
		}
	}
	if v := os.Getenv("MEMORY_HALF_LIFE_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Memory.HalfLifeHours = f
		}
	}
	if v := os.Getenv("MEMORY_CRITICAL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Memory.CriticalThreshold = f
		}
	}
	if v := os.Getenv("MEMORY_CONSOLIDATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Memory.ConsolidationThreshold = f
		}
	}
	if v := os.Getenv("MEMORY_MAINTENANCE_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Memory.MaintenanceInterval = n
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	return &config, nil
}

// Validate validates the configuration.
//
// Checks that all required fields are set and all tuning parameters are
// in range. Returns an error wrapping ErrInvalidConfig if validation
// fails, nil otherwise.
func (c *Config) Validate() error {
	if c.Storage.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: storage provider is required", ErrInvalidConfig))
	}
	if c.Embedder.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: embedder provider is required", ErrInvalidConfig))
	}
	if err := c.Memory.validate(); err != nil {
		return NewMemoryError("Validate", err)
	}
	return nil
}

func (m *MemoryConfig) validate() error {
	if m.MaxMemories <= 0 {
		return fmt.Errorf("%w: max_memories must be positive, got %d", ErrInvalidConfig, m.MaxMemories)
	}
	if m.HardLimitFactor < 1 {
		return fmt.Errorf("%w: hard_limit_factor must be >= 1, got %g", ErrInvalidConfig, m.HardLimitFactor)
	}
	if m.DefaultImportance < 0 || m.DefaultImportance > 1 {
		return fmt.Errorf("%w: default_importance must be in [0, 1], got %g", ErrInvalidConfig, m.DefaultImportance)
	}
	if m.AccessBoost <= 0 || m.AccessBoost > 1 {
		return fmt.Errorf("%w: access_boost must be in (0, 1], got %g", ErrInvalidConfig, m.AccessBoost)
	}
	if m.DecayRate <= 0 || m.DecayRate > 1 {
		return fmt.Errorf("%w: decay_rate must be in (0, 1], got %g", ErrInvalidConfig, m.DecayRate)
	}
	if m.HalfLifeHours <= 0 {
		return fmt.Errorf("%w: half_life_hours must be positive, got %g", ErrInvalidConfig, m.HalfLifeHours)
	}
	if m.ImportanceFloor < 0 || m.ImportanceFloor > 1 {
		return fmt.Errorf("%w: importance_floor must be in [0, 1], got %g", ErrInvalidConfig, m.ImportanceFloor)
	}
	if m.CriticalThreshold <= 0 || m.CriticalThreshold > 1 {
		return fmt.Errorf("%w: critical_threshold must be in (0, 1], got %g", ErrInvalidConfig, m.CriticalThreshold)
	}
	if m.ConsolidationThreshold <= 0 || m.ConsolidationThreshold > 1 {
		return fmt.Errorf("%w: consolidation_threshold must be in (0, 1], got %g", ErrInvalidConfig, m.ConsolidationThreshold)
	}
	if m.RecencyHalfLifeHours <= 0 {
		return fmt.Errorf("%w: recency_half_life_hours must be positive, got %g", ErrInvalidConfig, m.RecencyHalfLifeHours)
	}
	if m.SimilarityWeight < 0 {
		return fmt.Errorf("%w: similarity_weight must be >= 0, got %g", ErrInvalidConfig, m.SimilarityWeight)
	}
	if m.ImportanceWeight < 0 {
		return fmt.Errorf("%w: importance_weight must be >= 0, got %g", ErrInvalidConfig, m.ImportanceWeight)
	}
	if m.RecencyWeight < 0 {
		return fmt.Errorf("%w: recency_weight must be >= 0, got %g", ErrInvalidConfig, m.RecencyWeight)
	}
	if m.MaintenanceInterval < 0 {
		return fmt.Errorf("%w: maintenance_interval must be >= 0, got %d", ErrInvalidConfig, m.MaintenanceInterval)
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	// First check the current directory
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	// Check project root directory (search upward)
	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
