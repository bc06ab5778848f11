package core

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/fcrew-ai/smartmem-go/pkg/embedder"
	embmock "github.com/fcrew-ai/smartmem-go/pkg/embedder/mock"
	embopenai "github.com/fcrew-ai/smartmem-go/pkg/embedder/openai"
	"github.com/fcrew-ai/smartmem-go/pkg/intelligence"
	"github.com/fcrew-ai/smartmem-go/pkg/llm"
	llmopenai "github.com/fcrew-ai/smartmem-go/pkg/llm/openai"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
	"github.com/fcrew-ai/smartmem-go/pkg/retrieval"
	"github.com/fcrew-ai/smartmem-go/pkg/storage"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/inmem"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/mysql"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/postgres"
	"github.com/fcrew-ai/smartmem-go/pkg/storage/sqlite"
)

// Memory is a single long-term memory record.
type Memory = memstore.Record

// Client is the main SmartMem client.
//
// It combines the memory store, retrieval engine, forgetting policy, and
// consolidation engine behind one handle. A single Client may be shared by
// any number of agents and goroutines.
//
// Example:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, err := core.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	memory, _ := client.Remember(ctx, "User prefers dark mode",
//	    core.WithTag("topic", "preferences"),
//	)
//	results, _ := client.Recall(ctx, "What UI theme does the user like?")
type Client struct {
	config        *Config
	store         *memstore.Store
	engine        *retrieval.Engine
	forgetting    *intelligence.ForgettingManager
	consolidation *intelligence.ConsolidationManager
	evaluator     *intelligence.ImportanceEvaluator
	embedder      embedder.Provider
	llm           llm.Provider
	node          *snowflake.Node

	// inserts counts Remember calls since startup, used to trigger
	// automatic maintenance every MaintenanceInterval inserts.
	inserts int64
}

// MaintenanceReport summarizes one maintenance pass.
type MaintenanceReport struct {
	// Evicted is the number of records removed by capacity enforcement.
	Evicted int
}

// NewClient creates a new SmartMem client from the given configuration.
//
// If config is nil, configuration is loaded from environment variables
// (see LoadConfigFromEnv). The configuration is validated before any
// resource is opened; an invalid configuration fails here with
// ErrInvalidConfig rather than at first use.
//
// The persisted record set is reloaded on construction, so the client
// resumes with the same memories it held before a restart.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		loaded, err := LoadConfigFromEnv()
		if err != nil {
			return nil, NewMemoryError("NewClient", err)
		}
		config = loaded
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	backend, err := initStorage(&config.Storage)
	if err != nil {
		return nil, NewMemoryError("NewClient", err)
	}

	emb, err := initEmbedder(&config.Embedder)
	if err != nil {
		_ = backend.Close()
		return nil, NewMemoryError("NewClient", err)
	}

	var llmProvider llm.Provider
	if config.LLM != nil {
		llmProvider, err = initLLM(config.LLM)
		if err != nil {
			_ = backend.Close()
			return nil, NewMemoryError("NewClient", err)
		}
	}

	mem := config.Memory
	hardLimit := int(float64(mem.MaxMemories) * mem.HardLimitFactor)

	store, err := memstore.NewStore(context.Background(), backend, memstore.Config{
		HardLimit:   hardLimit,
		AccessBoost: mem.AccessBoost,
	})
	if err != nil {
		_ = backend.Close()
		return nil, NewMemoryError("NewClient", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		_ = store.Close()
		return nil, NewMemoryError("NewClient", err)
	}

	engine := retrieval.NewEngine(store, emb, retrieval.Weights{
		Similarity:      mem.SimilarityWeight,
		Importance:      mem.ImportanceWeight,
		Recency:         mem.RecencyWeight,
		RecencyHalfLife: hoursToDuration(mem.RecencyHalfLifeHours),
	})

	forgetting := intelligence.NewForgettingManager(store, intelligence.ForgettingConfig{
		MaxMemories:       mem.MaxMemories,
		DecayRate:         mem.DecayRate,
		HalfLife:          hoursToDuration(mem.HalfLifeHours),
		ImportanceFloor:   mem.ImportanceFloor,
		CriticalThreshold: mem.CriticalThreshold,
	})

	var summarizer intelligence.Summarizer = intelligence.JoinSummarizer{}
	if llmProvider != nil {
		summarizer = intelligence.NewLLMSummarizer(llmProvider)
	}
	consolidation := intelligence.NewConsolidationManager(
		store,
		summarizer,
		func() int64 { return node.Generate().Int64() },
		mem.ConsolidationThreshold,
	)

	return &Client{
		config:        config,
		store:         store,
		engine:        engine,
		forgetting:    forgetting,
		consolidation: consolidation,
		evaluator:     intelligence.NewImportanceEvaluator(llmProvider),
		embedder:      emb,
		llm:           llmProvider,
		node:          node,
	}, nil
}

// Remember stores a new memory.
//
// The content is embedded, assigned a unique id and an importance score,
// and persisted before it becomes recallable. Importance resolution order:
//
//  1. An explicit WithImportance option.
//  2. The LLM importance evaluator, when an LLM provider is configured.
//  3. The configured DefaultImportance.
//
// After every MaintenanceInterval inserts a maintenance pass (decay and
// capacity enforcement) runs automatically. If maintenance fails the stored
// memory is still returned together with the maintenance error, so the
// caller can surface it without losing the write.
//
// Example:
//
//	memory, err := client.Remember(ctx, "API rate limit is 100 req/min",
//	    core.WithImportance(0.9),
//	    core.WithTag("topic", "api"),
//	)
func (c *Client) Remember(ctx context.Context, content string, opts ...RememberOption) (*Memory, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewMemoryError("Remember", fmt.Errorf("%w: content is empty", ErrInvalidArgument))
	}

	options := applyRememberOptions(opts)

	var importance float64
	switch {
	case options.Importance != nil:
		importance = memstore.ClampImportance(*options.Importance)
	case c.llm != nil:
		importance = c.evaluator.EvaluateImportance(ctx, content, options.Context)
	default:
		importance = c.config.Memory.DefaultImportance
	}

	// Embed before touching the store so no provider call happens under
	// the store lock.
	vector, err := c.embedder.Embed(ctx, content)
	if err != nil {
		return nil, NewMemoryError("Remember", err)
	}

	now := time.Now()
	rec := &Memory{
		ID:             c.node.Generate().Int64(),
		Content:        content,
		Embedding:      vector,
		Importance:     importance,
		Context:        options.Context,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	if err := c.store.Insert(ctx, rec); err != nil {
		return nil, NewMemoryError("Remember", err)
	}

	stored, err := c.store.Get(rec.ID)
	if err != nil {
		return nil, NewMemoryError("Remember", err)
	}

	interval := c.config.Memory.MaintenanceInterval
	if interval > 0 && atomic.AddInt64(&c.inserts, 1)%int64(interval) == 0 {
		if _, err := c.Maintain(ctx); err != nil {
			return stored, err
		}
	}

	return stored, nil
}

// Recall retrieves memories relevant to the query, most relevant first.
//
// Results are ranked by a blend of embedding similarity, importance, and
// recency. Every returned memory is reinforced as a side effect of being
// recalled. An empty result is not an error.
//
// Example:
//
//	results, err := client.Recall(ctx, "api limits",
//	    core.WithLimit(10),
//	    core.WithFilterTag("topic", "api"),
//	)
func (c *Client) Recall(ctx context.Context, query string, opts ...RecallOption) ([]*Memory, error) {
	options := applyRecallOptions(opts)

	results, err := c.engine.Recall(ctx, query, options.Limit, options.Filter)
	if err != nil {
		return nil, NewMemoryError("Recall", err)
	}
	return results, nil
}

// Get returns the memory with the given id, without reinforcing it.
//
// Returns ErrNotFound if no such memory exists.
func (c *Client) Get(id int64) (*Memory, error) {
	rec, err := c.store.Get(id)
	if err != nil {
		return nil, NewMemoryError("Get", err)
	}
	return rec, nil
}

// Forget removes the memory with the given id. Forgetting an absent id is
// a no-op.
func (c *Client) Forget(ctx context.Context, id int64) error {
	if err := c.store.Remove(ctx, id); err != nil {
		return NewMemoryError("Forget", err)
	}
	return nil
}

// SetImportance overrides a memory's importance, clamped to [0, 1].
//
// Returns ErrNotFound if no such memory exists.
func (c *Client) SetImportance(ctx context.Context, id int64, importance float64) error {
	if err := c.store.UpdateImportance(ctx, id, importance); err != nil {
		return NewMemoryError("SetImportance", err)
	}
	return nil
}

// Reinforce strengthens a memory as if it had been recalled: the access
// count increases and importance moves toward 1.0 by the access boost.
//
// Returns the updated memory, or ErrNotFound if no such memory exists.
func (c *Client) Reinforce(ctx context.Context, id int64) (*Memory, error) {
	if err := c.store.Touch(ctx, id); err != nil {
		return nil, NewMemoryError("Reinforce", err)
	}
	rec, err := c.store.Get(id)
	if err != nil {
		return nil, NewMemoryError("Reinforce", err)
	}
	return rec, nil
}

// All returns a snapshot of every memory. Order is unspecified.
func (c *Client) All() []*Memory {
	return c.store.All()
}

// Size returns the current number of memories.
func (c *Client) Size() int {
	return c.store.Size()
}

// DecayTick applies importance decay to every memory, based on time since
// each memory's last access.
//
// Decay is normally driven by automatic maintenance; call this directly
// when running maintenance on an external schedule.
func (c *Client) DecayTick(ctx context.Context) error {
	if err := c.forgetting.DecayTick(ctx, time.Now()); err != nil {
		return NewMemoryError("DecayTick", err)
	}
	return nil
}

// EnforceCapacity evicts low-value memories until the store is within the
// configured maximum. Returns the number of evicted memories.
//
// Returns ErrEvictionDeadlock if the store is over capacity but every
// remaining memory is protected by the critical importance threshold.
func (c *Client) EnforceCapacity(ctx context.Context) (int, error) {
	evicted, err := c.forgetting.EnforceCapacity(ctx)
	if err != nil {
		return evicted, NewMemoryError("EnforceCapacity", err)
	}
	return evicted, nil
}

// Consolidate merges clusters of highly similar memories into single
// consolidated memories, each carrying the merged content, the maximum
// importance of its sources, and the source ids for provenance.
//
// Returns the number of clusters merged and the number of source memories
// replaced.
func (c *Client) Consolidate(ctx context.Context) (clustersMerged, recordsRemoved int, err error) {
	clustersMerged, recordsRemoved, err = c.consolidation.Consolidate(ctx)
	if err != nil {
		return clustersMerged, recordsRemoved, NewMemoryError("Consolidate", err)
	}
	return clustersMerged, recordsRemoved, nil
}

// Maintain runs one maintenance pass: a decay tick followed by capacity
// enforcement. It is invoked automatically every MaintenanceInterval
// inserts and can also be called on an external schedule.
func (c *Client) Maintain(ctx context.Context) (*MaintenanceReport, error) {
	if err := c.forgetting.DecayTick(ctx, time.Now()); err != nil {
		return nil, NewMemoryError("Maintain", err)
	}

	evicted, err := c.forgetting.EnforceCapacity(ctx)
	report := &MaintenanceReport{Evicted: evicted}
	if err != nil {
		return report, NewMemoryError("Maintain", err)
	}
	return report, nil
}

// Close releases all resources held by the client.
func (c *Client) Close() error {
	var firstErr error

	if err := c.store.Close(); err != nil {
		firstErr = err
	}
	if err := c.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if c.llm != nil {
		if err := c.llm.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return NewMemoryError("Close", firstErr)
	}
	return nil
}

// initStorage initializes the storage backend based on configuration.
// Backend construction failures are reported as ErrStorageOperation.
func initStorage(cfg *StorageConfig) (storage.Backend, error) {
	var backend storage.Backend
	var err error

	switch cfg.Provider {
	case "sqlite":
		backend, err = sqlite.NewClient(&sqlite.Config{
			DBPath:    getConfigString(cfg.Config, "db_path", "./smartmem.db"),
			TableName: getConfigString(cfg.Config, "table_name", "memories"),
		})
	case "postgres":
		backend, err = postgres.NewClient(&postgres.Config{
			Host:      getConfigString(cfg.Config, "host", "localhost"),
			Port:      getConfigInt(cfg.Config, "port", 5432),
			User:      getConfigString(cfg.Config, "user", "postgres"),
			Password:  getConfigString(cfg.Config, "password", ""),
			DBName:    getConfigString(cfg.Config, "db_name", "smartmem"),
			TableName: getConfigString(cfg.Config, "table_name", "memories"),
			SSLMode:   getConfigString(cfg.Config, "ssl_mode", "disable"),
		})
	case "mysql":
		backend, err = mysql.NewClient(&mysql.Config{
			Host:      getConfigString(cfg.Config, "host", "127.0.0.1"),
			Port:      getConfigInt(cfg.Config, "port", 3306),
			User:      getConfigString(cfg.Config, "user", "root"),
			Password:  getConfigString(cfg.Config, "password", ""),
			DBName:    getConfigString(cfg.Config, "db_name", "smartmem"),
			TableName: getConfigString(cfg.Config, "table_name", "memories"),
		})
	case "inmem":
		return inmem.NewClient(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported storage provider: %s", ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageOperation, err)
	}
	return backend, nil
}

// initEmbedder initializes the embedding provider based on configuration.
func initEmbedder(cfg *EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return embopenai.NewClient(&embopenai.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "mock":
		return embmock.New(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("%w: unsupported embedder provider: %s", ErrInvalidConfig, cfg.Provider)
	}
}

// initLLM initializes the LLM provider based on configuration.
// Provider construction failures are reported as ErrLLMOperation.
func initLLM(cfg *LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "openai":
		provider, err := llmopenai.NewClient(&llmopenai.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMOperation, err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: unsupported llm provider: %s", ErrInvalidConfig, cfg.Provider)
	}
}

// hoursToDuration converts a fractional hour count to a time.Duration.
func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// getConfigString extracts a string value from a config map.
func getConfigString(config map[string]interface{}, key, defaultValue string) string {
	if v, ok := config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// getConfigInt extracts an int value from a config map.
func getConfigInt(config map[string]interface{}, key string, defaultValue int) int {
	switch v := config[key].(type) {
	case int:
		return v
	case float64:
		// JSON numbers decode as float64.
		return int(v)
	}
	return defaultValue
}
