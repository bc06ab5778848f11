// Package openai implements embedder.Provider over the OpenAI embeddings
// API.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fcrew-ai/smartmem-go/pkg/embedder"
)

const defaultDimensions = 1536

// embeddingModels maps configured model names to the SDK's embedding
// model enum.
var embeddingModels = map[string]openai.EmbeddingModel{
	"text-embedding-ada-002": openai.AdaEmbeddingV2,
}

// Config configures the OpenAI embedder. APIKey is required. Model falls
// back to text-embedding-ada-002, Dimensions to 1536, and BaseURL to the
// official endpoint when empty.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// Client embeds text through the OpenAI embeddings API.
type Client struct {
	api        *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewClient creates an OpenAI embedder from the given config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: api key is required")
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	model := openai.AdaEmbeddingV2
	if cfg.Model != "" {
		known, ok := embeddingModels[cfg.Model]
		if !ok {
			return nil, fmt.Errorf("openai embedder: unsupported model %q", cfg.Model)
		}
		model = known
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = defaultDimensions
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiConfig),
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed converts one text into a vector. API failures surface as errors
// wrapping embedder.ErrEmbeddingUnavailable.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in a single API request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedder.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			embedder.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = widen(item.Embedding)
	}
	return vectors, nil
}

// Dimensions returns the configured vector length.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Close is a no-op; the SDK holds no persistent connection.
func (c *Client) Close() error {
	return nil
}

// widen converts the API's float32 vector to the float64 form the memory
// layer computes with.
func widen(vec []float32) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = float64(v)
	}
	return out
}
