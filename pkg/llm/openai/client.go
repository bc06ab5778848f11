// Package openai implements llm.Provider over the OpenAI chat completion
// API.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fcrew-ai/smartmem-go/pkg/llm"
)

const defaultModel = "gpt-4"

// Config configures the OpenAI provider. APIKey is required; Model falls
// back to gpt-4 and BaseURL to the official endpoint when empty.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client talks to the OpenAI chat completion API.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates an OpenAI provider from the given config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("openai llm: api key is required")
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiConfig),
		model: model,
	}, nil
}

// Generate wraps the prompt as a single user message.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMessages sends the full conversation and returns the first
// choice.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	options := llm.ApplyGenerateOptions(opts)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
		Stop:        options.Stop,
	})
	if err != nil {
		return "", fmt.Errorf("openai llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai llm: empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the SDK holds no persistent connection.
func (c *Client) Close() error {
	return nil
}

func toChatMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}
	return out
}
