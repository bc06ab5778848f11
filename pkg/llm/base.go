// Package llm defines the port for text-generation providers.
//
// The memory core works without any LLM. A provider is only consumed by the
// optional consolidation summarizer, the importance evaluator, and the agent
// layer, all of which accept the Provider interface and never a concrete
// client.
package llm

import "context"

// Provider generates text. Implementations live in subpackages, one per
// backend service.
type Provider interface {
	// Generate completes a single user prompt.
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)

	// GenerateWithMessages completes a full conversation history.
	GenerateWithMessages(ctx context.Context, messages []Message, opts ...GenerateOption) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}

// Message is one turn in a conversation. Role is "system", "user", or
// "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateOptions holds per-call generation parameters.
type GenerateOptions struct {
	// Temperature controls randomness, 0.0 to 2.0.
	Temperature float64

	// MaxTokens bounds the response length. Zero means provider default.
	MaxTokens int

	// TopP is the nucleus sampling cutoff, 0.0 to 1.0.
	TopP float64

	// Stop lists sequences that terminate generation early.
	Stop []string
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*GenerateOptions)

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temperature
	}
}

// WithMaxTokens bounds the response length.
func WithMaxTokens(maxTokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTopP sets the nucleus sampling cutoff.
func WithTopP(topP float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.TopP = topP
	}
}

// ApplyGenerateOptions folds a slice of options over sensible defaults.
func ApplyGenerateOptions(opts []GenerateOption) *GenerateOptions {
	options := &GenerateOptions{
		Temperature: 0.7,
		TopP:        1.0,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
