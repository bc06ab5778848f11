package core

// RememberOption is a function type for configuring Remember operations.
//
// Options are applied using the functional options pattern, allowing
// flexible configuration without requiring all parameters.
type RememberOption func(*RememberOptions)

// RememberOptions contains configuration options for Remember operations.
type RememberOptions struct {
	// Importance is the explicit importance for the new memory.
	// When set, neither the LLM evaluator nor the configured default
	// is consulted.
	Importance *float64

	// Context contains descriptive tags attached to the memory
	// (e.g., "agent", "topic", "source"). Tags participate in
	// context-filtered recall.
	Context map[string]string
}

// WithImportance sets an explicit importance for Remember operations.
//
// The value is clamped to [0, 1].
//
// Example:
//
//	memory, _ := client.Remember(ctx, "content", core.WithImportance(0.95))
func WithImportance(importance float64) RememberOption {
	return func(opts *RememberOptions) {
		opts.Importance = &importance
	}
}

// WithContext sets the full context tag map for Remember operations.
//
// Example:
//
//	memory, _ := client.Remember(ctx, "content",
//	    core.WithContext(map[string]string{
//	        "agent": "researcher",
//	        "topic": "golang",
//	    }),
//	)
func WithContext(context map[string]string) RememberOption {
	return func(opts *RememberOptions) {
		opts.Context = context
	}
}

// WithTag adds a single context tag for Remember operations.
//
// Tags accumulate across multiple WithTag options.
//
// Example:
//
//	memory, _ := client.Remember(ctx, "content",
//	    core.WithTag("agent", "researcher"),
//	    core.WithTag("topic", "golang"),
//	)
func WithTag(key, value string) RememberOption {
	return func(opts *RememberOptions) {
		if opts.Context == nil {
			opts.Context = make(map[string]string)
		}
		opts.Context[key] = value
	}
}

// RecallOption is a function type for configuring Recall operations.
type RecallOption func(*RecallOptions)

// RecallOptions contains configuration options for Recall operations.
type RecallOptions struct {
	// Limit sets the maximum number of results to return.
	// Default: 5
	Limit int

	// Filter restricts recall to memories whose context contains
	// every key/value pair in the filter.
	Filter map[string]string
}

// WithLimit sets the maximum number of results for Recall operations.
//
// Example:
//
//	results, _ := client.Recall(ctx, "query", core.WithLimit(10))
func WithLimit(limit int) RecallOption {
	return func(opts *RecallOptions) {
		opts.Limit = limit
	}
}

// WithFilter sets the context filter for Recall operations.
//
// Only memories whose context contains every key/value pair in the
// filter are considered.
//
// Example:
//
//	results, _ := client.Recall(ctx, "query",
//	    core.WithFilter(map[string]string{"agent": "researcher"}),
//	)
func WithFilter(filter map[string]string) RecallOption {
	return func(opts *RecallOptions) {
		opts.Filter = filter
	}
}

// WithFilterTag adds a single context filter entry for Recall operations.
//
// Filter entries accumulate across multiple WithFilterTag options.
//
// Example:
//
//	results, _ := client.Recall(ctx, "query",
//	    core.WithFilterTag("agent", "researcher"),
//	    core.WithFilterTag("topic", "golang"),
//	)
func WithFilterTag(key, value string) RecallOption {
	return func(opts *RecallOptions) {
		if opts.Filter == nil {
			opts.Filter = make(map[string]string)
		}
		opts.Filter[key] = value
	}
}

// applyRememberOptions applies Remember options to create RememberOptions.
func applyRememberOptions(opts []RememberOption) *RememberOptions {
	options := &RememberOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// applyRecallOptions applies Recall options to create RecallOptions.
func applyRecallOptions(opts []RecallOption) *RecallOptions {
	options := &RecallOptions{
		Limit: 5,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
