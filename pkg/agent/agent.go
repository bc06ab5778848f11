// Package agent provides a memory-enhanced agent that executes tasks
// with recalled context, managed prompt templates, and an optional
// personality layer. Multiple agents can share one memory client.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fcrew-ai/smartmem-go/pkg/core"
	"github.com/fcrew-ai/smartmem-go/pkg/llm"
	"github.com/fcrew-ai/smartmem-go/pkg/personality"
	"github.com/fcrew-ai/smartmem-go/pkg/prompt"
)

// ErrNoLLM indicates that ExecuteTask was called on an agent without an
// LLM provider.
var ErrNoLLM = errors.New("agent has no llm provider")

// taskResultImportance is assigned to memories stored from task results.
const taskResultImportance = 0.8

// Agent is a role-scoped handle over a shared memory client.
//
// Memories the agent stores carry its role as a context tag, so
// role-filtered recall works while the underlying memory remains shared
// across all agents using the same client.
//
// Example:
//
//	researcher := agent.New("researcher", client,
//	    agent.WithLLM(llmProvider),
//	    agent.WithPersonality(personality.New()),
//	)
//	result, err := researcher.ExecuteTask(ctx, "summarize findings", nil)
type Agent struct {
	role    string
	client  *core.Client
	llm     llm.Provider
	prompts *prompt.Manager
	persona *personality.Personality
}

// Option configures an Agent.
type Option func(*Agent)

// WithLLM attaches an LLM provider so the agent can execute tasks.
func WithLLM(provider llm.Provider) Option {
	return func(a *Agent) {
		a.llm = provider
	}
}

// WithPromptManager attaches a prompt manager. When a template named
// after a task exists, ExecuteTask formats it instead of using the task
// text directly.
func WithPromptManager(manager *prompt.Manager) Option {
	return func(a *Agent) {
		a.prompts = manager
	}
}

// WithPersonality attaches a personality that shapes responses and
// reacts to task outcomes.
func WithPersonality(p *personality.Personality) Option {
	return func(a *Agent) {
		a.persona = p
	}
}

// New creates an agent with the given role over a shared memory client.
func New(role string, client *core.Client, opts ...Option) *Agent {
	a := &Agent{
		role:   role,
		client: client,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Role returns the agent's role.
func (a *Agent) Role() string {
	return a.role
}

// Remember stores a memory tagged with the agent's role.
func (a *Agent) Remember(ctx context.Context, content string, opts ...core.RememberOption) (*core.Memory, error) {
	opts = append(opts, core.WithTag("agent", a.role))
	return a.client.Remember(ctx, content, opts...)
}

// Recall retrieves memories relevant to the query from the shared
// store. Recall is not restricted to the agent's own memories; use
// RecallOwn for that.
func (a *Agent) Recall(ctx context.Context, query string, opts ...core.RecallOption) ([]*core.Memory, error) {
	return a.client.Recall(ctx, query, opts...)
}

// RecallOwn retrieves memories this agent stored itself.
func (a *Agent) RecallOwn(ctx context.Context, query string, opts ...core.RecallOption) ([]*core.Memory, error) {
	opts = append(opts, core.WithFilterTag("agent", a.role))
	return a.client.Recall(ctx, query, opts...)
}

// ExecuteTask runs a task through the LLM with recalled memories as
// context.
//
// The flow mirrors how a person would work: recall what is known about
// the task, phrase the request (through a managed template when one
// matches the task name), produce the answer, and remember the result.
// The stored result is tagged with the task and the agent's role.
//
// Returns ErrNoLLM when the agent was built without an LLM provider.
func (a *Agent) ExecuteTask(ctx context.Context, task string, variables map[string]string) (string, error) {
	if a.llm == nil {
		return "", fmt.Errorf("agent %q: %w", a.role, ErrNoLLM)
	}

	memories, err := a.client.Recall(ctx, task, core.WithLimit(5))
	if err != nil {
		return "", fmt.Errorf("agent %q: recall: %w", a.role, err)
	}

	description := task
	if a.prompts != nil {
		if template, err := a.prompts.GetTemplate(task); err == nil {
			formatted, err := template.Format(variables)
			if err != nil {
				return "", fmt.Errorf("agent %q: format template: %w", a.role, err)
			}
			description = formatted
		}
	}

	result, err := a.llm.Generate(ctx, a.buildPrompt(description, memories))
	if err != nil {
		return "", fmt.Errorf("agent %q: generate: %w", a.role, err)
	}

	if a.persona != nil {
		a.persona.ProcessInteraction(task)
		result = a.persona.AdjustResponse(result)
	}

	_, err = a.client.Remember(ctx, result,
		core.WithImportance(taskResultImportance),
		core.WithTag("task", task),
		core.WithTag("agent", a.role),
	)
	if err != nil {
		return result, fmt.Errorf("agent %q: remember result: %w", a.role, err)
	}

	return result, nil
}

// buildPrompt assembles the final prompt from the task description and
// any recalled memories.
func (a *Agent) buildPrompt(description string, memories []*core.Memory) string {
	var sb strings.Builder

	sb.WriteString("You are acting as: ")
	sb.WriteString(a.role)
	sb.WriteString("\n\n")

	if len(memories) > 0 {
		sb.WriteString("Relevant memories:\n")
		for _, mem := range memories {
			sb.WriteString("- ")
			sb.WriteString(mem.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Task: ")
	sb.WriteString(description)
	return sb.String()
}
