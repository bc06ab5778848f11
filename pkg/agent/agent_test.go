package agent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/agent"
	"github.com/fcrew-ai/smartmem-go/pkg/core"
	"github.com/fcrew-ai/smartmem-go/pkg/llm"
	"github.com/fcrew-ai/smartmem-go/pkg/personality"
	"github.com/fcrew-ai/smartmem-go/pkg/prompt"
)

// stubLLM echoes a canned answer and records the last prompt it saw.
type stubLLM struct {
	answer     string
	lastPrompt string
}

func (s *stubLLM) Generate(ctx context.Context, p string, opts ...llm.GenerateOption) (string, error) {
	s.lastPrompt = p
	return s.answer, nil
}

func (s *stubLLM) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	return s.answer, nil
}

func (s *stubLLM) Close() error { return nil }

var _ llm.Provider = (*stubLLM)(nil)

func newTestClient(t *testing.T) *core.Client {
	t.Helper()

	client, err := core.NewClient(&core.Config{
		Storage:  core.StorageConfig{Provider: "inmem"},
		Embedder: core.EmbedderConfig{Provider: "mock", Dimensions: 16},
		Memory:   core.DefaultMemoryConfig(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRememberTagsRole(t *testing.T) {
	client := newTestClient(t)
	researcher := agent.New("researcher", client)

	mem, err := researcher.Remember(context.Background(), "finding one")
	require.NoError(t, err)
	assert.Equal(t, "researcher", mem.Context["agent"])
}

func TestSharedMemoryAcrossAgents(t *testing.T) {
	client := newTestClient(t)
	researcher := agent.New("researcher", client)
	writer := agent.New("writer", client)
	ctx := context.Background()

	_, err := researcher.Remember(ctx, "customers want an export feature")
	require.NoError(t, err)

	// The writer recalls what the researcher stored.
	results, err := writer.Recall(ctx, "customers want an export feature")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "customers want an export feature", results[0].Content)
	assert.Equal(t, "researcher", results[0].Context["agent"])
}

func TestRecallOwnFiltersByRole(t *testing.T) {
	client := newTestClient(t)
	researcher := agent.New("researcher", client)
	writer := agent.New("writer", client)
	ctx := context.Background()

	_, err := researcher.Remember(ctx, "research note")
	require.NoError(t, err)
	_, err = writer.Remember(ctx, "draft note")
	require.NoError(t, err)

	own, err := writer.RecallOwn(ctx, "note")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "draft note", own[0].Content)
}

func TestExecuteTaskRequiresLLM(t *testing.T) {
	client := newTestClient(t)
	bare := agent.New("researcher", client)

	_, err := bare.ExecuteTask(context.Background(), "summarize findings", nil)
	assert.ErrorIs(t, err, agent.ErrNoLLM)
}

func TestExecuteTaskUsesMemoriesAndStoresResult(t *testing.T) {
	client := newTestClient(t)
	model := &stubLLM{answer: "The export feature should ship next quarter."}
	researcher := agent.New("researcher", client, agent.WithLLM(model))
	ctx := context.Background()

	_, err := researcher.Remember(ctx, "customers want an export feature")
	require.NoError(t, err)

	result, err := researcher.ExecuteTask(ctx, "customers want an export feature", nil)
	require.NoError(t, err)
	assert.Equal(t, "The export feature should ship next quarter.", result)

	// Recalled memory made it into the prompt.
	assert.Contains(t, model.lastPrompt, "customers want an export feature")
	assert.Contains(t, model.lastPrompt, "researcher")

	// The result was remembered with task provenance.
	found := false
	for _, mem := range client.All() {
		if mem.Content == result {
			found = true
			assert.Equal(t, "researcher", mem.Context["agent"])
			assert.Equal(t, "customers want an export feature", mem.Context["task"])
		}
	}
	assert.True(t, found)
}

func TestExecuteTaskWithPromptTemplate(t *testing.T) {
	client := newTestClient(t)
	manager, err := prompt.NewManager("")
	require.NoError(t, err)
	_, err = manager.AddTemplate("summarize", "Summarize ${topic} in two lines.", "", []string{"topic"})
	require.NoError(t, err)

	model := &stubLLM{answer: "done"}
	a := agent.New("writer", client,
		agent.WithLLM(model),
		agent.WithPromptManager(manager),
	)

	_, err = a.ExecuteTask(context.Background(), "summarize",
		map[string]string{"topic": "the survey results"})
	require.NoError(t, err)

	assert.Contains(t, model.lastPrompt, "Summarize the survey results in two lines.")
}

func TestExecuteTaskPersonalityShapesResult(t *testing.T) {
	client := newTestClient(t)
	model := &stubLLM{answer: "The report is ready."}

	persona := personality.New()
	persona.SetTrait("extraversion", 0.9)

	a := agent.New("writer", client,
		agent.WithLLM(model),
		agent.WithPersonality(persona),
	)

	result, err := a.ExecuteTask(context.Background(), "status update", nil)
	require.NoError(t, err)
	assert.True(t, strings.Contains(result, "!"))
}
