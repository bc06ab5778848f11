package prompt_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/prompt"
)

func TestTemplateFormat(t *testing.T) {
	tmpl := prompt.NewTemplate("research",
		"Research ${topic} and report to ${audience}.", "", []string{"topic", "audience"})

	out, err := tmpl.Format(map[string]string{
		"topic":    "vector databases",
		"audience": "the platform team",
	})
	require.NoError(t, err)
	assert.Equal(t, "Research vector databases and report to the platform team.", out)
}

func TestTemplateFormatMissingVariables(t *testing.T) {
	tmpl := prompt.NewTemplate("research",
		"Research ${topic}.", "", []string{"topic"})

	_, err := tmpl.Format(nil)
	assert.ErrorIs(t, err, prompt.ErrMissingVariables)
}

func TestTemplateFormatLeavesUnknownPlaceholders(t *testing.T) {
	// ${later} is not declared required, so formatting without it keeps
	// the placeholder for a second pass.
	tmpl := prompt.NewTemplate("partial",
		"Do ${now}, then ${later}.", "", []string{"now"})

	out, err := tmpl.Format(map[string]string{"now": "the research"})
	require.NoError(t, err)
	assert.Equal(t, "Do the research, then ${later}.", out)
}

func TestTemplateVersioning(t *testing.T) {
	tmpl := prompt.NewTemplate("greeting", "Hello ${name}", "", []string{"name"})
	require.Len(t, tmpl.Versions, 1)

	tmpl.AddVersion("Hi ${name}")
	assert.Equal(t, "Hi ${name}", tmpl.Content)
	assert.Len(t, tmpl.Versions, 2)

	v1, ok := tmpl.GetVersion(1)
	require.True(t, ok)
	assert.Equal(t, "Hello ${name}", v1.Content)

	_, ok = tmpl.GetVersion(3)
	assert.False(t, ok)
	_, ok = tmpl.GetVersion(0)
	assert.False(t, ok)
}

func TestManagerAddGetUpdate(t *testing.T) {
	manager, err := prompt.NewManager("")
	require.NoError(t, err)

	_, err = manager.AddTemplate("summarize", "Summarize ${text}", "summary prompt", []string{"text"})
	require.NoError(t, err)

	tmpl, err := manager.GetTemplate("summarize")
	require.NoError(t, err)
	assert.Equal(t, "summary prompt", tmpl.Description)

	_, err = manager.GetTemplate("missing")
	assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)

	updated, err := manager.UpdateTemplate("summarize", "Briefly summarize ${text}", "", nil)
	require.NoError(t, err)
	assert.Len(t, updated.Versions, 2)

	_, err = manager.UpdateTemplate("missing", "x", "", nil)
	assert.ErrorIs(t, err, prompt.ErrTemplateNotFound)
}

func TestGetTemplateReturnsCopy(t *testing.T) {
	manager, err := prompt.NewManager("")
	require.NoError(t, err)

	_, err = manager.AddTemplate("summarize", "Summarize ${text}", "", []string{"text"})
	require.NoError(t, err)

	// Revising the returned template must not leak into the manager.
	tmpl, err := manager.GetTemplate("summarize")
	require.NoError(t, err)
	tmpl.AddVersion("hijacked")
	tmpl.Variables = append(tmpl.Variables, "extra")

	stored, err := manager.GetTemplate("summarize")
	require.NoError(t, err)
	assert.Equal(t, "Summarize ${text}", stored.Content)
	assert.Len(t, stored.Versions, 1)
	assert.Equal(t, []string{"text"}, stored.Variables)
}

func TestManagerPersistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	manager, err := prompt.NewManager(dir)
	require.NoError(t, err)

	_, err = manager.AddTemplate("a", "alpha ${x}", "", []string{"x"})
	require.NoError(t, err)
	_, err = manager.AddTemplate("b", "beta", "", nil)
	require.NoError(t, err)
	_, err = manager.UpdateTemplate("a", "alpha prime ${x}", "", nil)
	require.NoError(t, err)

	// A second manager over the same directory sees everything,
	// including version history.
	reloaded, err := prompt.NewManager(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, reloaded.Names())

	tmpl, err := reloaded.GetTemplate("a")
	require.NoError(t, err)
	assert.Equal(t, "alpha prime ${x}", tmpl.Content)
	assert.Len(t, tmpl.Versions, 2)
}
