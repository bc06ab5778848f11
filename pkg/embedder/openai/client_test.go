package openai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/embedder"
	"github.com/fcrew-ai/smartmem-go/pkg/embedder/openai"
)

var _ embedder.Provider = (*openai.Client)(nil)

func TestNewClientDefaults(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
}

func TestNewClientKnownModel(t *testing.T) {
	client, err := openai.NewClient(&openai.Config{
		APIKey:     "sk-test",
		Model:      "text-embedding-ada-002",
		Dimensions: 1536,
	})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
}

func TestNewClientRejectsUnknownModel(t *testing.T) {
	_, err := openai.NewClient(&openai.Config{
		APIKey: "sk-test",
		Model:  "word2vec",
	})
	assert.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := openai.NewClient(&openai.Config{})
	assert.Error(t, err)

	_, err = openai.NewClient(nil)
	assert.Error(t, err)
}
