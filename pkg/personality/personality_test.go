package personality_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/personality"
)

func TestNewDefaults(t *testing.T) {
	p := personality.New()

	for _, name := range []string{"openness", "conscientiousness", "extraversion", "agreeableness", "neuroticism"} {
		trait, ok := p.Trait(name)
		require.True(t, ok, name)
		assert.Equal(t, 0.5, trait.Value)
	}

	emotions := p.Emotions()
	assert.Equal(t, 0.5, emotions.Joy)
	assert.Equal(t, 0.5, emotions.Trust)
	assert.Equal(t, 0.0, emotions.Anger)
}

func TestSetTraitClamps(t *testing.T) {
	p := personality.New()

	p.SetTrait("openness", 1.7)
	trait, _ := p.Trait("openness")
	assert.Equal(t, 1.0, trait.Value)

	p.SetTrait("openness", -0.4)
	trait, _ = p.Trait("openness")
	assert.Equal(t, 0.0, trait.Value)
}

func TestProcessInteractionShiftsEmotions(t *testing.T) {
	p := personality.New()
	baseline := p.Emotions()

	p.ProcessInteraction("excellent work, thanks!")
	after := p.Emotions()
	assert.Greater(t, after.Joy, baseline.Joy)

	p.ProcessInteraction("there is a problem, this is a failure")
	assert.Greater(t, p.Emotions().Sadness, baseline.Sadness)

	assert.Len(t, p.History(), 2)
}

func TestEmotionsStayInRange(t *testing.T) {
	p := personality.New()

	for i := 0; i < 20; i++ {
		p.ProcessInteraction("excellent great thanks")
	}
	assert.LessOrEqual(t, p.Emotions().Joy, 1.0)

	for i := 0; i < 20; i++ {
		p.ProcessInteraction("error problem bad failure")
	}
	assert.LessOrEqual(t, p.Emotions().Sadness, 1.0)
	assert.GreaterOrEqual(t, p.Emotions().Joy, 0.0)
}

func TestAdjustResponseExtraversion(t *testing.T) {
	p := personality.New()

	p.SetTrait("extraversion", 0.9)
	assert.Contains(t, p.AdjustResponse("Done."), "Done!")

	p.SetTrait("extraversion", 0.1)
	adjusted := p.AdjustResponse("Done!")
	assert.True(t, strings.HasSuffix(adjusted, "..."))
	assert.NotContains(t, adjusted, "!")
}

func TestInfluenceRanges(t *testing.T) {
	p := personality.New()
	p.SetTrait("openness", 0.9)

	influence := p.Influence()
	for _, key := range []string{"creativity", "detail_focus", "collaboration", "risk_taking"} {
		assert.Contains(t, influence, key)
		assert.GreaterOrEqual(t, influence[key], 0.0)
		assert.LessOrEqual(t, influence[key], 1.0)
	}

	// High openness drives creativity.
	assert.Greater(t, influence["creativity"], 0.6)
}

func TestSaveAndLoadState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personality.json")

	p := personality.New()
	p.SetTrait("agreeableness", 0.8)
	p.ProcessInteraction("excellent work")
	require.NoError(t, p.SaveState(path))

	restored := personality.New()
	require.NoError(t, restored.LoadState(path))

	trait, ok := restored.Trait("agreeableness")
	require.True(t, ok)
	assert.Equal(t, 0.8, trait.Value)
	assert.Equal(t, p.Emotions(), restored.Emotions())
	assert.Len(t, restored.History(), 1)
}
