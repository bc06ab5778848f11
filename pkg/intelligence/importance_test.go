package intelligence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fcrew-ai/smartmem-go/pkg/intelligence"
)

func TestRuleBasedImportance(t *testing.T) {
	evaluator := intelligence.NewImportanceEvaluator(nil)
	ctx := context.Background()

	plain := evaluator.EvaluateImportance(ctx, "the sky is blue", nil)
	assert.InDelta(t, 0.3, plain, 1e-9)

	keyword := evaluator.EvaluateImportance(ctx, "this is critical", nil)
	assert.Greater(t, keyword, plain)

	emphatic := evaluator.EvaluateImportance(ctx, "this is critical!", nil)
	assert.Greater(t, emphatic, keyword)
}

func TestRuleBasedImportancePriorityTags(t *testing.T) {
	evaluator := intelligence.NewImportanceEvaluator(nil)
	ctx := context.Background()

	base := evaluator.EvaluateImportance(ctx, "status update", nil)
	medium := evaluator.EvaluateImportance(ctx, "status update",
		map[string]string{"priority": "medium"})
	high := evaluator.EvaluateImportance(ctx, "status update",
		map[string]string{"priority": "high"})

	assert.InDelta(t, base+0.1, medium, 1e-9)
	assert.InDelta(t, base+0.2, high, 1e-9)
}

func TestRuleBasedImportanceIsCapped(t *testing.T) {
	evaluator := intelligence.NewImportanceEvaluator(nil)

	// Pile on every bonus; the result still may not exceed 1.0.
	content := "important critical urgent remember note preference deadline decision always never! " +
		"this sentence pads the content well past one hundred characters to trigger the length bonus too"
	score := evaluator.EvaluateImportance(context.Background(), content,
		map[string]string{"priority": "high"})

	assert.Equal(t, 1.0, score)
	assert.LessOrEqual(t, score, 1.0)
}
