package learning_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcrew-ai/smartmem-go/pkg/learning"
)

// greedyConfig disables exploration so action choices are deterministic.
func greedyConfig() learning.Config {
	cfg := learning.DefaultConfig()
	cfg.ExplorationRate = 0
	cfg.MinExplorationRate = 0
	return cfg
}

func experience(state map[string]float64, action string, reward float64, next map[string]float64) learning.Experience {
	return learning.Experience{
		State:     state,
		Action:    action,
		Reward:    reward,
		NextState: next,
		Timestamp: time.Now(),
	}
}

func TestChooseActionPrefersLearnedValue(t *testing.T) {
	learner := learning.NewLearnerWithConfig(nil, greedyConfig())
	state := map[string]float64{"progress": 0.2}
	next := map[string]float64{"progress": 0.4}

	// Before any learning, ties break by action-space order.
	assert.Equal(t, learning.DefaultActions[0], learner.ChooseAction(state))

	learner.Update(experience(state, "propose_solution", 1.0, next))

	assert.Equal(t, "propose_solution", learner.ChooseAction(state))
}

func TestUpdateAppliesQLearningRule(t *testing.T) {
	learner := learning.NewLearnerWithConfig(nil, greedyConfig())
	state := map[string]float64{"progress": 0.0}
	next := map[string]float64{"progress": 0.2}

	learner.Update(experience(state, "search_memory", 1.0, next))

	// Fresh Q-table: new value = 0 + 0.1 * (1.0 + 0.95*0 - 0) = 0.1,
	// which is also the state value.
	assert.InDelta(t, 0.1, learner.StateValue(state), 1e-9)

	// Unseen states are worth zero.
	assert.Equal(t, 0.0, learner.StateValue(map[string]float64{"progress": 0.9}))
}

func TestExplorationRateDecays(t *testing.T) {
	cfg := learning.DefaultConfig()
	learner := learning.NewLearnerWithConfig(nil, cfg)

	state := map[string]float64{"progress": 0.0}
	next := map[string]float64{"progress": 0.2}
	for i := 0; i < 1000; i++ {
		learner.Update(experience(state, "ask_question", 0.1, next))
	}

	// After many updates the rate has decayed to its floor.
	perf := learner.Performance()
	assert.InDelta(t, cfg.MinExplorationRate, perf.ExplorationRate, 1e-9)
}

func TestPlanActionsDepth(t *testing.T) {
	learner := learning.NewLearnerWithConfig(nil, greedyConfig())

	plan := learner.PlanActions(map[string]float64{"progress": 0.0}, 3)
	assert.Len(t, plan, 3)
	for _, action := range plan {
		assert.Contains(t, learning.DefaultActions, action)
	}
}

func TestPerformanceSummary(t *testing.T) {
	learner := learning.NewLearnerWithConfig(nil, greedyConfig())

	empty := learner.Performance()
	assert.Equal(t, 0, empty.TotalExperiences)

	state := map[string]float64{"progress": 0.0}
	next := map[string]float64{"progress": 0.2}
	learner.Update(experience(state, "ask_question", 1.0, next))
	learner.Update(experience(state, "ask_question", -0.5, next))
	learner.Update(experience(state, "ask_question", 0.5, next))

	perf := learner.Performance()
	assert.Equal(t, 3, perf.TotalExperiences)
	assert.InDelta(t, 1.0/3.0, perf.AverageReward, 1e-9)
	assert.Equal(t, 1.0, perf.MaxReward)
	assert.Equal(t, -0.5, perf.MinReward)
}

func TestSaveAndLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	learner := learning.NewLearnerWithConfig(nil, greedyConfig())
	state := map[string]float64{"progress": 0.2}
	next := map[string]float64{"progress": 0.4}
	learner.Update(experience(state, "delegate_task", 2.0, next))
	require.NoError(t, learner.SaveModel(path))

	restored := learning.NewLearnerWithConfig(nil, greedyConfig())
	require.NoError(t, restored.LoadModel(path))

	assert.Equal(t, "delegate_task", restored.ChooseAction(state))
	assert.InDelta(t, learner.StateValue(state), restored.StateValue(state), 1e-9)
	assert.Equal(t, 1, restored.Performance().TotalExperiences)
}

func TestLoadModelMissingFile(t *testing.T) {
	learner := learning.NewLearner(nil)
	assert.NoError(t, learner.LoadModel(filepath.Join(t.TempDir(), "absent.json")))
}
