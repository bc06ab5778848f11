// Package learning implements epsilon-greedy Q-learning so agents can
// improve their action choices from rewarded experience.
package learning

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Experience is one learning sample: the state an action was taken in,
// the reward it earned, and the state that followed.
type Experience struct {
	State     map[string]float64 `json:"state"`
	Action    string             `json:"action"`
	Reward    float64            `json:"reward"`
	NextState map[string]float64 `json:"next_state"`
	Timestamp time.Time          `json:"timestamp"`
}

// Config contains the Q-learning hyperparameters.
type Config struct {
	// LearningRate controls how strongly a new sample moves the Q value.
	LearningRate float64 `json:"learning_rate"`

	// DiscountFactor weights future reward against immediate reward.
	DiscountFactor float64 `json:"discount_factor"`

	// ExplorationRate is the initial probability of choosing a random
	// action instead of the best known one.
	ExplorationRate float64 `json:"exploration_rate"`

	// MinExplorationRate is the floor the exploration rate decays to.
	MinExplorationRate float64 `json:"min_exploration_rate"`

	// ExplorationDecay multiplies the exploration rate after each update.
	ExplorationDecay float64 `json:"exploration_decay"`
}

// DefaultConfig returns the default hyperparameters.
func DefaultConfig() Config {
	return Config{
		LearningRate:       0.1,
		DiscountFactor:     0.95,
		ExplorationRate:    0.2,
		MinExplorationRate: 0.01,
		ExplorationDecay:   0.995,
	}
}

// DefaultActions is the action space used when none is given.
var DefaultActions = []string{
	"ask_question",
	"search_memory",
	"create_summary",
	"delegate_task",
	"request_clarification",
	"propose_solution",
}

// Performance summarizes learning progress so far.
type Performance struct {
	AverageReward    float64 `json:"average_reward"`
	MaxReward        float64 `json:"max_reward"`
	MinReward        float64 `json:"min_reward"`
	TotalExperiences int     `json:"total_experiences"`
	ExplorationRate  float64 `json:"exploration_rate"`
}

// Learner maintains a Q-table over discretized states and selects
// actions with an epsilon-greedy policy.
//
// A Learner is safe for concurrent use.
//
// Example:
//
//	learner := learning.NewLearner(nil)
//	action := learner.ChooseAction(map[string]float64{"progress": 0.2})
//	learner.Update(learning.Experience{
//	    State:     map[string]float64{"progress": 0.2},
//	    Action:    action,
//	    Reward:    1.0,
//	    NextState: map[string]float64{"progress": 0.4},
//	    Timestamp: time.Now(),
//	})
type Learner struct {
	mu          sync.Mutex
	cfg         Config
	exploration float64
	actions     []string
	qtable      map[string]map[string]float64
	experiences []Experience
	rng         *rand.Rand
}

// NewLearner creates a learner with the default hyperparameters.
//
// If actions is nil, DefaultActions is used.
func NewLearner(actions []string) *Learner {
	return NewLearnerWithConfig(actions, DefaultConfig())
}

// NewLearnerWithConfig creates a learner with explicit hyperparameters.
func NewLearnerWithConfig(actions []string, cfg Config) *Learner {
	if len(actions) == 0 {
		actions = DefaultActions
	}
	return &Learner{
		cfg:         cfg,
		exploration: cfg.ExplorationRate,
		actions:     append([]string(nil), actions...),
		qtable:      make(map[string]map[string]float64),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// stateKey converts a state map into a deterministic Q-table key.
func stateKey(state map[string]float64) string {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%s=%.4f", k, state[k])
	}
	return sb.String()
}

// ChooseAction selects an action for the state using the epsilon-greedy
// policy: explore with the current exploration probability, otherwise
// pick the action with the highest Q value. Ties break by action-space
// order, so choices are deterministic when not exploring.
func (l *Learner) ChooseAction(state map[string]float64) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rng.Float64() < l.exploration {
		return l.actions[l.rng.Intn(len(l.actions))]
	}
	return l.bestActionLocked(stateKey(state))
}

// Update applies a Q-learning update for the experience and decays the
// exploration rate toward its floor.
func (l *Learner) Update(exp Experience) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row := l.rowLocked(stateKey(exp.State))
	nextRow := l.rowLocked(stateKey(exp.NextState))

	nextMax := 0.0
	for _, q := range nextRow {
		if q > nextMax {
			nextMax = q
		}
	}

	current := row[exp.Action]
	row[exp.Action] = current + l.cfg.LearningRate*(exp.Reward+l.cfg.DiscountFactor*nextMax-current)

	l.experiences = append(l.experiences, exp)

	l.exploration *= l.cfg.ExplorationDecay
	if l.exploration < l.cfg.MinExplorationRate {
		l.exploration = l.cfg.MinExplorationRate
	}
}

// StateValue returns the value of a state: the highest Q value among
// its actions, or 0 for an unseen state.
func (l *Learner) StateValue(state map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.qtable[stateKey(state)]
	if !ok {
		return 0
	}

	best := 0.0
	for _, q := range row {
		if q > best {
			best = q
		}
	}
	return best
}

// PlanActions returns a greedy action sequence of the given depth
// starting from the initial state. Each step assumes the action moves
// progress forward by 0.2, capped at 1.0.
func (l *Learner) PlanActions(initialState map[string]float64, depth int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := make(map[string]float64, len(initialState))
	for k, v := range initialState {
		state[k] = v
	}

	sequence := make([]string, 0, depth)
	for i := 0; i < depth; i++ {
		sequence = append(sequence, l.bestActionLocked(stateKey(state)))

		progress := state["progress"] + 0.2
		if progress > 1.0 {
			progress = 1.0
		}
		state["progress"] = progress
	}
	return sequence
}

// Performance returns summary statistics over all recorded experiences.
func (l *Learner) Performance() Performance {
	l.mu.Lock()
	defer l.mu.Unlock()

	perf := Performance{
		TotalExperiences: len(l.experiences),
		ExplorationRate:  l.exploration,
	}
	if len(l.experiences) == 0 {
		return perf
	}

	sum := 0.0
	perf.MaxReward = l.experiences[0].Reward
	perf.MinReward = l.experiences[0].Reward
	for _, exp := range l.experiences {
		sum += exp.Reward
		if exp.Reward > perf.MaxReward {
			perf.MaxReward = exp.Reward
		}
		if exp.Reward < perf.MinReward {
			perf.MinReward = exp.Reward
		}
	}
	perf.AverageReward = sum / float64(len(l.experiences))
	return perf
}

// persistedModel is the on-disk representation.
type persistedModel struct {
	QTable          map[string]map[string]float64 `json:"q_table"`
	ExplorationRate float64                       `json:"exploration_rate"`
	Experiences     []Experience                  `json:"experiences"`
}

// SaveModel writes the learned model to a JSON file.
func (l *Learner) SaveModel(path string) error {
	l.mu.Lock()
	model := persistedModel{
		QTable:          l.qtable,
		ExplorationRate: l.exploration,
		Experiences:     l.experiences,
	}
	data, err := json.MarshalIndent(model, "", "  ")
	l.mu.Unlock()

	if err != nil {
		return fmt.Errorf("learning: encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("learning: save model: %w", err)
	}
	return nil
}

// LoadModel restores a model saved by SaveModel. A missing file is not
// an error; the learner simply starts fresh.
func (l *Learner) LoadModel(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("learning: load model: %w", err)
	}

	var model persistedModel
	if err := json.Unmarshal(data, &model); err != nil {
		return fmt.Errorf("learning: parse model: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.qtable = model.QTable
	if l.qtable == nil {
		l.qtable = make(map[string]map[string]float64)
	}
	l.exploration = model.ExplorationRate
	l.experiences = model.Experiences
	return nil
}

// rowLocked returns the Q-table row for the key, creating it with zero
// values if absent. The caller must hold the lock.
func (l *Learner) rowLocked(key string) map[string]float64 {
	row, ok := l.qtable[key]
	if !ok {
		row = make(map[string]float64, len(l.actions))
		for _, action := range l.actions {
			row[action] = 0
		}
		l.qtable[key] = row
	}
	return row
}

// bestActionLocked returns the highest-valued action for the key, with
// ties broken by action-space order. The caller must hold the lock.
func (l *Learner) bestActionLocked(key string) string {
	row := l.rowLocked(key)

	best := l.actions[0]
	bestQ := row[best]
	for _, action := range l.actions[1:] {
		if q := row[action]; q > bestQ {
			best = action
			bestQ = q
		}
	}
	return best
}
