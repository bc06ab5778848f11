// Package personality models agent temperament: big-five style traits, an
// eight-emotion state driven by interactions, and their influence on
// behavior and response tone.
package personality

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// maxHistory caps the retained interaction history.
const maxHistory = 100

// EmotionalState tracks the agent's current emotions, each in [0, 1].
type EmotionalState struct {
	Joy          float64 `json:"joy"`
	Trust        float64 `json:"trust"`
	Fear         float64 `json:"fear"`
	Surprise     float64 `json:"surprise"`
	Sadness      float64 `json:"sadness"`
	Disgust      float64 `json:"disgust"`
	Anger        float64 `json:"anger"`
	Anticipation float64 `json:"anticipation"`
}

// DefaultEmotionalState returns the neutral starting state.
func DefaultEmotionalState() EmotionalState {
	return EmotionalState{
		Joy:          0.5,
		Trust:        0.5,
		Anticipation: 0.5,
	}
}

// Update applies a stimulus to the state. Each stimulus value is scaled
// by intensity and added to the matching emotion, clamped to [0, 1].
// Unknown emotion names are ignored.
func (s *EmotionalState) Update(stimulus map[string]float64, intensity float64) {
	for emotion, value := range stimulus {
		delta := value * intensity
		switch emotion {
		case "joy":
			s.Joy = clamp01(s.Joy + delta)
		case "trust":
			s.Trust = clamp01(s.Trust + delta)
		case "fear":
			s.Fear = clamp01(s.Fear + delta)
		case "surprise":
			s.Surprise = clamp01(s.Surprise + delta)
		case "sadness":
			s.Sadness = clamp01(s.Sadness + delta)
		case "disgust":
			s.Disgust = clamp01(s.Disgust + delta)
		case "anger":
			s.Anger = clamp01(s.Anger + delta)
		case "anticipation":
			s.Anticipation = clamp01(s.Anticipation + delta)
		}
	}
}

// Trait is a single personality trait with a value in [0, 1].
type Trait struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Interaction is one processed interaction and the emotional state it
// left behind.
type Interaction struct {
	Timestamp time.Time      `json:"timestamp"`
	Text      string         `json:"interaction"`
	State     EmotionalState `json:"emotional_state"`
}

// Personality combines traits and emotional state for one agent.
//
// A Personality is safe for concurrent use.
//
// Example:
//
//	p := personality.New()
//	p.SetTrait("extraversion", 0.9)
//	p.ProcessInteraction("excellent work, thanks!")
//	reply := p.AdjustResponse("The task is complete.")
type Personality struct {
	mu       sync.RWMutex
	traits   map[string]Trait
	emotions EmotionalState
	history  []Interaction
}

// New creates a personality with all five traits at 0.5 and the neutral
// emotional state.
func New() *Personality {
	return &Personality{
		traits: map[string]Trait{
			"openness":          {Name: "openness", Value: 0.5, Description: "Openness to new experiences"},
			"conscientiousness": {Name: "conscientiousness", Value: 0.5, Description: "Conscientiousness and diligence"},
			"extraversion":      {Name: "extraversion", Value: 0.5, Description: "Extraversion"},
			"agreeableness":     {Name: "agreeableness", Value: 0.5, Description: "Agreeableness"},
			"neuroticism":       {Name: "neuroticism", Value: 0.5, Description: "Neuroticism"},
		},
		emotions: DefaultEmotionalState(),
	}
}

// SetTrait sets the value of a trait, clamped to [0, 1]. Setting an
// unknown trait adds it.
func (p *Personality) SetTrait(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	trait, ok := p.traits[name]
	if !ok {
		trait = Trait{Name: name}
	}
	trait.Value = clamp01(value)
	p.traits[name] = trait
}

// Trait returns the named trait. The second return value reports
// whether the trait exists.
func (p *Personality) Trait(name string) (Trait, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	trait, ok := p.traits[name]
	return trait, ok
}

// Emotions returns a copy of the current emotional state.
func (p *Personality) Emotions() EmotionalState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.emotions
}

// ProcessInteraction updates the emotional state from an interaction by
// simple keyword analysis and records it in the history.
func (p *Personality) ProcessInteraction(interaction string) {
	positive := []string{"excellent", "great", "well done", "thanks"}
	negative := []string{"error", "problem", "bad", "failure"}

	lower := strings.ToLower(interaction)
	stimulus := map[string]float64{
		"joy":     float64(countContained(lower, positive)) * 0.2,
		"sadness": float64(countContained(lower, negative)) * 0.2,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.emotions.Update(stimulus, 1.0)
	p.history = append(p.history, Interaction{
		Timestamp: time.Now().UTC(),
		Text:      interaction,
		State:     p.emotions,
	})
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

// AdjustResponse rewrites a response to reflect the current traits and
// emotions: extraverted personalities get enthusiastic punctuation,
// open ones add a digression, strong joy or sadness sets the framing.
func (p *Personality) AdjustResponse(response string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch {
	case p.traits["extraversion"].Value > 0.7:
		response = strings.ReplaceAll(response, ".", "!")
	case p.traits["extraversion"].Value < 0.3:
		response = strings.ReplaceAll(response, "!", ".")
		response = strings.TrimRight(response, "!") + "..."
	}

	if p.traits["openness"].Value > 0.7 {
		response = response + "\n\nIncidentally, this reminds me of a related idea worth exploring."
	}

	if p.emotions.Joy > 0.7 {
		response = "I am delighted to report that " + response
	} else if p.emotions.Sadness > 0.7 {
		response = "Unfortunately, " + response
	}

	return response
}

// Influence derives behavioral tendencies from traits and emotions.
//
// The returned map contains creativity, detail_focus, collaboration,
// and risk_taking, each in [0, 1].
func (p *Personality) Influence() map[string]float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]float64{
		"creativity":    p.traits["openness"].Value*0.7 + p.emotions.Joy*0.3,
		"detail_focus":  p.traits["conscientiousness"].Value*0.8 + p.emotions.Trust*0.2,
		"collaboration": p.traits["agreeableness"].Value*0.6 + p.emotions.Trust*0.4,
		"risk_taking":   p.traits["extraversion"].Value*0.5 + p.emotions.Anticipation*0.5,
	}
}

// History returns a copy of the interaction history, oldest first.
func (p *Personality) History() []Interaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	history := make([]Interaction, len(p.history))
	copy(history, p.history)
	return history
}

// persistedState is the on-disk representation.
type persistedState struct {
	Traits   map[string]Trait `json:"traits"`
	Emotions EmotionalState   `json:"emotional_state"`
	History  []Interaction    `json:"emotional_history"`
}

// SaveState writes the personality to a JSON file.
func (p *Personality) SaveState(path string) error {
	p.mu.RLock()
	state := persistedState{
		Traits:   p.traits,
		Emotions: p.emotions,
		History:  p.history,
	}
	p.mu.RUnlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("personality: encode state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("personality: save state: %w", err)
	}
	return nil
}

// LoadState restores the personality from a JSON file written by
// SaveState.
func (p *Personality) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("personality: load state: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("personality: parse state: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.traits = state.Traits
	p.emotions = state.Emotions
	p.history = state.History
	return nil
}

// countContained counts how many of the words occur in text.
func countContained(text string, words []string) int {
	count := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			count++
		}
	}
	return count
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
