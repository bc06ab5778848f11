package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fcrew-ai/smartmem-go/pkg/llm"
)

// ImportanceEvaluator scores how much a piece of content is worth retaining.
//
// It supports two evaluation modes:
//   - LLM-based: asks the configured LLM for a score (more accurate)
//   - Rule-based: keyword matching and heuristics (fast, no LLM required)
//
// Agents that call remember without an explicit importance get the
// evaluator's score as the default.
type ImportanceEvaluator struct {
	llm    llm.Provider
	useLLM bool
}

// NewImportanceEvaluator creates a new importance evaluator.
//
// A nil provider yields a purely rule-based evaluator.
func NewImportanceEvaluator(provider llm.Provider) *ImportanceEvaluator {
	return &ImportanceEvaluator{
		llm:    provider,
		useLLM: provider != nil,
	}
}

// EvaluateImportance scores content between 0.0 (not worth keeping) and 1.0
// (extremely important). Falls back to rule-based scoring when the LLM is
// unavailable or fails.
func (e *ImportanceEvaluator) EvaluateImportance(ctx context.Context, content string, tags map[string]string) float64 {
	if e.useLLM && e.llm != nil {
		if score, err := e.evaluateWithLLM(ctx, content); err == nil {
			return score
		}
	}
	return e.evaluateWithRules(content, tags)
}

// evaluateWithLLM asks the LLM for an importance score.
func (e *ImportanceEvaluator) evaluateWithLLM(ctx context.Context, content string) (float64, error) {
	systemPrompt := `You are an importance evaluator for memory content.
Evaluate the importance of the given content on a scale from 0.0 to 1.0.
Consider relevance, novelty, emotional impact, actionability, and personal significance.
Return a JSON object with an "importance_score" field.`

	userPrompt := fmt.Sprintf("Content: %s\n\nEvaluate the importance and return JSON: {\"importance_score\": 0.0-1.0}", content)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	response, err := e.llm.GenerateWithMessages(ctx, messages)
	if err != nil {
		return 0.5, err
	}

	return parseImportanceResponse(response), nil
}

// evaluateWithRules scores content with keyword and shape heuristics.
func (e *ImportanceEvaluator) evaluateWithRules(content string, tags map[string]string) float64 {
	score := 0.3
	contentLower := strings.ToLower(content)

	// Length factor
	if len(content) > 100 {
		score += 0.1
	} else if len(content) > 50 {
		score += 0.05
	}

	// Keyword importance
	importantKeywords := []string{
		"important", "critical", "urgent", "remember", "note",
		"preference", "like", "dislike", "hate", "love",
		"deadline", "decision", "always", "never",
	}
	for _, keyword := range importantKeywords {
		if strings.Contains(contentLower, keyword) {
			score += 0.1
		}
	}

	// Emphasis factor
	if strings.Contains(content, "!") {
		score += 0.05
	}

	// Tag factors
	if priority, ok := tags["priority"]; ok {
		switch priority {
		case "high":
			score += 0.2
		case "medium":
			score += 0.1
		}
	}

	return math.Min(score, 1.0)
}

// parseImportanceResponse extracts the score from an LLM response.
func parseImportanceResponse(response string) float64 {
	// Try to extract JSON
	if start := strings.Index(response, "{"); start >= 0 {
		if end := strings.LastIndex(response, "}") + 1; end > start {
			var result map[string]interface{}
			if err := json.Unmarshal([]byte(response[start:end]), &result); err == nil {
				if score, ok := result["importance_score"].(float64); ok {
					return math.Max(0.0, math.Min(1.0, score))
				}
			}
		}
	}

	// Fallback: first number in the response
	re := regexp.MustCompile(`\d+\.?\d*`)
	if matches := re.FindAllString(response, -1); len(matches) > 0 {
		var score float64
		if _, err := fmt.Sscanf(matches[0], "%f", &score); err == nil {
			return math.Max(0.0, math.Min(1.0, score))
		}
	}

	// Default medium importance
	return 0.5
}
