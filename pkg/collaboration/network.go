// Package collaboration models a weighted network of agents, their
// skills, and the strength of their working relationships, and uses it
// to pick collaborators and assemble teams.
package collaboration

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// Skill is one agent capability with a proficiency level in [0, 1].
type Skill struct {
	Name        string   `json:"name"`
	Level       float64  `json:"level"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Link is a directed collaboration relationship between two agents.
type Link struct {
	From            string    `json:"agent_from"`
	To              string    `json:"agent_to"`
	Strength        float64   `json:"strength"`
	LastInteraction time.Time `json:"last_interaction"`
	Successes       int       `json:"successful_collaborations"`
	Failures        int       `json:"failed_collaborations"`
}

// Stats summarizes the shape of the network.
type Stats struct {
	// Density is the ratio of existing directed links to possible ones.
	Density float64 `json:"density"`

	// Centrality maps each agent to its degree centrality: the fraction
	// of other agents it is directly linked with, in either direction.
	Centrality map[string]float64 `json:"centrality"`
}

// Network tracks agents, skills, and collaboration links.
//
// A Network is safe for concurrent use.
//
// Example:
//
//	network := collaboration.NewNetwork()
//	network.AddAgent("researcher", map[string]collaboration.Skill{
//	    "analysis": {Name: "analysis", Level: 0.9},
//	})
//	network.AddAgent("writer", map[string]collaboration.Skill{
//	    "writing": {Name: "writing", Level: 0.8},
//	})
//	network.AddLink("researcher", "writer", 0.6)
//
//	best, ok := network.FindBestCollaborator("researcher", []string{"writing"})
type Network struct {
	mu     sync.RWMutex
	agents map[string]map[string]Skill
	links  []*Link
	teams  map[string][]string
}

// NewNetwork creates an empty collaboration network.
func NewNetwork() *Network {
	return &Network{
		agents: make(map[string]map[string]Skill),
		teams:  make(map[string][]string),
	}
}

// AddAgent registers an agent and its skills, replacing any existing
// entry with the same id.
func (n *Network) AddAgent(agentID string, skills map[string]Skill) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if skills == nil {
		skills = make(map[string]Skill)
	}
	n.agents[agentID] = skills
}

// Agents returns all agent ids in sorted order.
func (n *Network) Agents() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	ids := make([]string, 0, len(n.agents))
	for id := range n.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddLink records a directed collaboration link with the given initial
// strength, clamped to [0, 1].
func (n *Network) AddLink(from, to string, strength float64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.links = append(n.links, &Link{
		From:            from,
		To:              to,
		Strength:        clamp01(strength),
		LastInteraction: time.Now().UTC(),
	})
}

// RecordOutcome updates the first link from one agent to another after
// a collaboration: success raises strength by 0.1, failure lowers it by
// 0.1, both clamped to [0, 1]. Unknown links are ignored.
func (n *Network) RecordOutcome(from, to string, success bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, link := range n.links {
		if link.From != from || link.To != to {
			continue
		}
		if success {
			link.Successes++
			link.Strength = clamp01(link.Strength + 0.1)
		} else {
			link.Failures++
			link.Strength = clamp01(link.Strength - 0.1)
		}
		link.LastInteraction = time.Now().UTC()
		return
	}
}

// FindBestCollaborator picks the best partner for an agent given the
// skills the task requires.
//
// Each candidate scores skill coverage (mean level over the required
// skills) at weight 0.7 and link strength from the asking agent at
// weight 0.3; an absent link counts as 0.5. The second return value is
// false when the asking agent is unknown or no candidate scores above
// zero.
func (n *Network) FindBestCollaborator(agentID string, requiredSkills []string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if _, ok := n.agents[agentID]; !ok || len(requiredSkills) == 0 {
		return "", false
	}

	bestScore := 0.0
	best := ""

	for _, candidate := range n.sortedAgentsLocked() {
		if candidate == agentID {
			continue
		}
		skills := n.agents[candidate]

		skillScore := 0.0
		for _, name := range requiredSkills {
			skillScore += skills[name].Level
		}
		skillScore /= float64(len(requiredSkills))

		strength := 0.5
		for _, link := range n.links {
			if link.From == agentID && link.To == candidate {
				strength = link.Strength
				break
			}
		}

		score := skillScore*0.7 + strength*0.3
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	return best, best != ""
}

// OptimalTeam greedily assembles a team for a task.
//
// Requirements map skill names to required levels. Each round the agent
// contributing the most remaining skill coverage joins, with a bonus
// for strong links to members already picked. Selection stops at
// teamSize or when no remaining requirement can be advanced.
func (n *Network) OptimalTeam(requirements map[string]float64, teamSize int) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	remaining := make(map[string]float64, len(requirements))
	for name, level := range requirements {
		remaining[name] = level
	}

	team := make([]string, 0, teamSize)
	inTeam := make(map[string]bool)

	for len(team) < teamSize && len(remaining) > 0 {
		best := ""
		bestScore := 0.0

		for _, candidate := range n.sortedAgentsLocked() {
			if inTeam[candidate] {
				continue
			}
			skills := n.agents[candidate]

			score := 0.0
			for name, required := range remaining {
				if skill, ok := skills[name]; ok {
					if skill.Level < required {
						score += skill.Level
					} else {
						score += required
					}
				}
			}

			if len(team) > 0 {
				linkScore := 0.0
				for _, member := range team {
					for _, link := range n.links {
						if (link.From == candidate && link.To == member) ||
							(link.From == member && link.To == candidate) {
							linkScore += link.Strength
						}
					}
				}
				score += linkScore / float64(len(team)) * 0.3
			}

			if score > bestScore {
				bestScore = score
				best = candidate
			}
		}

		if best == "" {
			break
		}

		team = append(team, best)
		inTeam[best] = true

		for name := range remaining {
			if skill, ok := n.agents[best][name]; ok {
				remaining[name] -= skill.Level
				if remaining[name] <= 0 {
					delete(remaining, name)
				}
			}
		}
	}

	return team
}

// SaveTeam records a named team composition.
func (n *Network) SaveTeam(name string, members []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.teams[name] = append([]string(nil), members...)
}

// Team returns a named team composition. The second return value
// reports whether the team exists.
func (n *Network) Team(name string) ([]string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	members, ok := n.teams[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), members...), true
}

// Analyze computes density and per-agent degree centrality.
func (n *Network) Analyze() Stats {
	n.mu.RLock()
	defer n.mu.RUnlock()

	stats := Stats{Centrality: make(map[string]float64, len(n.agents))}

	count := len(n.agents)
	if count > 1 {
		stats.Density = float64(len(n.links)) / float64(count*(count-1))
	}

	neighbors := make(map[string]map[string]bool, count)
	for id := range n.agents {
		neighbors[id] = make(map[string]bool)
	}
	for _, link := range n.links {
		if _, ok := neighbors[link.From]; ok {
			neighbors[link.From][link.To] = true
		}
		if _, ok := neighbors[link.To]; ok {
			neighbors[link.To][link.From] = true
		}
	}

	for id, adjacent := range neighbors {
		if count > 1 {
			stats.Centrality[id] = float64(len(adjacent)) / float64(count-1)
		} else {
			stats.Centrality[id] = 0
		}
	}

	return stats
}

// persistedNetwork is the on-disk representation.
type persistedNetwork struct {
	Agents map[string]map[string]Skill `json:"agents"`
	Links  []*Link                     `json:"links"`
	Teams  map[string][]string         `json:"teams"`
}

// SaveNetwork writes the network to a JSON file.
func (n *Network) SaveNetwork(path string) error {
	n.mu.RLock()
	state := persistedNetwork{
		Agents: n.agents,
		Links:  n.links,
		Teams:  n.teams,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	n.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("collaboration: encode network: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("collaboration: save network: %w", err)
	}
	return nil
}

// LoadNetwork restores a network saved by SaveNetwork.
func (n *Network) LoadNetwork(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("collaboration: load network: %w", err)
	}

	var state persistedNetwork
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("collaboration: parse network: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.agents = state.Agents
	if n.agents == nil {
		n.agents = make(map[string]map[string]Skill)
	}
	n.links = state.Links
	n.teams = state.Teams
	if n.teams == nil {
		n.teams = make(map[string][]string)
	}
	return nil
}

// sortedAgentsLocked returns agent ids in sorted order so selection is
// deterministic. The caller must hold the lock.
func (n *Network) sortedAgentsLocked() []string {
	ids := make([]string, 0, len(n.agents))
	for id := range n.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
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
