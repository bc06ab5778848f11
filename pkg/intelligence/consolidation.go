package intelligence

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fcrew-ai/smartmem-go/pkg/llm"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
)

// Summarizer merges the contents of a memory cluster into one text.
//
// Summarization quality is an external concern: the consolidation engine only
// defines clustering and the atomic replace. The default implementation joins
// contents deterministically; an LLM-backed one produces real summaries.
type Summarizer interface {
	Summarize(ctx context.Context, contents []string) (string, error)
}

// JoinSummarizer concatenates cluster contents with a separator. It needs no
// external service and is fully deterministic.
type JoinSummarizer struct {
	// Sep separates the joined contents. Defaults to "; " when empty.
	Sep string
}

// Summarize joins the contents in order.
func (s JoinSummarizer) Summarize(ctx context.Context, contents []string) (string, error) {
	sep := s.Sep
	if sep == "" {
		sep = "; "
	}
	return strings.Join(contents, sep), nil
}

// LLMSummarizer produces a condensed summary of a memory cluster via an LLM.
type LLMSummarizer struct {
	provider llm.Provider
}

// NewLLMSummarizer creates a summarizer backed by the given LLM provider.
func NewLLMSummarizer(provider llm.Provider) *LLMSummarizer {
	return &LLMSummarizer{provider: provider}
}

// Summarize asks the LLM to merge the contents into one note. Provider
// failures propagate to the caller; no silent fallback.
func (s *LLMSummarizer) Summarize(ctx context.Context, contents []string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Merge the following related memory notes into a single concise note. ")
	sb.WriteString("Preserve every distinct fact; do not invent new ones.\n\n")
	for i, content := range contents {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, content))
	}

	summary, err := s.provider.Generate(ctx, sb.String(), llm.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("intelligence: summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// ConsolidationManager merges near-duplicate or closely related records into
// one summarized record, preserving informational content while shrinking the
// store's footprint.
type ConsolidationManager struct {
	store      *memstore.Store
	summarizer Summarizer
	newID      func() int64
	threshold  float64
}

// NewConsolidationManager creates a consolidation manager.
//
// Parameters:
//   - store: The memory store to consolidate
//   - summarizer: Merges cluster contents (JoinSummarizer{} works offline)
//   - newID: Generates ids for consolidated records
//   - threshold: Pairwise cosine similarity required to cluster (0.0-1.0)
func NewConsolidationManager(store *memstore.Store, summarizer Summarizer, newID func() int64, threshold float64) *ConsolidationManager {
	return &ConsolidationManager{
		store:      store,
		summarizer: summarizer,
		newID:      newID,
		threshold:  threshold,
	}
}

// Consolidate scans for clusters of records whose pairwise embedding
// similarity exceeds the threshold (single-linkage) and replaces each cluster
// of size >= 2 with one consolidated record.
//
// Only primary records participate: records that are themselves consolidation
// outputs are excluded, so summaries never chain beyond one level. The merged
// record takes the maximum importance of its cluster, the union of contexts
// (first writer wins, members visited oldest first), the normalized mean of
// the member embeddings, and fresh access stats.
//
// Returns the number of clusters merged and the total records removed. A run
// that finds no qualifying cluster returns zero counts, not an error.
func (m *ConsolidationManager) Consolidate(ctx context.Context) (clustersMerged, recordsRemoved int, err error) {
	var primaries []*memstore.Record
	for _, rec := range m.store.All() {
		if rec.IsConsolidated() {
			continue
		}
		primaries = append(primaries, rec)
	}

	sort.Slice(primaries, func(i, j int) bool { return primaries[i].ID < primaries[j].ID })

	clusters := clusterBySimilarity(primaries, m.threshold)

	for _, cluster := range clusters {
		if len(cluster) < 2 {
			continue
		}

		merged, err := m.merge(ctx, cluster)
		if err != nil {
			return clustersMerged, recordsRemoved, err
		}

		oldIDs := make([]int64, len(cluster))
		for i, rec := range cluster {
			oldIDs[i] = rec.ID
		}

		if err := m.store.ReplaceWithConsolidated(ctx, oldIDs, merged); err != nil {
			return clustersMerged, recordsRemoved, fmt.Errorf("intelligence: consolidate: %w", err)
		}

		clustersMerged++
		recordsRemoved += len(cluster)
	}

	return clustersMerged, recordsRemoved, nil
}

// merge builds the consolidated record for one cluster. Members arrive sorted
// oldest first.
func (m *ConsolidationManager) merge(ctx context.Context, cluster []*memstore.Record) (*memstore.Record, error) {
	contents := make([]string, len(cluster))
	ids := make([]int64, len(cluster))
	importance := 0.0
	mergedContext := make(map[string]string)

	for i, rec := range cluster {
		contents[i] = rec.Content
		ids[i] = rec.ID
		if rec.Importance > importance {
			importance = rec.Importance
		}
		for k, v := range rec.Context {
			if _, ok := mergedContext[k]; !ok {
				mergedContext[k] = v
			}
		}
	}

	summary, err := m.summarizer.Summarize(ctx, contents)
	if err != nil {
		return nil, fmt.Errorf("intelligence: consolidate: %w", err)
	}

	now := time.Now()
	return &memstore.Record{
		ID:               m.newID(),
		Content:          summary,
		Embedding:        meanEmbedding(cluster),
		Importance:       importance,
		Context:          mergedContext,
		CreatedAt:        now,
		LastAccessedAt:   now,
		ConsolidatedFrom: ids,
	}, nil
}

// clusterBySimilarity groups records by single-linkage clustering: any pair
// with cosine similarity >= threshold joins the same cluster. Input order is
// preserved inside each cluster; clusters are ordered by their first member.
func clusterBySimilarity(records []*memstore.Record, threshold float64) [][]*memstore.Record {
	n := len(records)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if CosineSimilarity(records[i].Embedding, records[j].Embedding) >= threshold {
				union(i, j)
			}
		}
	}

	byRoot := make(map[int][]*memstore.Record)
	var order []int
	for i, rec := range records {
		root := find(i)
		if _, seen := byRoot[root]; !seen {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], rec)
	}

	clusters := make([][]*memstore.Record, 0, len(order))
	for _, root := range order {
		cluster := byRoot[root]
		sort.Slice(cluster, func(i, j int) bool {
			if !cluster[i].CreatedAt.Equal(cluster[j].CreatedAt) {
				return cluster[i].CreatedAt.Before(cluster[j].CreatedAt)
			}
			return cluster[i].ID < cluster[j].ID
		})
		clusters = append(clusters, cluster)
	}

	return clusters
}

// meanEmbedding returns the normalized mean of the cluster's embeddings.
func meanEmbedding(cluster []*memstore.Record) []float64 {
	if len(cluster) == 0 {
		return nil
	}

	mean := make([]float64, len(cluster[0].Embedding))
	for _, rec := range cluster {
		if len(rec.Embedding) != len(mean) {
			continue
		}
		for i, v := range rec.Embedding {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(cluster))
	}

	return normalizeVector(mean)
}

// normalizeVector normalizes a vector to unit length (L2 norm).
// A zero-norm vector is returned unchanged.
func normalizeVector(v []float64) []float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	result := make([]float64, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}

// CosineSimilarity calculates the cosine similarity between two vectors.
//
// The result ranges from -1 (opposite) to 1 (identical); 0 is returned for
// mismatched dimensions or zero-norm inputs.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
