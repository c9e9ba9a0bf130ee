// Package merge combines the evidence sets returned by the retrieval
// backends into a single ranked, deduplicated list.
package merge

import (
	"sort"

	"github.com/ternarybob/consilium/internal/models"
)

// Merge concatenates the vector and graph result sets, orders by score
// descending (missing scores rank as zero), removes duplicate chunk IDs
// with the first occurrence winning, and truncates to maxEvidence.
func Merge(vectorResults, graphResults []*models.Chunk, maxEvidence int) []*models.Chunk {
	combined := make([]*models.Chunk, 0, len(vectorResults)+len(graphResults))
	combined = append(combined, vectorResults...)
	combined = append(combined, graphResults...)

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Score > combined[j].Score
	})

	merged := make([]*models.Chunk, 0, maxEvidence)
	seen := make(map[string]bool, len(combined))
	for _, chunk := range combined {
		if seen[chunk.ChunkID] {
			continue
		}
		seen[chunk.ChunkID] = true
		merged = append(merged, chunk)
		if len(merged) >= maxEvidence {
			break
		}
	}
	return merged
}
