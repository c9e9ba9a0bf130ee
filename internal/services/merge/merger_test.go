package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/consilium/internal/models"
)

func TestMerge_SortsByScore(t *testing.T) {
	vector := []*models.Chunk{
		{ChunkID: "v-1", Score: 0.4},
		{ChunkID: "v-2", Score: 0.9},
	}
	graph := []*models.Chunk{
		{ChunkID: "g-1", Score: 0.7},
	}

	merged := Merge(vector, graph, 5)

	require.Len(t, merged, 3)
	assert.Equal(t, "v-2", merged[0].ChunkID)
	assert.Equal(t, "g-1", merged[1].ChunkID)
	assert.Equal(t, "v-1", merged[2].ChunkID)
}

func TestMerge_DedupesFirstWins(t *testing.T) {
	vector := []*models.Chunk{
		{ChunkID: "shared", Score: 0.8, Metadata: map[string]string{"retrieval": "vector"}},
	}
	graph := []*models.Chunk{
		{ChunkID: "shared", Score: 0.8, Metadata: map[string]string{"retrieval": "graph"}},
	}

	merged := Merge(vector, graph, 5)

	require.Len(t, merged, 1)
	assert.Equal(t, "vector", merged[0].Metadata["retrieval"])
}

func TestMerge_MissingScoreRanksLast(t *testing.T) {
	vector := []*models.Chunk{
		{ChunkID: "unscored"},
		{ChunkID: "scored", Score: 0.1},
	}

	merged := Merge(vector, nil, 5)

	require.Len(t, merged, 2)
	assert.Equal(t, "scored", merged[0].ChunkID)
}

func TestMerge_Truncates(t *testing.T) {
	var vector []*models.Chunk
	for _, id := range []string{"a", "b", "c", "d"} {
		vector = append(vector, &models.Chunk{ChunkID: id, Score: 1})
	}

	merged := Merge(vector, nil, 2)

	assert.Len(t, merged, 2)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil, 5))
}
