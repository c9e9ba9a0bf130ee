package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/common"
	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	config := &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "consilium-test"),
	}
	manager, err := NewManager(arbor.NewLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = manager.Close()
	})
	return manager
}

func TestChunkStorage_PutAndGet(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	chunk := &models.Chunk{
		ChunkID:     "guide-001",
		DocumentID:  "exercise-guide",
		SectionPath: []string{"운동", "빈도"},
		Text:        "주 5회 30분 유산소 운동을 권장합니다",
		TokenCount:  12,
		Metadata:    map[string]string{"source": "manual"},
	}
	require.NoError(t, manager.ChunkStorage().Put(ctx, chunk))

	loaded, err := manager.ChunkStorage().Get(ctx, "guide-001")
	require.NoError(t, err)
	assert.Equal(t, chunk.Text, loaded.Text)
	assert.Equal(t, chunk.SectionPath, loaded.SectionPath)
	assert.Equal(t, "manual", loaded.Metadata["source"])
}

func TestChunkStorage_PutRequiresID(t *testing.T) {
	manager := newTestManager(t)

	err := manager.ChunkStorage().Put(context.Background(), &models.Chunk{Text: "no id"})
	assert.Error(t, err)
}

func TestChunkStorage_GetMissing(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.ChunkStorage().Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestChunkStorage_BatchAndCount(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	chunks := []*models.Chunk{
		{ChunkID: "a", Text: "운동"},
		{ChunkID: "b", Text: "식단"},
		{ChunkID: "c", Text: "수면"},
	}
	require.NoError(t, manager.ChunkStorage().PutBatch(ctx, chunks))

	count, err := manager.ChunkStorage().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	listed, err := manager.ChunkStorage().List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestFAQStorage_RoundTrip(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	entry := &models.FAQEntry{
		Question: "운동은 얼마나 해야 하나요?",
		Answer:   "주 5회, 30분 이상의 유산소 운동을 권장합니다.",
		CachedAt: time.Now(),
		TTLDays:  90,
	}
	require.NoError(t, manager.FAQStorage().Put(ctx, entry))

	entries, err := manager.FAQStorage().List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.Answer, entries[0].Answer)

	require.NoError(t, manager.FAQStorage().Delete(ctx, entry.Question))
	entries, err = manager.FAQStorage().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Deleting a missing entry is not an error
	assert.NoError(t, manager.FAQStorage().Delete(ctx, "없는 질문"))
}
