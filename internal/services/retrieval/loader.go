package retrieval

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// LoadChunkFile reads the ingestion collaborator's NDJSON chunk stream.
// Blank lines are skipped; a malformed line aborts the load with its line
// number so corrupt exports are caught at startup rather than at query time.
func LoadChunkFile(path string) ([]*models.Chunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk file: %w", err)
	}
	defer file.Close()

	var chunks []*models.Chunk
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk models.Chunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("invalid chunk at line %d: %w", lineNo, err)
		}
		if chunk.ChunkID == "" {
			return nil, fmt.Errorf("chunk at line %d has no chunk_id", lineNo)
		}
		chunks = append(chunks, &chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunk file: %w", err)
	}

	return chunks, nil
}

// LoadCorpus hydrates chunk storage from the NDJSON file when it exists,
// then returns everything persisted. A missing file is not an error: the
// service runs with whatever the database already holds.
func LoadCorpus(ctx context.Context, path string, storage interfaces.ChunkStorage, logger arbor.ILogger) ([]*models.Chunk, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			chunks, err := LoadChunkFile(path)
			if err != nil {
				return nil, err
			}
			if err := storage.PutBatch(ctx, chunks); err != nil {
				return nil, fmt.Errorf("failed to persist chunks: %w", err)
			}
			logger.Info().
				Str("path", path).
				Int("count", len(chunks)).
				Msg("Chunk corpus loaded from ingestion file")
		} else {
			logger.Warn().Str("path", path).Msg("Chunk file not found, using stored corpus")
		}
	}

	stored, err := storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored chunks: %w", err)
	}
	return stored, nil
}
