package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/consilium/internal/interfaces"
	"github.com/ternarybob/consilium/internal/models"
)

// FAQStorage implements the FAQStorage interface for Badger
type FAQStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFAQStorage creates a new FAQStorage instance
func NewFAQStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FAQStorage {
	return &FAQStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FAQStorage) Put(ctx context.Context, entry *models.FAQEntry) error {
	if entry.Question == "" {
		return fmt.Errorf("FAQ question is required")
	}
	if err := s.db.Store().Upsert(entry.Question, entry); err != nil {
		return fmt.Errorf("failed to save FAQ entry: %w", err)
	}
	return nil
}

func (s *FAQStorage) Delete(ctx context.Context, question string) error {
	if err := s.db.Store().Delete(question, &models.FAQEntry{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete FAQ entry: %w", err)
	}
	return nil
}

func (s *FAQStorage) List(ctx context.Context) ([]*models.FAQEntry, error) {
	var entries []models.FAQEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list FAQ entries: %w", err)
	}

	result := make([]*models.FAQEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}
