package interfaces

import (
	"context"
)

// FAQCache is a semantic cache over frequently asked questions, checked in
// live mode before the orchestration graph runs. Shared across concurrent
// requests; Set is the only writer and must be safe under concurrent Get
// (rebuild-then-swap, never mutate the live similarity index in place).
type FAQCache interface {
	// Get returns the cached answer for the closest matching question when
	// its similarity reaches the configured threshold and the entry is
	// within TTL. Expired entries are evicted on read. The boolean reports
	// whether a usable hit was found.
	Get(ctx context.Context, question string) (string, bool)

	// Set stores or refreshes an entry and rebuilds the similarity index
	Set(ctx context.Context, question, answer string, ttlDays int) error

	// ClearExpired removes all expired entries
	ClearExpired(ctx context.Context) (int, error)

	// Size returns the number of cached entries
	Size() int
}
