package interfaces

import (
	"context"

	"github.com/ternarybob/consilium/internal/models"
)

// Retriever is the shared capability of the vector and graph retrieval
// backends. Implementations carry two internal paths: a remote index query
// and a local in-memory fallback. Remote failures are never surfaced to the
// caller; they degrade to the fallback path, which only affects ranking
// quality.
//
// Every returned chunk is a fresh copy annotated with a query-scoped score
// and a "retrieval" metadata tag naming the path that produced it. Scores
// are comparable as sort keys within one merge step but not across backends
// in absolute terms.
type Retriever interface {
	// Retrieve returns up to limit chunks ranked by relevance to the query,
	// highest score first. A blank query or non-positive limit yields an
	// empty result. Safe for concurrent use.
	Retrieve(ctx context.Context, query string, limit int) []*models.Chunk

	// Name identifies the backend ("vector" or "graph") for logging and
	// timing ledger entries.
	Name() string
}
