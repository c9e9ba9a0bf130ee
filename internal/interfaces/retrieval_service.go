package interfaces

import (
	"context"

	"github.com/ternarybob/consilium/internal/models"
)

// RetrievalService executes one orchestrated retrieval run. The HTTP and
// WebSocket surfaces depend on this rather than the concrete orchestrator.
type RetrievalService interface {
	// Run answers the question in the given mode ("live" or "preparation",
	// blank defaults to live). The emit callback, when non-nil, receives one
	// event per completed orchestration node in execution order. Returns an
	// error only for invalid input; pipeline degradations are absorbed into
	// the output.
	Run(ctx context.Context, question, contextText, mode string, emit func(event models.NodeEvent)) (*models.RetrievalOutput, error)
}
