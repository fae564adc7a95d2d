package gateway

import (
	"context"

	"github.com/smehra/bookwise/internal/pipeline"
)

// Recommender runs one full recommendation for a request. The apiKey is
// optional; gateways that collect a key per request pass it through,
// others leave it empty and the configured key is used.
type Recommender interface {
	Recommend(ctx context.Context, apiKey, query string) (*pipeline.RunState, error)
}

// Gateway defines the interface for user-facing surfaces (web, Telegram).
type Gateway interface {
	// Start begins serving and blocks until the gateway stops.
	Start() error
	// Stop gracefully shuts the gateway down.
	Stop() error
}
