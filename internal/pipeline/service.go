package pipeline

import (
	"context"
	"log"

	"github.com/tmc/langchaingo/llms"

	"github.com/smehra/bookwise/internal/catalog"
	"github.com/smehra/bookwise/internal/governance"
	"github.com/smehra/bookwise/internal/observability"
)

// ModelFactory builds a fresh model handle for one run. An apiKey entered
// through a gateway overrides any configured key.
type ModelFactory interface {
	New(ctx context.Context, apiKey string) (llms.Model, error)
}

// RunRecorder persists completed runs.
type RunRecorder interface {
	RecordRun(query, genre string, steps int, topTitle string, titles []string) error
}

// Service is the gateway-facing entry point: one call plans and executes a
// full recommendation run.
type Service struct {
	Factory    ModelFactory
	Catalog    *catalog.Client
	Policy     governance.PolicyEngine
	Logger     *observability.Logger
	Store      RunRecorder
	MaxResults int
}

// Recommend builds a model handle for the supplied key, runs the pipeline
// and records the outcome. Model initialization failures and run failures
// both propagate; the caller decides how to surface them.
func (s *Service) Recommend(ctx context.Context, apiKey, query string) (*RunState, error) {
	model, err := s.Factory.New(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		Model:      model,
		Catalog:    s.Catalog,
		Policy:     s.Policy,
		Logger:     s.Logger,
		MaxResults: s.MaxResults,
	}

	state, err := p.Run(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.Store != nil {
		if err := s.Store.RecordRun(query, state.Genre, len(state.Plan), state.TopBook.Title, state.Presentation); err != nil {
			// History is best effort; a failed insert must not fail the run.
			log.Printf("failed to record run: %v", err)
		}
	}

	return state, nil
}
