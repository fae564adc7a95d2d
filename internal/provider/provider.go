// Package provider constructs language model handles from configuration.
// A handle is built per run so that a key supplied through the UI never
// leaks into shared process state.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smehra/bookwise/pkg/config"
)

// ErrMissingKey is the configuration error for an absent API key. Callers
// surface it as an informational prompt; no run is attempted.
var ErrMissingKey = errors.New("no API key configured for provider")

// ErrUnsupported is returned for provider names the factory cannot build.
var ErrUnsupported = errors.New("unsupported provider")

// InitError wraps a failed model handle construction. It is caught at the
// gateway boundary and shown to the user instead of crashing the process.
type InitError struct {
	Provider string
	Err      error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("could not initialize %s model: %v", e.Provider, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Factory builds llms.Model handles for one configured provider.
type Factory struct {
	Name string
	cfg  config.ProviderConfig
}

func NewFactory(name string, cfg config.ProviderConfig) *Factory {
	return &Factory{Name: name, cfg: cfg}
}

// New constructs a fresh model handle. A non-empty apiKey overrides the
// configured one, which is how UI-entered keys reach the model call.
func (f *Factory) New(ctx context.Context, apiKey string) (llms.Model, error) {
	if apiKey == "" {
		apiKey = f.cfg.APIKey
	}
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	switch f.Name {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(apiKey),
			openai.WithModel(f.cfg.Model),
		}
		if f.cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(f.cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, &InitError{Provider: f.Name, Err: err}
		}
		return model, nil
	case "googleai", "gemini":
		model, err := googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(f.cfg.Model),
		)
		if err != nil {
			return nil, &InitError{Provider: f.Name, Err: err}
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f.Name)
	}
}
