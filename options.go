package hnsearch

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// SessionOption represents a session configuration option.
type SessionOption interface {
	Apply(*SessionConfig)
}

// SessionConfig holds all session configuration parameters.
type SessionConfig struct {
	// BaseURL is the API root query URLs are encoded against.
	BaseURL string

	// Store persists the search term between sessions.
	Store Store

	// Logger receives lifecycle events. Defaults to a discarding logger.
	Logger *slog.Logger

	// Tracer creates spans around fetches and persistence calls.
	Tracer trace.Tracer

	// TitleFilter narrows the displayed items to titles containing the
	// current search term.
	TitleFilter bool
}

// optionFunc is a function that implements SessionOption.
type optionFunc func(*SessionConfig)

// Apply implements the SessionOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SessionConfig) {
	f(cfg)
}

// WithBaseURL sets the API root used when encoding query URLs.
func WithBaseURL(base string) SessionOption {
	return optionFunc(func(cfg *SessionConfig) {
		cfg.BaseURL = base
	})
}

// WithStore sets the persistence collaborator for the search term.
func WithStore(store Store) SessionOption {
	return optionFunc(func(cfg *SessionConfig) {
		cfg.Store = store
	})
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return optionFunc(func(cfg *SessionConfig) {
		cfg.Logger = logger
	})
}

// WithTracer sets the tracer used for session spans.
func WithTracer(tracer trace.Tracer) SessionOption {
	return optionFunc(func(cfg *SessionConfig) {
		cfg.Tracer = tracer
	})
}

// WithTitleFilter enables client-side narrowing of displayed items by title.
func WithTitleFilter(enabled bool) SessionOption {
	return optionFunc(func(cfg *SessionConfig) {
		cfg.TitleFilter = enabled
	})
}
