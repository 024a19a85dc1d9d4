// Package retrieval turns a natural-language question into ranked chunk
// matches and shapes those matches into prompt-ready context.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ragdesk/ragdesk/internal/store"
)

// ErrEmptyQuery is returned when the query is empty after trimming.
var ErrEmptyQuery = errors.New("empty query")

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher runs nearest-neighbor queries over stored chunk embeddings.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, queryVector []float32, filter store.SearchFilter) ([]store.RetrievalResult, error)
}

// Config holds the default search parameters. Callers can override both
// per request through options.
type Config struct {
	// Threshold is the minimum similarity; matches must strictly exceed it.
	Threshold float64
	// Limit caps the number of returned chunks.
	Limit int
}

// DefaultConfig returns the retrieval defaults.
func DefaultConfig() Config {
	return Config{Threshold: 0.3, Limit: 5}
}

// Option adjusts a single Retrieve call.
type Option func(*store.SearchFilter)

// WithDocument restricts retrieval to a single document's chunks.
func WithDocument(id uuid.UUID) Option {
	return func(f *store.SearchFilter) {
		f.DocumentID = &id
	}
}

// WithThreshold overrides the default similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(f *store.SearchFilter) {
		f.Threshold = threshold
	}
}

// WithLimit overrides the default result cap.
func WithLimit(limit int) Option {
	return func(f *store.SearchFilter) {
		f.Limit = limit
	}
}

// Retriever embeds queries and searches the chunk index.
type Retriever struct {
	embedder QueryEmbedder
	searcher ChunkSearcher
	defaults Config
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. A zero defaults falls back to
// DefaultConfig; a nil logger falls back to slog.Default().
func NewRetriever(embedder QueryEmbedder, searcher ChunkSearcher, defaults Config, logger *slog.Logger) *Retriever {
	if defaults == (Config{}) {
		defaults = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		defaults: defaults,
		logger:   logger,
	}
}

// Retrieve embeds query and returns matching chunks ordered by descending
// similarity. An empty result is a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...Option) ([]store.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	filter := store.SearchFilter{
		Threshold: r.defaults.Threshold,
		Limit:     r.defaults.Limit,
	}
	for _, opt := range opts {
		opt(&filter)
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.searcher.SearchChunks(ctx, vector, filter)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	r.logger.Debug("retrieved chunks",
		"matches", len(results),
		"threshold", filter.Threshold,
		"limit", filter.Limit,
		"document_scoped", filter.DocumentID != nil)
	return results, nil
}
