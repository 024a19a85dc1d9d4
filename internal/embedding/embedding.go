// Package embedding wraps a Genkit ai.Embedder behind the small surface the
// retrieval pipeline needs: batch embedding for ingestion and single-value
// embedding for queries.
//
// The client performs no retries; provider failures are wrapped and
// propagated so callers can apply their own backoff policy.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

var (
	// ErrProviderFailure indicates the embedding provider call failed
	// (network, quota, malformed input).
	ErrProviderFailure = errors.New("embedding provider failure")

	// ErrEmptyEmbedding indicates the provider answered without a usable vector.
	ErrEmptyEmbedding = errors.New("provider returned empty embedding")

	// ErrDimensionMismatch indicates a returned vector does not match the
	// configured model dimensionality. This is a configuration fault, not a
	// transient condition.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Client converts text into fixed-width float vectors using a Genkit embedder.
// Client is safe for concurrent use.
type Client struct {
	embedder   ai.Embedder
	dimensions int
	logger     *slog.Logger
}

// NewClient creates a Client for the given embedder. dimensions is the
// vector width the configured model produces; every returned vector is
// checked against it. A nil logger falls back to slog.Default().
func NewClient(embedder ai.Embedder, dimensions int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		embedder:   embedder,
		dimensions: dimensions,
		logger:     logger,
	}
}

// EmbedBatch embeds all texts in a single provider call and returns one
// vector per input, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	docs := make([]*ai.Document, len(texts))
	for i, text := range texts {
		docs[i] = ai.DocumentFromText(normalize(text), nil)
	}

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{Input: docs})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			ErrProviderFailure, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if err := c.checkVector(emb.Embedding); err != nil {
			return nil, fmt.Errorf("embedding input %d: %w", i, err)
		}
		vectors[i] = emb.Embedding
	}

	c.logger.Debug("embedded batch", "inputs", len(texts), "dimensions", c.dimensions)
	return vectors, nil
}

// EmbedQuery embeds a single text, typically a user query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(normalize(text), nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderFailure, err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, ErrEmptyEmbedding
	}
	vector := resp.Embeddings[0].Embedding
	if err := c.checkVector(vector); err != nil {
		return nil, err
	}
	return vector, nil
}

// Dimensions reports the vector width this client was configured for.
func (c *Client) Dimensions() int {
	return c.dimensions
}

func (c *Client) checkVector(v []float32) error {
	if len(v) == 0 {
		return ErrEmptyEmbedding
	}
	if c.dimensions > 0 && len(v) != c.dimensions {
		return fmt.Errorf("%w: got %d, configured %d", ErrDimensionMismatch, len(v), c.dimensions)
	}
	return nil
}

// normalize collapses literal escaped-newline sequences to spaces. Stray
// control sequences in extracted text degrade embedding quality.
func normalize(text string) string {
	return strings.ReplaceAll(text, `\n`, " ")
}
