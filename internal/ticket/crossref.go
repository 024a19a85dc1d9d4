package ticket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/ragdesk/ragdesk/internal/store"
)

// Searcher is the store surface the cross-referencer needs.
type Searcher interface {
	// DocumentEmbeddings returns up to limit stored chunk embeddings of a
	// document in storage order, or store.ErrNotFound for an unknown document.
	DocumentEmbeddings(ctx context.Context, documentID uuid.UUID, limit int) ([][]float32, error)

	// SearchTicketCandidates ranks other ticket-named documents' chunks
	// against one source vector, excluding excludeID, strict threshold.
	SearchTicketCandidates(ctx context.Context, sourceVector []float32, excludeID uuid.UUID, threshold float64, limit int) ([]store.TicketCandidate, error)
}

// Config bounds the cross-referencing work per request.
type Config struct {
	// MaxSourceEmbeddings caps how many of the source document's vectors
	// are compared, taken in storage order. Keeps very large documents
	// from issuing an unbounded number of sub-queries.
	MaxSourceEmbeddings int

	// PerQueryLimit caps each per-vector sub-query's result count.
	PerQueryLimit int
}

// DefaultConfig returns the production cross-referencing bounds.
func DefaultConfig() Config {
	return Config{MaxSourceEmbeddings: 5, PerQueryLimit: 10}
}

// Similar is one related ticket with the maximum chunk similarity observed
// across all source-vector comparisons.
type Similar struct {
	Document   store.Document
	Similarity float64
}

// CrossReferencer finds tickets related to a source document by comparing
// every stored source vector against other tickets' chunks and keeping,
// per candidate, the maximum similarity seen. Max rather than average: a
// ticket matching strongly on a single chunk (often the resolution
// paragraph) should surface even when its remaining chunks are dissimilar.
type CrossReferencer struct {
	searcher Searcher
	cfg      Config
	logger   *slog.Logger
}

// NewCrossReferencer creates a CrossReferencer. Zero cfg fields fall back
// to DefaultConfig values; a nil logger falls back to slog.Default().
func NewCrossReferencer(searcher Searcher, cfg Config, logger *slog.Logger) *CrossReferencer {
	def := DefaultConfig()
	if cfg.MaxSourceEmbeddings <= 0 {
		cfg.MaxSourceEmbeddings = def.MaxSourceEmbeddings
	}
	if cfg.PerQueryLimit <= 0 {
		cfg.PerQueryLimit = def.PerQueryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossReferencer{searcher: searcher, cfg: cfg, logger: logger}
}

// FindSimilar returns up to limit tickets whose maximum chunk similarity
// against the source document strictly exceeds minSimilarity, ordered by
// descending similarity. A document with no stored embeddings, or an
// unknown document id, yields an empty result rather than an error.
func (c *CrossReferencer) FindSimilar(ctx context.Context, documentID uuid.UUID, limit int, minSimilarity float64) ([]Similar, error) {
	vectors, err := c.searcher.DocumentEmbeddings(ctx, documentID, c.cfg.MaxSourceEmbeddings)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Debug("cross-reference source has no stored chunks", "document_id", documentID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading source embeddings: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	// Per candidate document, keep the maximum similarity across all
	// source vectors. A candidate whose first compared vector scores low
	// must still win if a later vector scores high.
	best := make(map[uuid.UUID]Similar)
	for _, vector := range vectors {
		candidates, err := c.searcher.SearchTicketCandidates(ctx, vector, documentID, minSimilarity, c.cfg.PerQueryLimit)
		if err != nil {
			return nil, fmt.Errorf("querying ticket candidates: %w", err)
		}
		for _, cand := range candidates {
			existing, ok := best[cand.Document.ID]
			if !ok || cand.Similarity > existing.Similarity {
				best[cand.Document.ID] = Similar{Document: cand.Document, Similarity: cand.Similarity}
			}
		}
	}

	// Re-apply the threshold after aggregation; the per-query filter has
	// already enforced it, but the aggregate must not admit sub-threshold
	// values regardless of how the map was populated.
	similar := make([]Similar, 0, len(best))
	for _, s := range best {
		if s.Similarity > minSimilarity {
			similar = append(similar, s)
		}
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Similarity != similar[j].Similarity {
			return similar[i].Similarity > similar[j].Similarity
		}
		return similar[i].Document.FileName < similar[j].Document.FileName
	})

	if limit > 0 && len(similar) > limit {
		similar = similar[:limit]
	}

	c.logger.Debug("cross-referenced tickets",
		"document_id", documentID,
		"source_vectors", len(vectors),
		"related", len(similar))
	return similar, nil
}
