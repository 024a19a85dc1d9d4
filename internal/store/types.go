package store

import (
	"time"

	"github.com/google/uuid"
)

// Document is a stored document row. The retrieval core treats the id as
// opaque and uses FileName only for the ticket naming convention.
type Document struct {
	ID        uuid.UUID
	FileName  string
	FileType  string
	FileSize  int64
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Document status values.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
)

// EmbeddedChunk pairs a chunk's text with its embedding, ready for insertion.
type EmbeddedChunk struct {
	Content   string
	Embedding []float32
}

// StoredChunk is a persisted chunk row without its embedding.
type StoredChunk struct {
	ID       uuid.UUID
	Position int
	Content  string
}

// RetrievalResult is one similarity-search hit. Results are ordered by
// descending similarity and every result strictly exceeds the query threshold.
type RetrievalResult struct {
	Content      string
	Similarity   float64
	DocumentID   uuid.UUID
	DocumentName string
}

// TicketCandidate is one hit of a per-vector ticket sub-query: a candidate
// document together with the similarity of the matching chunk.
type TicketCandidate struct {
	Document   Document
	Similarity float64
}

// SearchFilter restricts a chunk similarity search.
type SearchFilter struct {
	// DocumentID, when non-nil, limits results to that document's chunks.
	DocumentID *uuid.UUID

	// Threshold excludes results with similarity <= Threshold.
	Threshold float64

	// Limit caps the number of results.
	Limit int
}
