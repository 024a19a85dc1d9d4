// Package ingest runs the document upload pipeline: split the text into
// chunks, embed every chunk, and persist the document with its embeddings.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ragdesk/ragdesk/internal/store"
)

// ErrEmptyDocument is returned when a document has no indexable content.
var ErrEmptyDocument = errors.New("document has no indexable content")

// Splitter cuts document text into chunks.
type Splitter interface {
	Split(text string) []string
}

// Embedder embeds a batch of chunk texts, one vector per input.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentStore persists documents and their embedded chunks.
type DocumentStore interface {
	CreateDocument(ctx context.Context, fileName, fileType string, fileSize int64, content string) (store.Document, error)
	InsertChunks(ctx context.Context, documentID uuid.UUID, chunks []store.EmbeddedChunk) error
	MarkDocumentReady(ctx context.Context, id uuid.UUID) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

// Service ingests and removes documents.
type Service struct {
	splitter Splitter
	embedder Embedder
	store    DocumentStore
	logger   *slog.Logger
}

// NewService creates an ingestion Service. A nil logger falls back to
// slog.Default().
func NewService(splitter Splitter, embedder Embedder, docs DocumentStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		splitter: splitter,
		embedder: embedder,
		store:    docs,
		logger:   logger,
	}
}

// Ingest stores a document and its chunk embeddings. The document row is
// created first in processing state and only marked ready once every chunk
// is embedded and stored; any failure after creation removes the row again
// so a half-ingested document never serves retrieval.
func (s *Service) Ingest(ctx context.Context, fileName, fileType, content string) (store.Document, error) {
	if strings.TrimSpace(content) == "" {
		return store.Document{}, fmt.Errorf("%q: %w", fileName, ErrEmptyDocument)
	}

	chunks := s.splitter.Split(content)
	if len(chunks) == 0 {
		return store.Document{}, fmt.Errorf("%q: %w", fileName, ErrEmptyDocument)
	}

	doc, err := s.store.CreateDocument(ctx, fileName, fileType, int64(len(content)), content)
	if err != nil {
		return store.Document{}, fmt.Errorf("creating document: %w", err)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		s.rollback(ctx, doc.ID)
		return store.Document{}, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	embedded := make([]store.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = store.EmbeddedChunk{Content: c, Embedding: vectors[i]}
	}
	if err := s.store.InsertChunks(ctx, doc.ID, embedded); err != nil {
		s.rollback(ctx, doc.ID)
		return store.Document{}, fmt.Errorf("storing chunks: %w", err)
	}

	if err := s.store.MarkDocumentReady(ctx, doc.ID); err != nil {
		s.rollback(ctx, doc.ID)
		return store.Document{}, fmt.Errorf("finishing ingestion: %w", err)
	}
	doc.Status = store.StatusReady

	s.logger.Info("ingested document",
		"id", doc.ID, "file_name", fileName, "chunks", len(chunks))
	return doc, nil
}

// Delete removes a document and, through the schema's cascade, its chunks.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteDocument(ctx, id)
}

func (s *Service) rollback(ctx context.Context, id uuid.UUID) {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		s.logger.Error("rolling back partial ingestion", "id", id, "error", err)
	}
}
