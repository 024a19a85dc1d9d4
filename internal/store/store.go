// Package store owns all PostgreSQL access for documents and their chunk
// embeddings. Vector similarity queries run against a pgvector column with
// an HNSW cosine index; similarity is 1 - cosine_distance and thresholds
// are strict (a result equal to the threshold is excluded).
//
// All vector parameters are bound through pgvector.Vector. Vector data is
// never interpolated into SQL text.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store manages document and chunk rows. It is safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store on the given pool. The pool must have pgvector types
// registered (see testutil and cmd wiring). A nil logger falls back to
// slog.Default().
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// CreateDocument inserts a document row in processing state and returns it.
func (s *Store) CreateDocument(ctx context.Context, fileName, fileType string, fileSize int64, content string) (Document, error) {
	const q = `
		INSERT INTO documents (file_name, file_type, file_size, content, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, file_name, file_type, file_size, content, status, created_at, updated_at`

	var doc Document
	err := s.pool.QueryRow(ctx, q, fileName, fileType, fileSize, content, StatusProcessing).Scan(
		&doc.ID, &doc.FileName, &doc.FileType, &doc.FileSize,
		&doc.Content, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return Document{}, fmt.Errorf("creating document %q: %w", fileName, err)
	}

	s.logger.Debug("created document", "id", doc.ID, "file_name", fileName)
	return doc, nil
}

// Document returns the document with the given id, or ErrNotFound.
func (s *Store) Document(ctx context.Context, id uuid.UUID) (Document, error) {
	const q = `
		SELECT id, file_name, file_type, file_size, content, status, created_at, updated_at
		FROM documents
		WHERE id = $1`

	var doc Document
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&doc.ID, &doc.FileName, &doc.FileType, &doc.FileSize,
		&doc.Content, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("getting document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns all documents, newest first.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	const q = `
		SELECT id, file_name, file_type, file_size, content, status, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.FileName, &doc.FileType, &doc.FileSize,
			&doc.Content, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// MarkDocumentReady flips a document out of processing state once its
// chunks are stored.
func (s *Store) MarkDocumentReady(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET status = $2, updated_at = now() WHERE id = $1`,
		id, StatusReady)
	if err != nil {
		return fmt.Errorf("marking document %s ready: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteDocument removes a document; its chunks cascade at the database level.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}

	s.logger.Debug("deleted document", "id", id)
	return nil
}

// FindTicketByNumber returns the newest document whose file name matches
// the ticket naming convention for the given number.
func (s *Store) FindTicketByNumber(ctx context.Context, number string) (Document, error) {
	const q = `
		SELECT id, file_name, file_type, file_size, content, status, created_at, updated_at
		FROM documents
		WHERE lower(file_name) LIKE $1
		ORDER BY created_at DESC
		LIMIT 1`

	pattern := "%ticket%" + number + "%"

	var doc Document
	err := s.pool.QueryRow(ctx, q, pattern).Scan(
		&doc.ID, &doc.FileName, &doc.FileType, &doc.FileSize,
		&doc.Content, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, fmt.Errorf("ticket %s: %w", number, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("finding ticket %s: %w", number, err)
	}
	return doc, nil
}

// InsertChunks stores a document's chunks with their embeddings in a single
// transaction: either every chunk lands or none do.
func (s *Store) InsertChunks(ctx context.Context, documentID uuid.UUID, chunks []EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning chunk insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(
			`INSERT INTO chunks (document_id, position, content, embedding) VALUES ($1, $2, $3, $4)`,
			documentID, i, c.Content, pgvector.NewVector(c.Embedding))
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("inserting chunks for document %s: %w", documentID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing chunk insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing chunks for document %s: %w", documentID, err)
	}

	s.logger.Debug("inserted chunks", "document_id", documentID, "count", len(chunks))
	return nil
}

// Chunks returns a document's chunk rows in position order, without embeddings.
func (s *Store) Chunks(ctx context.Context, documentID uuid.UUID) ([]StoredChunk, error) {
	const q = `SELECT id, position, content FROM chunks WHERE document_id = $1 ORDER BY position`

	rows, err := s.pool.Query(ctx, q, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var chunks []StoredChunk
	for rows.Next() {
		var c StoredChunk
		if err := rows.Scan(&c.ID, &c.Position, &c.Content); err != nil {
			return nil, fmt.Errorf("scanning chunk row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing chunks for document %s: %w", documentID, err)
	}
	return chunks, nil
}

// SearchChunks runs a nearest-neighbor query over stored chunk embeddings.
// Results are ordered by descending similarity; each strictly exceeds
// filter.Threshold. An empty result is not an error.
func (s *Store) SearchChunks(ctx context.Context, queryVector []float32, filter SearchFilter) ([]RetrievalResult, error) {
	const q = `
		SELECT c.content,
		       1 - (c.embedding <=> $1) AS similarity,
		       c.document_id,
		       d.file_name
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE ($2::uuid IS NULL OR c.document_id = $2)
		  AND 1 - (c.embedding <=> $1) > $3
		ORDER BY c.embedding <=> $1
		LIMIT $4`

	rows, err := s.pool.Query(ctx, q,
		pgvector.NewVector(queryVector), filter.DocumentID, filter.Threshold, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	defer rows.Close()

	var results []RetrievalResult
	for rows.Next() {
		var r RetrievalResult
		if err := rows.Scan(&r.Content, &r.Similarity, &r.DocumentID, &r.DocumentName); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}
	return results, nil
}

// DocumentEmbeddings returns up to limit of a document's stored chunk
// embeddings in position order. A document with no chunks yields an empty
// slice; an unknown document yields ErrNotFound.
func (s *Store) DocumentEmbeddings(ctx context.Context, documentID uuid.UUID, limit int) ([][]float32, error) {
	const q = `SELECT embedding FROM chunks WHERE document_id = $1 ORDER BY position LIMIT $2`

	rows, err := s.pool.Query(ctx, q, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading embeddings for document %s: %w", documentID, err)
	}
	defer rows.Close()

	var vectors [][]float32
	for rows.Next() {
		var v pgvector.Vector
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning embedding row: %w", err)
		}
		vectors = append(vectors, v.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading embeddings for document %s: %w", documentID, err)
	}

	if len(vectors) == 0 {
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, documentID).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("checking document %s: %w", documentID, err)
		}
		if !exists {
			return nil, fmt.Errorf("document %s: %w", documentID, ErrNotFound)
		}
	}
	return vectors, nil
}

// SearchTicketCandidates runs one cross-reference sub-query: chunks of
// other ticket-named documents ranked against a single source vector.
// The source document itself is excluded and the threshold is strict.
func (s *Store) SearchTicketCandidates(ctx context.Context, sourceVector []float32, excludeID uuid.UUID, threshold float64, limit int) ([]TicketCandidate, error) {
	const q = `
		SELECT d.id, d.file_name, d.file_type, d.file_size, d.content, d.status,
		       d.created_at, d.updated_at,
		       1 - (c.embedding <=> $1) AS similarity
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.document_id <> $2
		  AND lower(d.file_name) LIKE '%ticket%'
		  AND 1 - (c.embedding <=> $1) > $3
		ORDER BY c.embedding <=> $1
		LIMIT $4`

	rows, err := s.pool.Query(ctx, q,
		pgvector.NewVector(sourceVector), excludeID, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("searching ticket candidates: %w", err)
	}
	defer rows.Close()

	var candidates []TicketCandidate
	for rows.Next() {
		var c TicketCandidate
		if err := rows.Scan(&c.Document.ID, &c.Document.FileName, &c.Document.FileType,
			&c.Document.FileSize, &c.Document.Content, &c.Document.Status,
			&c.Document.CreatedAt, &c.Document.UpdatedAt, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scanning ticket candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching ticket candidates: %w", err)
	}
	return candidates, nil
}
