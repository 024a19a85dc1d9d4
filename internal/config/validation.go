package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// API key is required for every embedding and generation call.
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}

	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedder)
	}
	// Dimensionality must match the vector column width in the schema.
	// gemini-embedding-001 supports truncation between 128 and 3072.
	if c.EmbedderDimensions < 1 || c.EmbedderDimensions > 3072 {
		return fmt.Errorf("%w: embedder_dimensions must be between 1 and 3072, got %d",
			ErrInvalidEmbedder, c.EmbedderDimensions)
	}

	if c.MaxChunkSize < 1 {
		return fmt.Errorf("%w: max_chunk_size must be positive, got %d",
			ErrInvalidChunking, c.MaxChunkSize)
	}
	if c.MinChunkSize < 1 {
		return fmt.Errorf("%w: min_chunk_size must be positive, got %d",
			ErrInvalidChunking, c.MinChunkSize)
	}
	if c.MinChunkSize >= c.MaxChunkSize {
		return fmt.Errorf("%w: min_chunk_size %d must be smaller than max_chunk_size %d",
			ErrInvalidChunking, c.MinChunkSize, c.MaxChunkSize)
	}

	if c.RetrievalThreshold < 0 || c.RetrievalThreshold >= 1 {
		return fmt.Errorf("%w: retrieval_threshold must be in [0, 1), got %g",
			ErrInvalidRetrieval, c.RetrievalThreshold)
	}
	if c.RetrievalLimit < 1 || c.RetrievalLimit > 100 {
		return fmt.Errorf("%w: retrieval_limit must be between 1 and 100, got %d",
			ErrInvalidRetrieval, c.RetrievalLimit)
	}

	if c.TicketThreshold < 0 || c.TicketThreshold >= 1 {
		return fmt.Errorf("%w: ticket_threshold must be in [0, 1), got %g",
			ErrInvalidTickets, c.TicketThreshold)
	}
	if c.MaxSimilarTickets < 1 || c.MaxSimilarTickets > 20 {
		return fmt.Errorf("%w: max_similar_tickets must be between 1 and 20, got %d",
			ErrInvalidTickets, c.MaxSimilarTickets)
	}
	if c.MaxSourceEmbeddings < 1 || c.MaxSourceEmbeddings > 50 {
		return fmt.Errorf("%w: max_source_embeddings must be between 1 and 50, got %d",
			ErrInvalidTickets, c.MaxSourceEmbeddings)
	}
	if c.TicketQueryLimit < 1 || c.TicketQueryLimit > 100 {
		return fmt.Errorf("%w: ticket_query_limit must be between 1 and 100, got %d",
			ErrInvalidTickets, c.TicketQueryLimit)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}
	if c.PostgresPassword == "" {
		return fmt.Errorf("%w: postgres_password must be set in config.yaml",
			ErrInvalidPostgresPassword)
	}
	if c.PostgresPassword == "ragdesk_dev_password" {
		slog.Warn("Using default development password for PostgreSQL",
			"warning", "Change postgres_password in config.yaml for production deployments")
	}
	if len(c.PostgresPassword) < 8 {
		return fmt.Errorf("%w: postgres_password must be at least 8 characters (got %d)",
			ErrInvalidPostgresPassword, len(c.PostgresPassword))
	}

	// Modern SSL modes only; allow/prefer are deprecated (MITM vulnerable).
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}
