package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragdesk/ragdesk/db"
	"github.com/ragdesk/ragdesk/internal/answer"
	"github.com/ragdesk/ragdesk/internal/chunk"
	"github.com/ragdesk/ragdesk/internal/config"
	"github.com/ragdesk/ragdesk/internal/database"
	"github.com/ragdesk/ragdesk/internal/embedding"
	"github.com/ragdesk/ragdesk/internal/ingest"
	"github.com/ragdesk/ragdesk/internal/log"
	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/store"
	"github.com/ragdesk/ragdesk/internal/ticket"
)

// app bundles the wired services a command needs.
type app struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	store     *store.Store
	ingest    *ingest.Service
	retriever *retrieval.Retriever
	assembler *retrieval.Assembler
	crossref  *ticket.CrossReferencer
	generator *answer.Generator
	logger    log.Logger
}

// setupApp loads configuration, migrates the schema, and wires every
// service. The returned cleanup closes the connection pool.
func setupApp(ctx context.Context) (*app, func(), error) {
	logger := log.New(log.Config{
		Level: log.ParseLevel(logLevel),
		JSON:  logJSON,
	})
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.Connect(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	cleanup := func() { pool.Close() }

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		cleanup()
		return nil, nil, fmt.Errorf("initializing genkit")
	}

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		cleanup()
		return nil, nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	client := embedding.NewClient(embedder, cfg.EmbedderDimensions,
		logger.With("component", "embedding"))

	splitter, err := chunk.New(chunk.Config{
		MaxSize: cfg.MaxChunkSize,
		MinSize: cfg.MinChunkSize,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("configuring splitter: %w", err)
	}

	st := store.New(pool, logger.With("component", "store"))

	return &app{
		cfg:    cfg,
		pool:   pool,
		store:  st,
		ingest: ingest.NewService(splitter, client, st, logger.With("component", "ingest")),
		retriever: retrieval.NewRetriever(client, st, retrieval.Config{
			Threshold: cfg.RetrievalThreshold,
			Limit:     cfg.RetrievalLimit,
		}, logger.With("component", "retrieval")),
		assembler: retrieval.NewAssembler(cfg.TicketPreview),
		crossref: ticket.NewCrossReferencer(st, ticket.Config{
			MaxSourceEmbeddings: cfg.MaxSourceEmbeddings,
			PerQueryLimit:       cfg.TicketQueryLimit,
		}, logger.With("component", "tickets")),
		generator: answer.NewGenerator(g, cfg.FullModelName(), logger.With("component", "answer")),
		logger:    logger,
	}, cleanup, nil
}
