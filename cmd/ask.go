package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/retrieval"
	"github.com/ragdesk/ragdesk/internal/ticket"
)

var (
	askDocument  string
	askTicket    string
	askThreshold float64
	askLimit     int
	askGenerate  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in the ingested documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askDocument, "document", "", "restrict retrieval to one document id")
	askCmd.Flags().StringVar(&askTicket, "ticket", "", "restrict retrieval to the ticket with this number")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", 0, "override the similarity threshold")
	askCmd.Flags().IntVar(&askLimit, "limit", 0, "override the maximum number of chunks")
	askCmd.Flags().BoolVar(&askGenerate, "generate", true, "generate an answer; disable to print the retrieved context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	a, cleanup, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var opts []retrieval.Option
	if cmd.Flags().Changed("threshold") {
		opts = append(opts, retrieval.WithThreshold(askThreshold))
	}
	if cmd.Flags().Changed("limit") {
		opts = append(opts, retrieval.WithLimit(askLimit))
	}

	// Scoping to a ticket document also surfaces related prior tickets.
	var similar []ticket.Similar
	switch {
	case askDocument != "":
		id, err := uuid.Parse(askDocument)
		if err != nil {
			return fmt.Errorf("invalid document id %q: %w", askDocument, err)
		}
		doc, err := a.store.Document(ctx, id)
		if err != nil {
			return err
		}
		opts = append(opts, retrieval.WithDocument(doc.ID))
		if ticket.IsTicket(doc.FileName) {
			similar = relatedTickets(ctx, a, doc.ID)
		}
	case askTicket != "":
		doc, err := a.store.FindTicketByNumber(ctx, askTicket)
		if err != nil {
			return err
		}
		opts = append(opts, retrieval.WithDocument(doc.ID))
		similar = relatedTickets(ctx, a, doc.ID)
	}

	results, err := a.retriever.Retrieve(ctx, question, opts...)
	if err != nil {
		return err
	}

	rctx := a.assembler.Assemble(results, similar)
	if !askGenerate {
		if rctx.Text == "" {
			fmt.Println("no relevant content found")
			return nil
		}
		fmt.Println(rctx.Text)
		fmt.Printf("\nSources: %s\nConfidence: %d%%\n",
			strings.Join(rctx.Sources, ", "), rctx.Confidence)
		return nil
	}

	ans, err := a.generator.Answer(ctx, question, rctx)
	if err != nil {
		return err
	}

	fmt.Println(ans.Content)
	if len(ans.Sources) > 0 {
		fmt.Printf("\nSources: %s\n", strings.Join(ans.Sources, ", "))
		fmt.Printf("Confidence: %d%%\n", ans.Confidence)
	}
	return nil
}

// relatedTickets enriches the answer context with similar prior tickets.
// The enrichment is best-effort: a lookup failure must not abort the
// primary answer, so it degrades to no related tickets.
func relatedTickets(ctx context.Context, a *app, id uuid.UUID) []ticket.Similar {
	similar, err := a.crossref.FindSimilar(ctx, id, a.cfg.MaxSimilarTickets, a.cfg.TicketThreshold)
	if err != nil {
		a.logger.Warn("ticket cross-reference failed", "document_id", id, "error", err)
		return nil
	}
	return similar
}
