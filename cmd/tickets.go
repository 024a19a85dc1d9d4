package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ragdesk/ragdesk/internal/store"
	"github.com/ragdesk/ragdesk/internal/ticket"
)

var (
	ticketsLimit         int
	ticketsMinSimilarity float64
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Cross-reference ticket documents",
}

var ticketsSimilarCmd = &cobra.Command{
	Use:   "similar <document-id | ticket-number>",
	Short: "Find prior tickets similar to the given one",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketsSimilar,
}

func init() {
	ticketsSimilarCmd.Flags().IntVar(&ticketsLimit, "limit", 0, "override the maximum number of tickets")
	ticketsSimilarCmd.Flags().Float64Var(&ticketsMinSimilarity, "min-similarity", 0, "override the similarity floor")
	ticketsCmd.AddCommand(ticketsSimilarCmd)
	rootCmd.AddCommand(ticketsCmd)
}

func runTicketsSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, cleanup, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	// Accept either a document id or a bare ticket number.
	var doc store.Document
	if id, parseErr := uuid.Parse(args[0]); parseErr == nil {
		doc, err = a.store.Document(ctx, id)
	} else {
		doc, err = a.store.FindTicketByNumber(ctx, args[0])
	}
	if err != nil {
		return err
	}

	limit := a.cfg.MaxSimilarTickets
	if cmd.Flags().Changed("limit") {
		limit = ticketsLimit
	}
	minSimilarity := a.cfg.TicketThreshold
	if cmd.Flags().Changed("min-similarity") {
		minSimilarity = ticketsMinSimilarity
	}

	similar, err := a.crossref.FindSimilar(ctx, doc.ID, limit, minSimilarity)
	if err != nil {
		return err
	}
	if len(similar) == 0 {
		fmt.Printf("no tickets similar to %s above %.2f\n", doc.FileName, minSimilarity)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICKET\tSIMILARITY\tFILE\tID")
	for _, s := range similar {
		fmt.Fprintf(w, "#%s\t%.3f\t%s\t%s\n",
			ticket.Number(s.Document.FileName), s.Similarity, s.Document.FileName, s.Document.ID)
	}
	return w.Flush()
}
