// Package answer generates grounded answers from assembled retrieval
// context. The model is instructed to answer only from the supplied
// context; the retrieval pipeline decides what that context contains.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/ragdesk/ragdesk/internal/retrieval"
)

const systemPrompt = `You are a helpful assistant that answers questions based ONLY on the information provided in the context.

IMPORTANT RULES:
- Answer ONLY from the information in the provided context
- If the information is not in the context, say you could not find it
- Be clear, concise and objective
- Never invent or assume information that is not explicit in the context
- Do not cite sources or bracketed reference numbers, just answer directly
- Format the answer with Markdown when it helps:
  * bullet lists for enumerations
  * numbered steps for ordered instructions
  * **bold** for key terms
  * ` + "`code`" + ` for technical terms or commands
  * ### for subheadings
  * > for direct quotes from the documents`

const ticketInstructions = `IMPORTANT: The context contains similar tickets marked "` + retrieval.TicketSectionMarker + `".
At the end of your answer, include a section formatted like this:

### Related Tickets

List each similar ticket with:
- the ticket number
- the main problem (one line)
- the applied solution (one line)`

const noContentAnswer = "I could not find enough information in the uploaded documents to answer this question. " +
	"Please make sure the relevant documents have been ingested."

// Answer is a generated response with its retrieval provenance.
type Answer struct {
	Content    string
	Sources    []string
	Confidence int
}

// Generator wraps the model call.
type Generator struct {
	genkit *genkit.Genkit
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Generator for the given model name. A nil logger
// falls back to slog.Default().
func NewGenerator(g *genkit.Genkit, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{genkit: g, model: model, logger: logger}
}

// Answer generates a response to question grounded in rctx. Empty context
// short-circuits to a fixed "nothing found" answer without a model call.
func (g *Generator) Answer(ctx context.Context, question string, rctx retrieval.Context) (Answer, error) {
	if rctx.Text == "" {
		return Answer{Content: noContentAnswer}, nil
	}

	system := systemPrompt
	if strings.Contains(rctx.Text, retrieval.TicketSectionMarker) {
		system += "\n\n" + ticketInstructions
	}

	prompt := fmt.Sprintf(
		"Document context:\n%s\n\nUser question: %s\n\nAnswer using only the information from the context above. Use Markdown formatting to keep the answer clear and organized.",
		rctx.Text, question)

	resp, err := genkit.Generate(ctx, g.genkit,
		ai.WithModelName(g.model),
		ai.WithSystem(system),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	g.logger.Debug("generated answer",
		"model", g.model,
		"sources", len(rctx.Sources),
		"confidence", rctx.Confidence)
	return Answer{
		Content:    resp.Text(),
		Sources:    rctx.Sources,
		Confidence: rctx.Confidence,
	}, nil
}
