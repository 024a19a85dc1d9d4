package retrieval

import (
	"math"
	"strings"

	"github.com/ragdesk/ragdesk/internal/store"
	"github.com/ragdesk/ragdesk/internal/ticket"
)

// chunkSeparator delimits chunk contents inside the assembled context.
const chunkSeparator = "\n\n---\n\n"

// TicketSectionMarker labels the related-tickets section appended after the
// chunk context when cross-referenced tickets exist. Generation prompts key
// their ticket instructions off this exact string.
const TicketSectionMarker = "--- RELATED TICKETS ---"

const ticketSectionHeader = "\n\n" + TicketSectionMarker + "\n\n" +
	"The following tickets describe similar problems or solutions:\n\n"

// Context is prompt-ready retrieval output. No generation happens here;
// Text and Sources are pure data shaping for a downstream LLM call.
type Context struct {
	// Text is the chunk contents joined by chunkSeparator, optionally
	// followed by a related-tickets section.
	Text string
	// Sources lists distinct document names in order of first appearance.
	Sources []string
	// Confidence is the average match similarity scaled to 0-100.
	Confidence int
}

// Assembler shapes retrieval results into a Context.
type Assembler struct {
	// ticketPreview caps the characters of ticket content included in the
	// related-tickets section. Negative means full content.
	ticketPreview int
}

// NewAssembler creates an Assembler. ticketPreview < 0 includes full ticket
// content.
func NewAssembler(ticketPreview int) *Assembler {
	return &Assembler{ticketPreview: ticketPreview}
}

// Assemble joins results into a single context block and collects their
// source document names. Empty results yield a zero Context.
func (a *Assembler) Assemble(results []store.RetrievalResult, tickets []ticket.Similar) Context {
	if len(results) == 0 {
		return Context{}
	}

	parts := make([]string, len(results))
	seen := make(map[string]struct{}, len(results))
	var (
		sources []string
		total   float64
	)
	for i, r := range results {
		parts[i] = r.Content
		total += r.Similarity
		if _, ok := seen[r.DocumentName]; !ok {
			seen[r.DocumentName] = struct{}{}
			sources = append(sources, r.DocumentName)
		}
	}

	text := strings.Join(parts, chunkSeparator)
	if section := a.ticketSection(tickets); section != "" {
		text += section
	}

	return Context{
		Text:       text,
		Sources:    sources,
		Confidence: int(math.Round(total / float64(len(results)) * 100)),
	}
}

func (a *Assembler) ticketSection(tickets []ticket.Similar) string {
	if len(tickets) == 0 {
		return ""
	}

	entries := make([]string, len(tickets))
	for i, t := range tickets {
		content := t.Document.Content
		if a.ticketPreview >= 0 {
			if runes := []rune(content); len(runes) > a.ticketPreview {
				content = string(runes[:a.ticketPreview])
			}
		}
		entries[i] = "TICKET #" + ticket.Number(t.Document.FileName) + ":\n" + content
	}
	return ticketSectionHeader + strings.Join(entries, chunkSeparator)
}
