package retrieval

import (
	"strings"
	"testing"

	"github.com/ragdesk/ragdesk/internal/store"
	"github.com/ragdesk/ragdesk/internal/ticket"
)

func TestAssembleEmptyResults(t *testing.T) {
	got := NewAssembler(-1).Assemble(nil, nil)
	if got.Text != "" || len(got.Sources) != 0 || got.Confidence != 0 {
		t.Errorf("Assemble(nil, nil) = %+v, want zero Context", got)
	}
}

func TestAssembleJoinsChunks(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "alpha", Similarity: 0.5, DocumentName: "a.txt"},
		{Content: "beta", Similarity: 0.7, DocumentName: "b.txt"},
	}

	got := NewAssembler(-1).Assemble(results, nil)
	if want := "alpha\n\n---\n\nbeta"; got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
	if got.Confidence != 60 {
		t.Errorf("Confidence = %d, want 60", got.Confidence)
	}
}

func TestAssembleDeduplicatesSources(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "one", Similarity: 0.8, DocumentName: "guide.txt"},
		{Content: "two", Similarity: 0.8, DocumentName: "faq.txt"},
		{Content: "three", Similarity: 0.8, DocumentName: "guide.txt"},
	}

	got := NewAssembler(-1).Assemble(results, nil)
	if len(got.Sources) != 2 || got.Sources[0] != "guide.txt" || got.Sources[1] != "faq.txt" {
		t.Errorf("Sources = %v, want [guide.txt faq.txt] in first-appearance order", got.Sources)
	}
}

func TestAssembleAppendsTicketSection(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "printer jammed again", Similarity: 0.9, DocumentName: "ticket-500.txt"},
	}
	tickets := []ticket.Similar{
		{Document: store.Document{FileName: "ticket-123.txt", Content: "replaced the fuser unit"}},
	}

	got := NewAssembler(-1).Assemble(results, tickets)
	if !strings.Contains(got.Text, "--- RELATED TICKETS ---") {
		t.Fatalf("Text missing ticket section header:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "TICKET #123:\nreplaced the fuser unit") {
		t.Errorf("Text missing ticket entry:\n%s", got.Text)
	}
	if !strings.HasPrefix(got.Text, "printer jammed again") {
		t.Errorf("ticket section must follow chunk context, got:\n%s", got.Text)
	}
}

func TestAssembleNoTicketSectionWithoutTickets(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "chunk", Similarity: 0.9, DocumentName: "a.txt"},
	}

	got := NewAssembler(-1).Assemble(results, nil)
	if strings.Contains(got.Text, "RELATED TICKETS") {
		t.Errorf("unexpected ticket section in %q", got.Text)
	}
}

func TestAssembleTruncatesTicketPreview(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "chunk", Similarity: 0.9, DocumentName: "a.txt"},
	}
	tickets := []ticket.Similar{
		{Document: store.Document{FileName: "ticket-9.txt", Content: "abcdefghij"}},
	}

	got := NewAssembler(4).Assemble(results, tickets)
	if !strings.Contains(got.Text, "TICKET #9:\nabcd") {
		t.Errorf("Text missing truncated entry:\n%s", got.Text)
	}
	if strings.Contains(got.Text, "abcde") {
		t.Errorf("preview not truncated to 4 characters:\n%s", got.Text)
	}
}

func TestAssembleConfidenceRounds(t *testing.T) {
	results := []store.RetrievalResult{
		{Content: "x", Similarity: 0.333, DocumentName: "a.txt"},
		{Content: "y", Similarity: 0.333, DocumentName: "a.txt"},
		{Content: "z", Similarity: 0.333, DocumentName: "a.txt"},
	}

	got := NewAssembler(-1).Assemble(results, nil)
	if got.Confidence != 33 {
		t.Errorf("Confidence = %d, want 33", got.Confidence)
	}
}
