package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// mockEmbedder implements ai.Embedder for testing.
type mockEmbedder struct {
	embedErr    error
	vectors     [][]float32 // one per input; cycled if shorter
	returnCount int         // override number of embeddings returned (-1 = match input)
	lastInputs  []string
}

func (m *mockEmbedder) Name() string { return "mock-embedder" }

func (m *mockEmbedder) Register(api.Registry) {}

func (m *mockEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.lastInputs = nil
	for _, doc := range req.Input {
		if len(doc.Content) > 0 {
			m.lastInputs = append(m.lastInputs, doc.Content[0].Text)
		}
	}

	if m.embedErr != nil {
		return nil, m.embedErr
	}

	count := len(req.Input)
	if m.returnCount > 0 {
		count = m.returnCount
	}

	resp := &ai.EmbedResponse{}
	for i := range count {
		vec := []float32{0.1, 0.2, 0.3}
		if len(m.vectors) > 0 {
			vec = m.vectors[i%len(m.vectors)]
		}
		resp.Embeddings = append(resp.Embeddings, &ai.Embedding{Embedding: vec})
	}
	return resp, nil
}

func TestEmbedBatch(t *testing.T) {
	mock := &mockEmbedder{vectors: [][]float32{
		{1, 0, 0},
		{0, 1, 0},
	}}
	client := NewClient(mock, 3, nil)

	got, err := client.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("EmbedBatch() returned %d vectors, want 2", len(got))
	}
	if got[0][0] != 1 || got[1][1] != 1 {
		t.Errorf("EmbedBatch() vectors out of order: %v", got)
	}
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	client := NewClient(&mockEmbedder{}, 3, nil)

	got, err := client.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil) error: %v", err)
	}
	if got != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", got)
	}
}

func TestEmbedBatchProviderError(t *testing.T) {
	mock := &mockEmbedder{embedErr: errors.New("quota exceeded")}
	client := NewClient(mock, 3, nil)

	_, err := client.EmbedBatch(context.Background(), []string{"text"})
	if !errors.Is(err, ErrProviderFailure) {
		t.Errorf("EmbedBatch() error = %v, want ErrProviderFailure", err)
	}
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	mock := &mockEmbedder{returnCount: 1}
	client := NewClient(mock, 3, nil)

	_, err := client.EmbedBatch(context.Background(), []string{"one", "two"})
	if !errors.Is(err, ErrProviderFailure) {
		t.Errorf("EmbedBatch() error = %v, want ErrProviderFailure", err)
	}
}

func TestEmbedBatchDimensionMismatch(t *testing.T) {
	mock := &mockEmbedder{vectors: [][]float32{{1, 2}}}
	client := NewClient(mock, 3, nil)

	_, err := client.EmbedBatch(context.Background(), []string{"text"})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("EmbedBatch() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestEmbedQuery(t *testing.T) {
	mock := &mockEmbedder{vectors: [][]float32{{0.5, 0.5, 0}}}
	client := NewClient(mock, 3, nil)

	got, err := client.EmbedQuery(context.Background(), "what is the refund policy")
	if err != nil {
		t.Fatalf("EmbedQuery() error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("EmbedQuery() vector length = %d, want 3", len(got))
	}
}

func TestEmbedQueryEmptyEmbedding(t *testing.T) {
	mock := &mockEmbedder{vectors: [][]float32{{}}}
	client := NewClient(mock, 3, nil)

	_, err := client.EmbedQuery(context.Background(), "query")
	if !errors.Is(err, ErrEmptyEmbedding) {
		t.Errorf("EmbedQuery() error = %v, want ErrEmptyEmbedding", err)
	}
}

func TestNormalizeEscapedNewlines(t *testing.T) {
	mock := &mockEmbedder{}
	client := NewClient(mock, 3, nil)

	if _, err := client.EmbedQuery(context.Background(), `line one\nline two`); err != nil {
		t.Fatalf("EmbedQuery() error: %v", err)
	}
	if len(mock.lastInputs) != 1 {
		t.Fatalf("embedder saw %d inputs, want 1", len(mock.lastInputs))
	}
	if got, want := mock.lastInputs[0], "line one line two"; got != want {
		t.Errorf("normalized input = %q, want %q", got, want)
	}
}
