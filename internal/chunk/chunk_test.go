package chunk

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{MaxSize: 800, MinSize: 50}},
		{name: "default", cfg: DefaultConfig()},
		{name: "zero max", cfg: Config{MaxSize: 0, MinSize: 50}, wantErr: true},
		{name: "zero min", cfg: Config{MaxSize: 800, MinSize: 0}, wantErr: true},
		{name: "negative max", cfg: Config{MaxSize: -1, MinSize: 50}, wantErr: true},
		{name: "min equals max", cfg: Config{MaxSize: 100, MinSize: 100}, wantErr: true},
		{name: "min above max", cfg: Config{MaxSize: 100, MinSize: 200}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("New() expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("New() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() unexpected error: %v", err)
			}
			if s == nil {
				t.Fatal("New() returned nil splitter")
			}
		})
	}
}

func TestSplitEmptyInput(t *testing.T) {
	s := mustSplitter(t, DefaultConfig())

	for _, input := range []string{"", "   ", "\n\n\t\n"} {
		if got := s.Split(input); got != nil {
			t.Errorf("Split(%q) = %v, want nil", input, got)
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 80, MinSize: 10})

	text := "A single paragraph that fits comfortably."
	got := s.Split(text)

	if len(got) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1: %v", len(got), got)
	}
	if got[0] != text {
		t.Errorf("Split() = %q, want %q", got[0], text)
	}
}

func TestSplitTextExactlyMaxSize(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 40, MinSize: 5})

	text := strings.Repeat("ab cd ", 6) + "efgh" // exactly 40 chars
	if len(text) != 40 {
		t.Fatalf("test input length = %d, want 40", len(text))
	}

	got := s.Split(text)
	if len(got) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1", len(got))
	}
}

func TestSplitParagraphs(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 100, MinSize: 10})

	text := "Paragraph one.\n\nParagraph two is much longer than sixty characters and should still fit in one chunk easily."
	got := s.Split(text)

	if len(got) != 2 {
		t.Fatalf("Split() returned %d chunks, want 2: %v", len(got), got)
	}
	if got[0] != "Paragraph one." {
		t.Errorf("first chunk = %q, want %q", got[0], "Paragraph one.")
	}
	if !strings.HasPrefix(got[1], "Paragraph two") {
		t.Errorf("second chunk = %q, want it to start with %q", got[1], "Paragraph two")
	}
}

func TestSplitRecursesIntoOversizedParagraph(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 80, MinSize: 10})

	// The second paragraph exceeds 80 chars and has no newlines, so the
	// splitter must descend to finer separators.
	text := "Paragraph one.\n\nParagraph two is much longer than sixty characters and should still fit in one chunk easily."
	got := s.Split(text)

	if len(got) < 2 {
		t.Fatalf("Split() returned %d chunks, want at least 2: %v", len(got), got)
	}
	for i, c := range got {
		if len(c) > 80 {
			t.Errorf("chunk %d length = %d, exceeds max 80: %q", i, len(c), c)
		}
	}
}

func TestSplitSizeInvariant(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 120, MinSize: 20})

	var b strings.Builder
	for range 40 {
		b.WriteString("Sentence number one in the paragraph. Sentence two follows it closely. ")
		b.WriteString("A third sentence wraps the thought up nicely.\n\n")
	}

	got := s.Split(b.String())
	if len(got) == 0 {
		t.Fatal("Split() returned no chunks")
	}
	for i, c := range got {
		// The merge pass may push a chunk past max by at most one merged
		// fragment plus the joining separator.
		if len(c) > 120+20+2 {
			t.Errorf("chunk %d length = %d, far exceeds max: %q", i, len(c), c)
		}
	}
}

func TestSplitNoSubMinimumOrphans(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 100, MinSize: 15})

	text := "This opening paragraph has a perfectly reasonable length for one chunk.\n\nok\n\nAnother full paragraph with enough content to stand on its own here."
	got := s.Split(text)

	for i, c := range got {
		if len(strings.TrimSpace(c)) < 15 {
			t.Errorf("chunk %d length = %d, below min 15: %q", i, len(c), c)
		}
	}
}

func TestSplitMergesSmallChunkIntoPrevious(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 100, MinSize: 10})

	// The middle paragraph is near the budget so the trailing fragment
	// cannot be packed with it and surfaces as an undersized chunk.
	full := strings.Repeat("b", 98)
	text := "First paragraph is long enough to stand alone as a chunk here.\n\n" + full + "\n\ntiny"
	got := s.Split(text)

	if len(got) != 2 {
		t.Fatalf("Split() returned %d chunks, want 2: %v", len(got), got)
	}
	if !strings.HasSuffix(got[1], "\n\ntiny") {
		t.Errorf("merged chunk = %q, want trailing %q", got[1], "\n\ntiny")
	}
}

func TestSplitDropsUndersizedFirstChunk(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 100, MinSize: 10})

	// The undersized leading fragment has no predecessor to merge into.
	para := strings.Repeat("content ", 12) + "end" // 99 chars, cannot pack with "hi"
	text := "hi\n\n" + para
	got := s.Split(text)

	if len(got) != 1 {
		t.Fatalf("Split() returned %d chunks, want 1: %v", len(got), got)
	}
	if strings.Contains(got[0], "hi") {
		t.Errorf("chunk = %q, undersized first fragment should have been dropped", got[0])
	}
}

func TestSplitUnsplittableToken(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 800, MinSize: 50})

	got := s.Split(strings.Repeat("x", 2000))

	wantLens := []int{800, 800, 400}
	if len(got) != len(wantLens) {
		t.Fatalf("Split() returned %d chunks, want %d", len(got), len(wantLens))
	}
	for i, want := range wantLens {
		if len(got[i]) != want {
			t.Errorf("chunk %d length = %d, want %d", i, len(got[i]), want)
		}
	}
}

func TestSplitCompleteness(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 60, MinSize: 5})

	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november oscar papa quebec romeo sierra tango"
	got := s.Split(text)

	joined := strings.Join(got, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q missing from output", word)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := mustSplitter(t, Config{MaxSize: 90, MinSize: 10})

	text := "One paragraph here with some words.\n\nA second paragraph, also with words. And a sentence more! Plus a question? Yes; indeed, truly final."
	first := s.Split(text)
	second := s.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func mustSplitter(t *testing.T, cfg Config) *Splitter {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New(%+v): %v", cfg, err)
	}
	return s
}
