// Package chunk splits extracted document text into retrieval-sized pieces.
//
// The splitter walks a ladder of separators from the most structural
// (paragraph breaks) down to single spaces, packing consecutive segments
// greedily until the size budget is reached. Chunk boundaries follow the
// document's own structure; no sliding-window overlap is introduced.
package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig indicates the splitter configuration is unusable
// (non-positive sizes, or a minimum that is not below the maximum).
var ErrInvalidConfig = errors.New("invalid chunk configuration")

// separators in priority order, most structural first. The last entry is a
// plain space; only when even that fails does the splitter fall back to
// fixed-width slicing.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

// Config defines chunk size bounds in characters.
type Config struct {
	// MaxSize is the upper bound for a chunk produced by the recursive
	// phase. Only an unsplittable token longer than MaxSize can exceed it.
	MaxSize int

	// MinSize is the lower bound below which a chunk is merged into its
	// predecessor rather than emitted on its own.
	MinSize int
}

// DefaultConfig returns the production chunk size bounds.
func DefaultConfig() Config {
	return Config{MaxSize: 800, MinSize: 50}
}

// Splitter converts document text into an ordered sequence of chunks.
// A Splitter is stateless and safe for concurrent use.
type Splitter struct {
	max int
	min int
}

// New validates cfg and returns a Splitter.
func New(cfg Config) (*Splitter, error) {
	if cfg.MaxSize <= 0 {
		return nil, fmt.Errorf("%w: max size must be positive, got %d", ErrInvalidConfig, cfg.MaxSize)
	}
	if cfg.MinSize <= 0 {
		return nil, fmt.Errorf("%w: min size must be positive, got %d", ErrInvalidConfig, cfg.MinSize)
	}
	if cfg.MinSize >= cfg.MaxSize {
		return nil, fmt.Errorf("%w: min size %d must be smaller than max size %d",
			ErrInvalidConfig, cfg.MinSize, cfg.MaxSize)
	}
	return &Splitter{max: cfg.MaxSize, min: cfg.MinSize}, nil
}

// Split breaks text into ordered, non-empty chunks. The result is
// deterministic for a given input. Empty or whitespace-only input yields
// no chunks and no error.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chunks := s.recursiveSplit(text, 0)

	// Merge undersized chunks into their predecessor so fragments too small
	// to carry retrieval signal are not emitted standalone. An undersized
	// first chunk has no predecessor and falls to the final length filter.
	merged := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if len(c) < s.min && len(merged) > 0 {
			merged[len(merged)-1] += "\n\n" + c
			continue
		}
		merged = append(merged, c)
	}

	final := merged[:0]
	for _, c := range merged {
		if len(strings.TrimSpace(c)) >= s.min {
			final = append(final, c)
		}
	}
	if len(final) == 0 {
		return nil
	}
	return final
}

// recursiveSplit splits text on separators[sepIdx], packing consecutive
// segments while they fit within the size budget. Segments that alone
// exceed the budget recurse into the next, finer separator; once the
// ladder is exhausted the text is sliced at fixed width as a last resort.
func (s *Splitter) recursiveSplit(text string, sepIdx int) []string {
	if len(text) <= s.max {
		return []string{text}
	}

	if sepIdx >= len(separators) {
		// Forced split: no separator left, may break mid-word.
		var chunks []string
		for i := 0; i < len(text); i += s.max {
			end := min(i+s.max, len(text))
			chunks = append(chunks, text[i:end])
		}
		return chunks
	}

	sep := separators[sepIdx]
	segments := strings.Split(text, sep)

	var chunks []string
	var current string

	flush := func() {
		if trimmed := strings.TrimSpace(current); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current = ""
	}

	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			continue
		}

		if len(segment) > s.max {
			flush()
			chunks = append(chunks, s.recursiveSplit(segment, sepIdx+1)...)
			continue
		}

		candidate := segment
		if current != "" {
			candidate = current + sep + segment
		}
		if len(candidate) <= s.max {
			current = candidate
			continue
		}

		flush()
		current = segment
	}
	flush()

	return chunks
}
