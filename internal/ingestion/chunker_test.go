package ingestion

import (
	"strings"
	"testing"
)

func TestChunkEmptyText(t *testing.T) {
	c := NewChunker(500, 100)
	if got := c.Chunk("   "); got != nil {
		t.Errorf("Chunk(blank) = %v, want nil", got)
	}
}

func TestChunkSingleParagraphFitsOneChunk(t *testing.T) {
	c := NewChunker(500, 100)
	text := "A single short paragraph."
	got := c.Chunk(text)
	if len(got) != 1 || got[0] != text {
		t.Errorf("Chunk(single short paragraph) = %v, want [%q]", got, text)
	}
}

func TestChunkSplitsOnSizeBoundary(t *testing.T) {
	c := NewChunker(50, 10)
	para := strings.Repeat("word ", 20) // ~100 chars, one paragraph
	got := c.Chunk(para)
	if len(got) < 2 {
		t.Fatalf("expected the paragraph to split across multiple chunks, got %d", len(got))
	}
	for _, chunk := range got {
		if len(chunk) > 50+10+1 { // size plus overlap plus slack for boundary nudging
			t.Errorf("chunk exceeds size+overlap bound: %q (%d bytes)", chunk, len(chunk))
		}
	}
}

func TestChunkOverlapCarriesWordAlignedSuffix(t *testing.T) {
	c := NewChunker(30, 10)
	text := "alpha beta gamma delta\n\nepsilon zeta eta theta iota kappa"
	got := c.Chunk(text)
	if len(got) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(got))
	}
	// the second chunk should start with a word-boundary-aligned fragment
	// of the first, not a mid-word cut.
	second := got[1]
	if strings.HasPrefix(second, " ") {
		t.Errorf("overlap suffix should not start with a bare space: %q", second)
	}
}

func TestNewChunkerRejectsInvalidOverlap(t *testing.T) {
	c := NewChunker(100, 500) // overlap >= size is invalid
	if c.overlap != 0 {
		t.Errorf("overlap = %d, want 0 when overlap >= size", c.overlap)
	}
}
