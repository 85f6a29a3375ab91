package ingestion

import "strings"

// Chunker splits document text into overlapping, size-bounded fragments.
// Splitting happens on paragraph boundaries first so chunks stay coherent;
// a paragraph-level split point is preferred over cutting mid-sentence.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into paragraph-respecting chunks of up to the configured
// size; every chunk after the first also starts with up to the configured
// overlap of trailing text from the previous chunk, aligned to a word
// boundary. A paragraph longer than the size is first cut at spaces into
// pieces within the size; a single word longer than the size stays whole.
func (c *Chunker) Chunk(text string) []string {
	var paragraphs []string
	for _, p := range splitParagraphs(text) {
		for len(p) > c.size {
			cut := strings.LastIndexByte(p[:c.size+1], ' ')
			if cut <= 0 {
				cut = strings.IndexByte(p, ' ')
			}
			if cut <= 0 {
				break
			}
			paragraphs = append(paragraphs, p[:cut])
			p = strings.TrimLeft(p[cut+1:], " ")
		}
		paragraphs = append(paragraphs, p)
	}
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+len(p)+1 > c.size {
			chunks = append(chunks, current.String())
			overlapText := c.overlapSuffix(current.String())
			current.Reset()
			if overlapText != "" {
				current.WriteString(overlapText)
				current.WriteString(p)
			} else {
				current.WriteString(p)
			}
			continue
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// overlapSuffix returns the trailing overlap-sized slice of text, nudged to
// the nearest following word boundary so overlap never starts mid-word.
func (c *Chunker) overlapSuffix(text string) string {
	if len(text) <= c.overlap {
		return text
	}
	start := len(text) - c.overlap
	if idx := strings.IndexByte(text[start:], ' '); idx != -1 {
		return text[start+idx+1:] + " "
	}
	return text[start:] + " "
}
