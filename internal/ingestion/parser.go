package ingestion

import (
	"context"
	"fmt"

	"github.com/viant/ragvault/internal/model"
)

// TextParser implements Parser for plain text, the one document format this
// service parses natively. PDF and DOCX extraction depend on third-party
// libraries outside this corpus's wired dependency set and are reported as
// unsupported rather than faked.
type TextParser struct {
	chunker *Chunker
}

func NewTextParser(chunker *Chunker) *TextParser {
	return &TextParser{chunker: chunker}
}

func (p *TextParser) Parse(_ context.Context, filename string, docType model.DocumentType, data []byte) ([]string, error) {
	switch docType {
	case model.DocumentTypeTXT:
		return p.chunker.Chunk(string(data)), nil
	default:
		return nil, fmt.Errorf("ingestion: %s parsing not supported for %q", docType, filename)
	}
}
