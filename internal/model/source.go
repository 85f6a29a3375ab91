package model

// SourceRef is a value-object reference to a chunk used during generation.
// It is derived at retrieval time and never persisted; it never holds a
// back-reference to its owning chunk or document.
type SourceRef struct {
	DocumentID     string            `json:"document_id"`
	ChunkID        string            `json:"chunk_id"`
	Excerpt        string            `json:"excerpt"`
	RelevanceScore float64           `json:"relevance_score"`
	Metadata       map[string]string `json:"metadata"`
}

// NewSourceRef builds a SourceRef with a non-nil metadata map.
func NewSourceRef(documentID, chunkID, excerpt string, score float64, metadata map[string]string) SourceRef {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return SourceRef{
		DocumentID:     documentID,
		ChunkID:        chunkID,
		Excerpt:        excerpt,
		RelevanceScore: score,
		Metadata:       metadata,
	}
}
