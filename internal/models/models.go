package models

// Page is one extracted unit of text from a source document. Pages are
// ephemeral: they exist only in memory for the duration of an ingestion run.
type Page struct {
	PageNumber int    `json:"page_number"` // 1-based
	Text       string `json:"text"`
	SourceKey  string `json:"source_key"`
	PageCount  int    `json:"page_count"` // total pages in the document
}

// Chunk is a bounded slice of a Page's text, the unit that gets embedded
// and stored.
type Chunk struct {
	Text          string `json:"text"`
	TruncatedText string `json:"truncated_text"` // byte-capped copy used for storage
	PageNumber    int    `json:"page_number"`
	ChunkIndex    int    `json:"chunk_index"` // 0-based, order within the page
	TotalChunks   int    `json:"total_chunks"`
}

// VectorRecord is one embedded chunk as stored in the vector index.
// ID is the chunk's content fingerprint, so re-embedding identical text
// overwrites rather than duplicates.
type VectorRecord struct {
	ID         string    `json:"id"`
	Values     []float32 `json:"values"`
	Text       string    `json:"text"`
	PageNumber int       `json:"page_number"`
	SourceKey  string    `json:"source_key"`
}

// Match is a single similarity-query hit. Score is cosine similarity
// mapped into [0,1].
type Match struct {
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
	PageNumber int     `json:"page_number"`
	SourceKey  string  `json:"source_key"`
}

// IngestSummary reports the outcome of one successful ingestion run.
// VectorsUploaded may be lower than ChunksCreated when individual chunks
// failed to embed and were skipped.
type IngestSummary struct {
	DocumentKey     string `json:"document_key"`
	PagesProcessed  int    `json:"pages_processed"`
	ChunksCreated   int    `json:"chunks_created"`
	VectorsUploaded int    `json:"vectors_uploaded"`
}
