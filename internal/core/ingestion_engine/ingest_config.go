package ingestion_engine

import (
	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/core/chunker"
	"github.com/docquery-ai/docquery/internal/core/vectorstore"
)

// IngestConfig tunes the pipeline.
//
// Workers:   background workers draining the job queue, used when Start is
//            called without an explicit count.
// QueueSize: capacity of the in-memory job queue; Enqueue blocks when full.
type IngestConfig struct {
	Workers   int
	QueueSize int
}

// DocumentIngestor orchestrates the background ingestion pipeline:
//
// obj:      object storage holding the uploaded documents.
// extractor: turns a local file into ordered pages.
// chunker:  splits pages into bounded overlapping chunks.
// embedder: embedding provider (Gemini).
// gateway:  namespaced vector index.
// jobs:     in-memory queue of storage keys to process (easy to swap with
//           a broker later).
type DocumentIngestor struct {
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	chunker   *chunker.Chunker
	embedder  core.EmbeddingProvider
	gateway   *vectorstore.Gateway
	cfg       *IngestConfig
	log       *zap.Logger
	jobs      chan string
}
