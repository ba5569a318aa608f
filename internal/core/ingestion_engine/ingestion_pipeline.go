package ingestion_engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/core/chunker"
	"github.com/docquery-ai/docquery/internal/core/fingerprint"
	"github.com/docquery-ai/docquery/internal/core/vectorstore"
	"github.com/docquery-ai/docquery/internal/models"
	"github.com/docquery-ai/docquery/internal/sanitize"
)

const (
	defaultQueueSize = 64

	// processTimeout bounds one full document run independent of the
	// request context that enqueued it.
	processTimeout = 5 * time.Minute
)

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(obj core.ObjectClient, extractor core.DocumentExtractor, ch *chunker.Chunker, emb core.EmbeddingProvider, gateway *vectorstore.Gateway, cfg *IngestConfig, log *zap.Logger) *DocumentIngestor {
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = defaultQueueSize
	}
	return &DocumentIngestor{
		obj:       obj,
		extractor: extractor,
		chunker:   ch,
		embedder:  emb,
		gateway:   gateway,
		cfg:       cfg,
		log:       log,
		jobs:      make(chan string, queue),
	}
}

var _ Ingestor = (*DocumentIngestor)(nil)

// Start launches numWorkers goroutines reading from the jobs channel. They
// run until ctx is cancelled. Documents are independent, so workers never
// coordinate beyond sharing the queue. A non-positive count falls back to
// the configured worker count, then to a single worker.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = i.cfg.Workers
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			log := i.log.With(zap.Int("worker", w))
			for {
				select {
				case <-ctx.Done():
					log.Info("ingest worker shutting down")
					return
				case key := <-i.jobs:
					log.Info("processing document", zap.String("key", key))
					if summary, err := i.ProcessOne(ctx, key); err != nil {
						log.Error("ingestion failed", zap.String("key", key), zap.Error(err))
					} else {
						log.Info("ingestion complete",
							zap.String("key", key),
							zap.Int("pages", summary.PagesProcessed),
							zap.Int("chunks", summary.ChunksCreated),
							zap.Int("vectors", summary.VectorsUploaded))
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a storage key for ingestion.
// If the queue is full, this call blocks until space frees up.
func (i *DocumentIngestor) Enqueue(documentKey string) {
	i.jobs <- documentKey
}

// ProcessOne runs the full pipeline for a single document: download,
// extract, chunk, embed, upsert. The namespace is reset before the upsert,
// so re-ingesting the same key replaces its vectors instead of accumulating
// stale ones.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, documentKey string) (*models.IngestSummary, error) {
	proctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), processTimeout)
	defer cancel()

	path, err := i.obj.DownloadToTemp(proctx, documentKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrDownloadFailed, documentKey, err)
	}
	defer os.Remove(path)

	pages, err := i.extractor.Extract(proctx, path, documentKey)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, page := range pages {
		chunks = append(chunks, i.chunker.Split(page)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrChunkingProducedNothing, documentKey)
	}

	records := i.embedChunks(proctx, documentKey, chunks)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrNoVectorsProduced, documentKey)
	}

	namespace := sanitize.NamespaceKey(documentKey)
	if err := i.gateway.ResetNamespace(proctx, namespace); err != nil {
		return nil, err
	}
	if err := i.gateway.UpsertBatch(proctx, namespace, records); err != nil {
		return nil, err
	}

	return &models.IngestSummary{
		DocumentKey:     documentKey,
		PagesProcessed:  len(pages),
		ChunksCreated:   len(chunks),
		VectorsUploaded: len(records),
	}, nil
}

// embedChunks embeds chunks one at a time. A chunk that fails to embed is
// logged and skipped; the rest of the document still ships. The record ID
// is the chunk's content fingerprint, so identical text maps to a stable ID
// across runs.
func (i *DocumentIngestor) embedChunks(ctx context.Context, documentKey string, chunks []models.Chunk) []models.VectorRecord {
	records := make([]models.VectorRecord, 0, len(chunks))
	for _, ch := range chunks {
		vec, err := i.embedder.EmbedText(ctx, ch.Text)
		if err != nil {
			i.log.Warn("chunk embedding failed, skipping",
				zap.String("key", documentKey),
				zap.Int("page", ch.PageNumber),
				zap.Int("chunk", ch.ChunkIndex),
				zap.Error(err))
			continue
		}
		text := ch.TruncatedText
		if text == "" {
			text = ch.Text
		}
		records = append(records, models.VectorRecord{
			ID:         fingerprint.Hash(ch.Text),
			Values:     vec,
			Text:       text,
			PageNumber: ch.PageNumber,
			SourceKey:  documentKey,
		})
	}
	return records
}
