package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/models"
)

// DefaultBatchSize is the largest batch one upsert call may carry.
const DefaultBatchSize = 100

// Gateway is the pipeline's face of the vector index: it opens the backend
// lazily through a Provider, splits upserts into bounded batches, and wraps
// failures in the pipeline taxonomy.
type Gateway struct {
	provider  *Provider
	batchSize int
	log       *zap.Logger
}

func NewGateway(provider *Provider, batchSize int, log *zap.Logger) *Gateway {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Gateway{provider: provider, batchSize: batchSize, log: log}
}

// ResetNamespace clears a document's namespace before re-ingestion.
func (g *Gateway) ResetNamespace(ctx context.Context, namespace string) error {
	store, err := g.provider.Get(ctx)
	if err != nil {
		return err
	}
	if err := store.Reset(ctx, namespace); err != nil {
		return fmt.Errorf("reset namespace %q: %w", namespace, err)
	}
	return nil
}

// UpsertBatch writes records in order, at most batchSize per call. A failed
// batch stops the walk and reports its offset; batches already written stay
// written, so callers must treat the error as partial success, not a no-op.
func (g *Gateway) UpsertBatch(ctx context.Context, namespace string, records []models.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	store, err := g.provider.Get(ctx)
	if err != nil {
		return err
	}

	for offset := 0; offset < len(records); offset += g.batchSize {
		end := offset + g.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[offset:end]
		if err := store.Upsert(ctx, namespace, batch); err != nil {
			return &core.UpsertError{Offset: offset, Count: len(batch), Err: err}
		}
		g.log.Debug("batch upserted",
			zap.String("namespace", namespace),
			zap.Int("offset", offset),
			zap.Int("count", len(batch)))
	}
	return nil
}

// Query returns up to topK matches by descending score. Empty namespaces
// return an empty slice; only upstream failures are errors.
func (g *Gateway) Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]models.Match, error) {
	store, err := g.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := store.Query(ctx, namespace, vector, topK, filter)
	if err != nil {
		return nil, &core.QueryError{Namespace: namespace, Err: err}
	}
	return matches, nil
}
