package ingestion_engine

import (
	"context"

	"github.com/docquery-ai/docquery/internal/models"
)

type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(documentKey string)
	ProcessOne(ctx context.Context, documentKey string) (*models.IngestSummary, error)
}
