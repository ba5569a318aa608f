package services

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/core/ingestion_engine"
)

type DocumentService struct {
	storage  core.ObjectClient
	ingestor ingestion_engine.Ingestor
}

func NewDocumentService(storage core.ObjectClient, ingestor ingestion_engine.Ingestor) *DocumentService {
	return &DocumentService{storage: storage, ingestor: ingestor}
}

// UploadAndIngest stores the file in object storage and schedules it for
// background ingestion. The returned key is the document's identity for
// every later call.
func (s *DocumentService) UploadAndIngest(ctx context.Context, filename, contentType string, data []byte) (key, url string, err error) {
	key = s.objectKey(filename)

	url, err = s.storage.UploadFile(ctx, key, data, contentType)
	if err != nil {
		return "", "", err
	}

	s.ingestor.Enqueue(key)
	return key, url, nil
}

// Ingest schedules an already-stored object for (re-)ingestion.
func (s *DocumentService) Ingest(documentKey string) {
	s.ingestor.Enqueue(documentKey)
}

// objectKey creates a consistent S3 key layout. The filename is reduced to
// its base to block path traversal.
func (s *DocumentService) objectKey(filename string) string {
	filename = filepath.Base(strings.TrimSpace(filename))
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("documents", uuid.NewString(), filename)
}
