package core

import (
	"context"
	"io"

	"github.com/docquery-ai/docquery/internal/models"
)

// EmbeddingProvider converts text into a fixed-length vector. One outbound
// call per invocation; callers own batching and retry policy.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// LLMProvider generates an answer from a system prompt and user prompt.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be replaced with MinIO, GCP, etc.
type ObjectClient interface {
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, key string) error
	GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error)

	// DownloadToTemp copies the object to a uniquely named local file and
	// returns its path. The caller owns removal.
	DownloadToTemp(ctx context.Context, key string) (path string, err error)
}

// DocumentExtractor turns a local copy of a document into ordered pages.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string, sourceKey string) ([]models.Page, error)
}

// ContextProvider assembles a retrieval context for a question about one
// document. An empty string with a nil error means nothing relevant was
// found; callers branch on that rather than on an error.
type ContextProvider interface {
	GetContext(ctx context.Context, query string, documentKey string) (string, error)
}
