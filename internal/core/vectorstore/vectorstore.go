// Package vectorstore owns the namespaced vector index. Each document's
// vectors live in exactly one namespace; all operations are scoped to a
// single namespace, which is what makes concurrent work on different
// documents structurally independent.
package vectorstore

import (
	"context"

	"github.com/docquery-ai/docquery/internal/models"
)

// Filter narrows a similarity query by record metadata. The zero value
// matches everything.
type Filter struct {
	SourceKey string
}

// Store is a vector index backend. Implementations must be safe for
// concurrent use by multiple in-flight namespace operations.
type Store interface {
	// Reset deletes every record in a namespace. A namespace that does not
	// exist yet counts as success.
	Reset(ctx context.Context, namespace string) error

	// Upsert writes records into a namespace, overwriting on identical IDs.
	Upsert(ctx context.Context, namespace string, records []models.VectorRecord) error

	// Query returns up to topK matches ordered by descending score. An empty
	// namespace yields an empty slice, not an error.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter Filter) ([]models.Match, error)

	Close() error
}
