package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/core/vectorstore"
	"github.com/docquery-ai/docquery/internal/models"
)

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

// cannedStore hands back preset matches so tests control scores directly.
type cannedStore struct {
	*vectorstore.MemoryStore
	matches   []models.Match
	queryErr  error
	namespace string
	filter    vectorstore.Filter
}

func (s *cannedStore) Query(ctx context.Context, namespace string, vector []float32, topK int, filter vectorstore.Filter) ([]models.Match, error) {
	s.namespace = namespace
	s.filter = filter
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if topK < len(s.matches) {
		return s.matches[:topK], nil
	}
	return s.matches, nil
}

func newTestAssembler(t *testing.T, store vectorstore.Store, emb core.EmbeddingProvider, cfg Config) *Assembler {
	t.Helper()
	log := zaptest.NewLogger(t)
	gateway := vectorstore.NewGateway(vectorstore.NewStaticProvider(store), 0, log)
	return NewAssembler(emb, gateway, cfg, log)
}

func TestGetContextEmptyQuery(t *testing.T) {
	a := newTestAssembler(t, vectorstore.NewMemoryStore(), &fixedEmbedder{vec: []float32{1}}, Config{})

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := a.GetContext(context.Background(), q, "doc.pdf")
		assert.ErrorIs(t, err, core.ErrEmptyInput)
	}
}

func TestGetContextNoRelevantMatches(t *testing.T) {
	store := &cannedStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		matches: []models.Match{
			{Score: 0.60, Text: "weak one"},
			{Score: 0.74, Text: "just under"},
		},
	}
	a := newTestAssembler(t, store, &fixedEmbedder{vec: []float32{1}}, Config{})

	got, err := a.GetContext(context.Background(), "what is this about?", "doc.pdf")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetContextEmptyNamespace(t *testing.T) {
	a := newTestAssembler(t, vectorstore.NewMemoryStore(), &fixedEmbedder{vec: []float32{1}}, Config{})

	got, err := a.GetContext(context.Background(), "anything", "never-ingested.pdf")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetContextAssemblesOrderedContext(t *testing.T) {
	store := &cannedStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		matches: []models.Match{
			{Score: 0.80, Text: "second best"},
			{Score: 0.95, Text: "best chunk"},
			{Score: 0.50, Text: "irrelevant"},
			{Score: 0.76, Text: "third"},
		},
	}
	a := newTestAssembler(t, store, &fixedEmbedder{vec: []float32{1}}, Config{})

	got, err := a.GetContext(context.Background(), "question", "reports/q3.pdf")
	require.NoError(t, err)
	assert.Equal(t, "best chunk\n\nsecond best\n\nthird", got)
	assert.Equal(t, "reports_q3_pdf", store.namespace)
	assert.Equal(t, "reports/q3.pdf", store.filter.SourceKey)
}

func TestGetContextDedupesRepeatedText(t *testing.T) {
	store := &cannedStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		matches: []models.Match{
			{Score: 0.90, Text: "repeated passage"},
			{Score: 0.85, Text: "repeated passage"},
			{Score: 0.80, Text: "unique passage"},
		},
	}
	a := newTestAssembler(t, store, &fixedEmbedder{vec: []float32{1}}, Config{})

	got, err := a.GetContext(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "repeated passage\n\nunique passage", got)
}

func TestGetContextCapsLength(t *testing.T) {
	long := strings.Repeat("x", 2000)
	store := &cannedStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		matches: []models.Match{
			{Score: 0.95, Text: long + "a"},
			{Score: 0.90, Text: long + "b"},
		},
	}
	a := newTestAssembler(t, store, &fixedEmbedder{vec: []float32{1}}, Config{MaxContextChars: 3000})

	got, err := a.GetContext(context.Background(), "question", "doc.pdf")
	require.NoError(t, err)
	assert.Len(t, []rune(got), 3000)
	assert.True(t, strings.HasPrefix(got, long+"a"))
}

func TestGetContextEmbedderFailure(t *testing.T) {
	svcErr := &core.ServiceError{Status: 429, Message: "resource exhausted"}
	a := newTestAssembler(t, vectorstore.NewMemoryStore(), &fixedEmbedder{err: svcErr}, Config{})

	_, err := a.GetContext(context.Background(), "question", "doc.pdf")
	var got *core.ServiceError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 429, got.Status)
}

func TestGetContextQueryFailure(t *testing.T) {
	store := &cannedStore{
		MemoryStore: vectorstore.NewMemoryStore(),
		queryErr:    errors.New("index offline"),
	}
	a := newTestAssembler(t, store, &fixedEmbedder{vec: []float32{1}}, Config{})

	_, err := a.GetContext(context.Background(), "question", "doc.pdf")
	var qErr *core.QueryError
	require.ErrorAs(t, err, &qErr)
}
