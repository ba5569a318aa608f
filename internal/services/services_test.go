package services

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docquery-ai/docquery/internal/models"
)

type stubStorage struct {
	lastKey  string
	lastType string
	err      error
}

func (s *stubStorage) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.lastKey = key
	s.lastType = contentType
	return "https://bucket.example.com/" + key, nil
}

func (s *stubStorage) DeleteFile(ctx context.Context, key string) error { return nil }
func (s *stubStorage) GetObjectReader(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}
func (s *stubStorage) DownloadToTemp(ctx context.Context, key string) (string, error) {
	return "", errors.New("not used")
}

type stubIngestor struct {
	enqueued []string
}

func (s *stubIngestor) Start(ctx context.Context, numWorkers int) {}
func (s *stubIngestor) Enqueue(documentKey string)                { s.enqueued = append(s.enqueued, documentKey) }
func (s *stubIngestor) ProcessOne(ctx context.Context, documentKey string) (*models.IngestSummary, error) {
	return nil, errors.New("not used")
}

func TestUploadAndIngest(t *testing.T) {
	storage := &stubStorage{}
	ing := &stubIngestor{}
	svc := NewDocumentService(storage, ing)

	key, url, err := svc.UploadAndIngest(context.Background(), "../etc/Q3 report.pdf", "application/pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)

	// documents/<uuid>/<sanitized base name>
	assert.Regexp(t, regexp.MustCompile(`^documents/[0-9a-f-]{36}/Q3_report\.pdf$`), key)
	assert.False(t, strings.Contains(key, ".."))
	assert.Equal(t, key, storage.lastKey)
	assert.Equal(t, "https://bucket.example.com/"+key, url)
	assert.Equal(t, []string{key}, ing.enqueued)
}

func TestUploadFailureDoesNotEnqueue(t *testing.T) {
	ing := &stubIngestor{}
	svc := NewDocumentService(&stubStorage{err: errors.New("bucket gone")}, ing)

	_, _, err := svc.UploadAndIngest(context.Background(), "doc.pdf", "application/pdf", nil)
	require.Error(t, err)
	assert.Empty(t, ing.enqueued)
}

type stubContexts struct {
	context string
	err     error
}

func (s *stubContexts) GetContext(ctx context.Context, query, documentKey string) (string, error) {
	return s.context, s.err
}

type recordingLLM struct {
	system string
	user   string
}

func (l *recordingLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	l.system = systemPrompt
	l.user = userPrompt
	return "an answer", nil
}

func TestChatQueryGrounded(t *testing.T) {
	llm := &recordingLLM{}
	svc := NewChatService(&stubContexts{context: "relevant passage"}, llm)

	answer, err := svc.Query(context.Background(), "what is covered?", "documents/x/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "an answer", answer)
	assert.Equal(t, groundedSystemPrompt, llm.system)
	assert.Contains(t, llm.user, "relevant passage")
	assert.Contains(t, llm.user, "what is covered?")
}

func TestChatQueryWithoutContext(t *testing.T) {
	llm := &recordingLLM{}
	svc := NewChatService(&stubContexts{}, llm)

	_, err := svc.Query(context.Background(), "anything", "documents/x/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, ungroundedSystemPrompt, llm.system)
	assert.NotContains(t, llm.user, "Context:")
}

func TestChatQueryContextFailure(t *testing.T) {
	svc := NewChatService(&stubContexts{err: errors.New("index offline")}, &recordingLLM{})

	_, err := svc.Query(context.Background(), "anything", "documents/x/doc.pdf")
	require.Error(t, err)
}
