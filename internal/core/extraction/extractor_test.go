package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/models"
)

type stubStrategy struct {
	name  string
	pages []models.Page
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	s.calls++
	return s.pages, s.err
}

type blockingStrategy struct{}

func (s *blockingStrategy) Name() string { return "blocking" }

func (s *blockingStrategy) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractFirstStrategyWins(t *testing.T) {
	first := &stubStrategy{name: "first", pages: []models.Page{{PageNumber: 1, Text: "hello"}}}
	second := &stubStrategy{name: "second"}
	e := NewExtractor(zaptest.NewLogger(t), time.Second, first, second)

	pages, err := e.Extract(context.Background(), "ignored", "key")
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 0, second.calls, "later strategies must not run after a success")
}

func TestExtractFallsThroughOnFailure(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("encrypted")}
	second := &stubStrategy{name: "second", pages: []models.Page{{PageNumber: 1, Text: "fallback"}}}
	e := NewExtractor(zaptest.NewLogger(t), time.Second, first, second)

	pages, err := e.Extract(context.Background(), "ignored", "key")
	require.NoError(t, err)
	assert.Equal(t, "fallback", pages[0].Text)
	assert.Equal(t, 1, first.calls)
}

func TestExtractAllStrategiesExhausted(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New("encrypted")}
	second := &stubStrategy{name: "second", err: errors.New("binary content")}
	e := NewExtractor(zaptest.NewLogger(t), time.Second, first, second)

	_, err := e.Extract(context.Background(), "ignored", "key")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExtractionFailed)
	// The reasons survive for the caller's diagnostics.
	assert.Contains(t, err.Error(), "encrypted")
	assert.Contains(t, err.Error(), "binary content")
}

func TestExtractStrategyTimeout(t *testing.T) {
	second := &stubStrategy{name: "second", pages: []models.Page{{PageNumber: 1, Text: "rescued"}}}
	e := NewExtractor(zaptest.NewLogger(t), 20*time.Millisecond, &blockingStrategy{}, second)

	pages, err := e.Extract(context.Background(), "ignored", "key")
	require.NoError(t, err)
	assert.Equal(t, "rescued", pages[0].Text)
}

func TestPaginateFormFeeds(t *testing.T) {
	body := "page one text\fpage two text\f\fpage four text"
	pages, err := paginate(body, "k")
	require.NoError(t, err)
	require.Len(t, pages, 3) // blank segment dropped
	assert.Equal(t, 1, pages[0].PageNumber)
	assert.Equal(t, 2, pages[1].PageNumber)
	assert.Equal(t, 4, pages[2].PageNumber)
	assert.Contains(t, pages[1].Text, "page two")
}

func TestPaginateProportional(t *testing.T) {
	body := strings.Repeat("x", approxPageChars*3)
	pages, err := paginate(body, "k")
	require.NoError(t, err)
	assert.Len(t, pages, 3)

	var total int
	for i, p := range pages {
		assert.Equal(t, i+1, p.PageNumber)
		assert.Equal(t, 3, p.PageCount)
		total += len(p.Text)
	}
	assert.Equal(t, len(body), total)
}

func TestPaginateNeverZeroPages(t *testing.T) {
	pages, err := paginate("tiny", "k")
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	_, err = paginate("   ", "k")
	assert.Error(t, err)
}

func TestPlainTextStrategy(t *testing.T) {
	s := &PlainTextStrategy{}

	path := writeTemp(t, "notes.txt", "plain readable text")
	pages, err := s.Extract(context.Background(), path, "k")
	require.NoError(t, err)
	assert.Equal(t, "plain readable text", pages[0].Text)

	bin := writeTemp(t, "blob.bin", strings.Repeat("\x00\x01", 100))
	_, err = s.Extract(context.Background(), bin, "k")
	assert.Error(t, err)

	empty := writeTemp(t, "empty.txt", "")
	_, err = s.Extract(context.Background(), empty, "k")
	assert.Error(t, err)
}

func TestPlaceholderStrategy(t *testing.T) {
	s := &PlaceholderStrategy{}

	path := writeTemp(t, "scrambled.pdf", "\x25PDF garbage")
	pages, err := s.Extract(context.Background(), path, "k")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, PlaceholderText, pages[0].Text)

	// Zero-byte files must not get a placeholder: the chain as a whole
	// reports extraction failure for empty uploads.
	empty := writeTemp(t, "empty.pdf", "")
	_, err = s.Extract(context.Background(), empty, "k")
	assert.Error(t, err)
}

func TestDefaultChainEmptyFileFails(t *testing.T) {
	e := Default(zaptest.NewLogger(t), time.Second)
	empty := writeTemp(t, "empty.txt", "")
	_, err := e.Extract(context.Background(), empty, "k")
	assert.ErrorIs(t, err, core.ErrExtractionFailed)
}
