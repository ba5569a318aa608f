// Package extraction turns a local document file into ordered pages of text.
//
// Extraction is a chain of strategies tried in priority order: the structured
// docconv parser first, a plain-text heuristic second, and a placeholder of
// last resort that reports the document as unprocessable instead of failing.
// The chain only gives up when every strategy has.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/models"
)

const DefaultTimeout = 30 * time.Second

// Strategy is one way of reading a document. A strategy either succeeds with
// at least one page or fails; it never silently returns nothing.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string, sourceKey string) ([]models.Page, error)
}

// Extractor runs strategies in order under a per-strategy timeout.
type Extractor struct {
	strategies []Strategy
	timeout    time.Duration
	log        *zap.Logger
}

var _ core.DocumentExtractor = (*Extractor)(nil)

func NewExtractor(log *zap.Logger, timeout time.Duration, strategies ...Strategy) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{strategies: strategies, timeout: timeout, log: log}
}

// Default wires the production chain: docconv, plain text, placeholder.
func Default(log *zap.Logger, timeout time.Duration) *Extractor {
	return NewExtractor(log, timeout,
		&DocconvStrategy{},
		&PlainTextStrategy{},
		&PlaceholderStrategy{},
	)
}

// Extract tries each strategy until one produces pages. When all are
// exhausted it returns ErrExtractionFailed carrying every strategy's reason,
// so callers can tell "empty/unreadable" apart from "corrupted/encrypted".
func (e *Extractor) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	var failures []error
	for _, s := range e.strategies {
		sctx, cancel := context.WithTimeout(ctx, e.timeout)
		pages, err := s.Extract(sctx, path, sourceKey)
		cancel()

		if err != nil {
			e.log.Warn("extraction strategy failed",
				zap.String("strategy", s.Name()),
				zap.String("source_key", sourceKey),
				zap.Error(err))
			failures = append(failures, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		if len(pages) == 0 {
			failures = append(failures, fmt.Errorf("%s: produced no pages", s.Name()))
			continue
		}
		e.log.Info("document extracted",
			zap.String("strategy", s.Name()),
			zap.String("source_key", sourceKey),
			zap.Int("pages", len(pages)))
		return pages, nil
	}
	return nil, fmt.Errorf("%w: %w", core.ErrExtractionFailed, errors.Join(failures...))
}

// approxPageChars is the assumed page length when the source format exposes
// no page boundaries of its own.
const approxPageChars = 1800

// paginate splits extracted body text into pages. Form feeds mark real page
// boundaries when the underlying converter preserves them; otherwise the text
// is split proportionally over an estimated page count. Non-empty input
// always yields at least one page.
func paginate(body, sourceKey string) ([]models.Page, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("extracted empty text")
	}

	if strings.Contains(body, "\f") {
		segments := strings.Split(body, "\f")
		var pages []models.Page
		for i, seg := range segments {
			if strings.TrimSpace(seg) == "" {
				continue
			}
			pages = append(pages, models.Page{
				PageNumber: i + 1,
				Text:       seg,
				SourceKey:  sourceKey,
				PageCount:  len(segments),
			})
		}
		if len(pages) > 0 {
			return pages, nil
		}
		return nil, errors.New("extracted only blank pages")
	}

	runes := []rune(body)
	count := (len(runes) + approxPageChars - 1) / approxPageChars
	if count < 1 {
		count = 1
	}
	per := (len(runes) + count - 1) / count

	pages := make([]models.Page, 0, count)
	for i := 0; i < count; i++ {
		lo := i * per
		hi := lo + per
		if hi > len(runes) {
			hi = len(runes)
		}
		pages = append(pages, models.Page{
			PageNumber: i + 1,
			Text:       string(runes[lo:hi]),
			SourceKey:  sourceKey,
			PageCount:  count,
		})
	}
	return pages, nil
}
