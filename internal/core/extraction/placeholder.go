package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/docquery-ai/docquery/internal/models"
)

// PlaceholderText is indexed in place of content we could not read, so the
// assistant can tell the user the document was unprocessable instead of
// pretending it is empty.
const PlaceholderText = "This document could not be processed. " +
	"The file may be corrupted, encrypted, or in an unsupported format."

// PlaceholderStrategy is the last resort. It accepts any non-empty file and
// reports it as unprocessable; a zero-byte file still fails, which makes the
// whole chain fail for empty uploads.
type PlaceholderStrategy struct{}

func (s *PlaceholderStrategy) Name() string { return "placeholder" }

func (s *PlaceholderStrategy) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() == 0 {
		return nil, errors.New("empty document")
	}
	return []models.Page{{
		PageNumber: 1,
		Text:       PlaceholderText,
		SourceKey:  sourceKey,
		PageCount:  1,
	}}, nil
}
