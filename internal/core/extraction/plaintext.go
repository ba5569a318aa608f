package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/docquery-ai/docquery/internal/models"
)

// maxBinaryRatio is the share of non-text bytes above which a file is
// rejected as binary rather than treated as readable text.
const maxBinaryRatio = 0.05

// PlainTextStrategy reads the file as UTF-8 text. It is the fallback for
// documents the structured parser rejects but that are really just text with
// an unexpected extension.
type PlainTextStrategy struct{}

func (s *PlainTextStrategy) Name() string { return "plaintext" }

func (s *PlainTextStrategy) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("not valid utf-8 text")
	}
	if binary := binaryRatio(data); binary > maxBinaryRatio {
		return nil, fmt.Errorf("binary content (%.0f%% non-text bytes)", binary*100)
	}
	return paginate(string(data), sourceKey)
}

func binaryRatio(data []byte) float64 {
	var n int
	for _, b := range data {
		if b < 0x09 || (b > 0x0d && b < 0x20) || b == 0x7f {
			n++
		}
	}
	return float64(n) / float64(len(data))
}
