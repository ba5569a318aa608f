package extraction

import (
	"context"
	"fmt"

	"code.sajari.com/docconv"

	"github.com/docquery-ai/docquery/internal/models"
)

// DocconvStrategy is the primary parser. docconv picks the converter from the
// file extension (PDF, DOCX, HTML, ...) and, for PDFs, keeps pdftotext's form
// feeds between pages so pagination stays faithful.
type DocconvStrategy struct{}

func (s *DocconvStrategy) Name() string { return "docconv" }

func (s *DocconvStrategy) Extract(ctx context.Context, path, sourceKey string) ([]models.Page, error) {
	type result struct {
		res *docconv.Response
		err error
	}

	// docconv has no context support; run it aside so the chain's timeout
	// still applies to a wedged parse.
	ch := make(chan result, 1)
	go func() {
		res, err := docconv.ConvertPath(path)
		ch <- result{res: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("convert: %w", r.err)
		}
		return paginate(r.res.Body, sourceKey)
	}
}
