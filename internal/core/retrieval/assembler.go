// Package retrieval assembles the context window handed to the prompting
// layer: embed the question, search the document's namespace, and reduce the
// matches to one bounded text blob.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/sanitize"
	"github.com/docquery-ai/docquery/internal/core/vectorstore"
)

const (
	DefaultTopK            = 5
	DefaultScoreThreshold  = 0.75
	DefaultMaxContextChars = 3000

	// separator joins retrieved chunks so the model sees their boundaries.
	separator = "\n\n"
)

type Config struct {
	TopK            int
	ScoreThreshold  float64
	MaxContextChars int
}

type Assembler struct {
	embedder core.EmbeddingProvider
	gateway  *vectorstore.Gateway
	cfg      Config
	log      *zap.Logger
}

var _ core.ContextProvider = (*Assembler)(nil)

func NewAssembler(embedder core.EmbeddingProvider, gateway *vectorstore.Gateway, cfg Config, log *zap.Logger) *Assembler {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = DefaultScoreThreshold
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultMaxContextChars
	}
	return &Assembler{embedder: embedder, gateway: gateway, cfg: cfg, log: log}
}

// GetContext returns the retrieval context for a question about one
// document. "Nothing relevant" is not an error: the empty string is the
// sentinel callers branch on. Errors mean the embedding service or the
// vector index actually failed.
func (a *Assembler) GetContext(ctx context.Context, query, documentKey string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", core.ErrEmptyInput
	}

	vec, err := a.embedder.EmbedText(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	namespace := sanitize.NamespaceKey(documentKey)

	// The namespace scopes the search; the source key filter also excludes
	// any record that was written under the wrong namespace.
	matches, err := a.gateway.Query(ctx, namespace, vec, a.cfg.TopK, vectorstore.Filter{SourceKey: documentKey})
	if err != nil {
		return "", err
	}

	kept := matches[:0:0]
	for _, m := range matches {
		if m.Score >= a.cfg.ScoreThreshold {
			kept = append(kept, m)
		}
	}

	// Drop repeated texts, keeping the first occurrence, so near-duplicate
	// chunks don't burn the context budget.
	seen := make(map[string]struct{}, len(kept))
	deduped := kept[:0]
	for _, m := range kept {
		if _, dup := seen[m.Text]; dup {
			continue
		}
		seen[m.Text] = struct{}{}
		deduped = append(deduped, m)
	}

	sort.SliceStable(deduped, func(i, j int) bool { return deduped[i].Score > deduped[j].Score })

	if len(deduped) == 0 {
		a.log.Debug("no relevant context",
			zap.String("namespace", namespace),
			zap.Int("candidates", len(matches)))
		return "", nil
	}

	parts := make([]string, len(deduped))
	for i, m := range deduped {
		parts[i] = m.Text
	}
	return capRunes(strings.Join(parts, separator), a.cfg.MaxContextChars), nil
}

// capRunes truncates deterministically at a character count. Mid-sentence
// cuts are fine here; the budget matters more than prose.
func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
