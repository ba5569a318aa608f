package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/docquery-ai/docquery/internal/core"
)

// GeminiEmbedder turns text into embedding vectors via the Gemini API.
// One outbound call per EmbedText invocation; the ingestion pipeline calls
// it sequentially so a single failed chunk stays isolated.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiEmbedder{client: cl, modelName: modelName}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedText embeds a single text. Empty input fails fast with ErrEmptyInput,
// upstream failures surface as ServiceError with the upstream status, and a
// 2xx response without a vector is ErrMalformedResponse.
func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyInput
	}

	em := g.client.EmbeddingModel(g.modelName)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		if svcErr := upstreamError(err); svcErr != nil {
			return nil, svcErr
		}
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res == nil || res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, core.ErrMalformedResponse
	}
	return res.Embedding.Values, nil
}

// upstreamError maps transport errors onto the pipeline taxonomy. The Gemini
// client may speak REST (googleapi.Error) or gRPC (status codes) depending
// on configuration.
func upstreamError(err error) *core.ServiceError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &core.ServiceError{Status: gerr.Code, Message: gerr.Message}
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK && st.Code() != codes.Unknown {
		return &core.ServiceError{Status: httpStatus(st.Code()), Message: st.Message()}
	}
	return nil
}

func httpStatus(c codes.Code) int {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
