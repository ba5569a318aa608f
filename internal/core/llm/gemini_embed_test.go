package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/docquery-ai/docquery/internal/core"
)

func TestEmbedTextRejectsEmptyInput(t *testing.T) {
	g := &GeminiEmbedder{} // never reaches the client

	_, err := g.EmbedText(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrEmptyInput)

	_, err = g.EmbedText(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestUpstreamErrorMapsGoogleapi(t *testing.T) {
	err := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}

	svc := upstreamError(err)
	require.NotNil(t, svc)
	assert.Equal(t, http.StatusTooManyRequests, svc.Status)
	assert.Equal(t, "quota exceeded", svc.Message)
}

func TestUpstreamErrorMapsGRPCStatus(t *testing.T) {
	tests := []struct {
		code codes.Code
		want int
	}{
		{codes.ResourceExhausted, http.StatusTooManyRequests},
		{codes.InvalidArgument, http.StatusBadRequest},
		{codes.Unauthenticated, http.StatusUnauthorized},
		{codes.Unavailable, http.StatusServiceUnavailable},
		{codes.DeadlineExceeded, http.StatusGatewayTimeout},
		{codes.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		svc := upstreamError(status.Error(tt.code, "upstream said no"))
		require.NotNil(t, svc, "code %v", tt.code)
		assert.Equal(t, tt.want, svc.Status, "code %v", tt.code)
	}
}

func TestUpstreamErrorPassesThroughPlainErrors(t *testing.T) {
	assert.Nil(t, upstreamError(errors.New("dial tcp: connection refused")))
}
