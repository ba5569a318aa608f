package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/services"
)

type ChatHandler struct {
	contexts core.ContextProvider
	chat     *services.ChatService
	log      *zap.Logger
}

func NewChatHandler(contexts core.ContextProvider, chat *services.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{contexts: contexts, chat: chat, log: log}
}

type ChatRequest struct {
	DocumentKey string `json:"document_key"`
	Query       string `json:"query"`
}

// GetContext returns the raw retrieval context for a question, without
// running the model. Useful for debugging relevance and for callers that
// bring their own prompting.
func (h *ChatHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentKey == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	docContext, err := h.contexts.GetContext(r.Context(), req.Query, req.DocumentKey)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"context": docContext,
		"found":   docContext != "",
	})
}

// QueryDocument answers a question about one document.
func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentKey == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	answer, err := h.chat.Query(r.Context(), req.Query, req.DocumentKey)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"answer": answer,
	})
}

// writeError maps the pipeline taxonomy onto HTTP statuses. Upstream
// service errors keep their status so 429s surface as 429s.
func (h *ChatHandler) writeError(w http.ResponseWriter, err error) {
	var svcErr *core.ServiceError
	switch {
	case errors.Is(err, core.ErrEmptyInput):
		http.Error(w, "query must not be empty", http.StatusBadRequest)
	case errors.As(err, &svcErr):
		h.log.Warn("upstream service error", zap.Int("status", svcErr.Status), zap.Error(err))
		http.Error(w, svcErr.Message, svcErr.Status)
	default:
		h.log.Error("request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
