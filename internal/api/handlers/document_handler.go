package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/services"
)

const maxUploadBytes = 52 << 20

type DocumentHandler struct {
	documents *services.DocumentService
	log       *zap.Logger
}

func NewDocumentHandler(documents *services.DocumentService, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, log: log}
}

// UploadDocument handles file upload and schedules background ingestion.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "invalid file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	key, url, err := h.documents.UploadAndIngest(uploadctx, header.Filename, contentType, data)
	if err != nil {
		h.log.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		http.Error(w, fmt.Sprintf("upload failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"document_key": key,
		"storage_url":  url,
		"status":       "queued",
	})
}

type IngestRequest struct {
	DocumentKey string `json:"document_key"`
}

// IngestDocument schedules an already-uploaded object for (re-)ingestion.
func (h *DocumentHandler) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DocumentKey == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	h.documents.Ingest(req.DocumentKey)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"document_key": req.DocumentKey,
		"status":       "queued",
	})
}
