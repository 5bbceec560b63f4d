package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/invoicer/invoicer/internal/models"
)

// Extractor produces the invoice response for an uploaded image
type Extractor interface {
	ExtractInvoice(ctx context.Context, data []byte, filename string) (*models.ProcessResponse, error)
}

type Handler struct {
	extractor      Extractor
	maxUploadBytes int64
}

func New(extractor Extractor, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 * 1024 * 1024
	}
	return &Handler{
		extractor:      extractor,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the backend's routes wrapped with CORS handling
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process-invoice", h.HandleProcessInvoice)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return withCORS(mux)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	h.writeJSON(w, models.ProcessResponse{Error: message}, code)
}

// withCORS lets a front-end served from another origin call the API
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
