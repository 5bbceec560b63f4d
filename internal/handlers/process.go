package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/invoicer/invoicer/internal/client"
	"github.com/invoicer/invoicer/internal/providers"
)

func (h *Handler) HandleProcessInvoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// leave room for multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			h.writeError(w, "No invoice image provided", http.StatusBadRequest)
			return
		}
		h.writeError(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(client.FieldName)
	if err != nil {
		// an empty file input arrives as a plain value with no filename
		if _, ok := r.MultipartForm.Value[client.FieldName]; ok {
			h.writeError(w, "No selected file", http.StatusBadRequest)
			return
		}
		h.writeError(w, "No invoice image provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.writeError(w, "No selected file", http.StatusBadRequest)
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if int64(len(fileData)) > h.maxUploadBytes {
		h.writeError(w, h.tooLargeMessage(), http.StatusBadRequest)
		return
	}

	response, err := h.extractor.ExtractInvoice(r.Context(), fileData, header.Filename)
	if err != nil {
		message, code := describeError(err)
		h.writeError(w, message, code)
		return
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %dMB)", h.maxUploadBytes/(1024*1024))
}

// describeError maps an extraction failure to a user facing message and
// status code
func describeError(err error) (string, int) {
	var perr *providers.Error
	if !errors.As(err, &perr) {
		return fmt.Sprintf("An unexpected error occurred: %v", err), http.StatusInternalServerError
	}

	switch perr.Kind {
	case providers.KindAuthentication:
		return fmt.Sprintf("%s Authentication Error: Your API key may be invalid or revoked. Details: %v", perr.Provider, perr.Err), http.StatusUnauthorized
	case providers.KindRateLimit:
		return fmt.Sprintf("%s Rate Limit Error: You have exceeded your usage quota. Details: %v", perr.Provider, perr.Err), http.StatusTooManyRequests
	case providers.KindInvalidRequest:
		return fmt.Sprintf("%s Invalid Request Error: %v", perr.Provider, perr.Err), http.StatusBadRequest
	case providers.KindConnection:
		return fmt.Sprintf("%s API Connection Error: Could not connect to %s. Details: %v", perr.Provider, perr.Provider, perr.Err), http.StatusInternalServerError
	default:
		return fmt.Sprintf("%s API Error: %v", perr.Provider, perr.Err), http.StatusInternalServerError
	}
}
