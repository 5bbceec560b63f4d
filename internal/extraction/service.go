package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/invoicer/invoicer/internal/models"
	"github.com/invoicer/invoicer/internal/providers"
)

const (
	temperature = 0.1
	maxTokens   = 4000
)

// Service turns invoice images into TSV using a vision provider. Without a
// provider it answers with simulated data.
type Service struct {
	provider     providers.Provider
	providerName string
	model        string
}

// NewService creates a service. provider may be nil, in which case
// providerName is used to explain the simulated response.
func NewService(provider providers.Provider, providerName, model string) *Service {
	if provider != nil {
		providerName = provider.Name()
	}
	if model == "" {
		model = DefaultModel(providerName)
	}
	return &Service{
		provider:     provider,
		providerName: providerName,
		model:        model,
	}
}

// Simulated reports whether responses are fabricated
func (s *Service) Simulated() bool {
	return s.provider == nil
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "llava"
	case "gemini":
		return "gemini-2.5-pro"
	default:
		return ""
	}
}

// ExtractInvoice extracts the invoice TSV from an uploaded image
func (s *Service) ExtractInvoice(ctx context.Context, data []byte, filename string) (*models.ProcessResponse, error) {
	if s.provider == nil {
		slog.Warn("Provider not configured, returning simulated data", "provider", s.providerName, "filename", filename)
		return &models.ProcessResponse{
			InvoiceTSV:      simulatedTSV(),
			NoteFromBackend: fmt.Sprintf("%s API key not configured. Displaying simulated TSV data.", s.providerName),
		}, nil
	}

	mimeType := MIMETypeForFilename(filename)
	image, mimeType, err := PrepareImage(data, mimeType)
	if err != nil {
		return nil, &providers.Error{Provider: s.providerName, Kind: providers.KindInvalidRequest, Err: err}
	}

	slog.Info("Extracting invoice", "provider", s.providerName, "model", s.model, "filename", filename, "mime_type", mimeType)

	raw, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Prompt:      buildInvoicePrompt(),
		Image:       image,
		MIMEType:    mimeType,
	})
	if err != nil {
		return nil, err
	}

	tsv := CleanTSV(raw)
	slog.Info("Extracted invoice", "provider", s.providerName, "rows", strings.Count(tsv, "\n")+1, "length", len(tsv))
	return &models.ProcessResponse{InvoiceTSV: tsv}, nil
}

// CleanTSV strips surrounding whitespace and Markdown code fences from a
// model response
func CleanTSV(response string) string {
	response = strings.TrimSpace(response)
	if strings.HasPrefix(response, "```") {
		if idx := strings.Index(response, "\n"); idx != -1 {
			response = response[idx+1:]
		} else {
			response = strings.TrimPrefix(response, "```")
		}
		response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	}
	return strings.TrimSpace(response)
}

func simulatedTSV() string {
	rows := [][]string{
		Columns,
		{"SIM_NK_10.50", "", "SIM_NK_9.25", "SIM_NK_P1", "SIM_NK_CAT1", "SIM_NK_BRAND1", "SIM_NK_Prod1", "SIM_NK_1", "SIM_NK_gr", "SIM_NK_20231101", "SIM_NK_20231102", "SIM_NK_20231130", "SIM_NK_Supp1", "SIM_NK_INV000", "SIM_NK_Note1", "", "", "", ""},
		{"SIM_NK_100.00", "", "SIM_NK_90.00", "SIM_NK_A1", "SIM_NK_WINE", "SIM_NK_BRAND_A1", "SIM_NK_AlcName1", "SIM_NK_1", "SIM_NK_BT", "SIM_NK_20231101", "SIM_NK_20231102", "SIM_NK_20231130", "SIM_NK_Supp1", "SIM_NK_INV000", "SIM_NK_NoteAlc1", "SIM_NK_12.5", "SIM_NK_2022", "SIM_NK_Region", "SIM_NK_700ml"},
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n")
}
