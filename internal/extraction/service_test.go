package extraction

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/invoicer/invoicer/internal/providers"
)

type stubProvider struct {
	response string
	err      error
	got      providers.Config
}

func (p *stubProvider) Name() string { return "Stub" }

func (p *stubProvider) ExtractText(_ context.Context, cfg providers.Config) (string, error) {
	p.got = cfg
	return p.response, p.err
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestExtractInvoice(t *testing.T) {
	provider := &stubProvider{response: "```tsv\nA\tB\n1\t2\n```\n"}
	svc := NewService(provider, "", "vision-model")

	resp, err := svc.ExtractInvoice(context.Background(), pngOf(t, 10, 10), "scan.png")
	if err != nil {
		t.Fatalf("ExtractInvoice() error = %v", err)
	}

	if resp.InvoiceTSV != "A\tB\n1\t2" {
		t.Errorf("Expected cleaned TSV, got %q", resp.InvoiceTSV)
	}
	if resp.NoteFromBackend != "" {
		t.Errorf("Expected no note, got %q", resp.NoteFromBackend)
	}
	if provider.got.Model != "vision-model" || provider.got.MIMEType != "image/png" || provider.got.MaxTokens != 4000 {
		t.Errorf("Unexpected provider config %+v", provider.got)
	}
	if !strings.Contains(provider.got.Prompt, strings.Join(Columns, "\t")) {
		t.Errorf("Expected prompt to carry the header row")
	}
	if svc.Simulated() {
		t.Errorf("Expected live service")
	}
}

func TestExtractInvoiceSimulated(t *testing.T) {
	svc := NewService(nil, "OpenAI", "")

	resp, err := svc.ExtractInvoice(context.Background(), []byte("anything"), "scan.jpg")
	if err != nil {
		t.Fatalf("ExtractInvoice() error = %v", err)
	}

	if resp.NoteFromBackend != "OpenAI API key not configured. Displaying simulated TSV data." {
		t.Errorf("Unexpected note %q", resp.NoteFromBackend)
	}
	lines := strings.Split(resp.InvoiceTSV, "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and two rows, got %d lines", len(lines))
	}
	for i, line := range lines {
		if cols := strings.Count(line, "\t") + 1; cols != len(Columns) {
			t.Errorf("Line %d: expected %d columns, got %d", i, len(Columns), cols)
		}
	}
}

func TestExtractInvoicePassesProviderErrors(t *testing.T) {
	perr := &providers.Error{Provider: "Stub", Kind: providers.KindRateLimit, Err: errors.New("slow down")}
	svc := NewService(&stubProvider{err: perr}, "", "m")

	_, err := svc.ExtractInvoice(context.Background(), pngOf(t, 4, 4), "scan.png")
	if !errors.Is(err, perr) {
		t.Errorf("Expected provider error, got %v", err)
	}
}

func TestCleanTSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "A\tB", "A\tB"},
		{"whitespace", "\n  A\tB\n\n", "A\tB"},
		{"fenced", "```\nA\tB\n```", "A\tB"},
		{"fenced with language", "```tsv\nA\tB\n1\t2\n```", "A\tB\n1\t2"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTSV(tt.in); got != tt.want {
				t.Errorf("CleanTSV(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMIMETypeForFilename(t *testing.T) {
	tests := map[string]string{
		"a.png":   "image/png",
		"a.PNG":   "image/png",
		"a.gif":   "image/gif",
		"a.webp":  "image/webp",
		"a.heic":  "image/heic",
		"a.jpeg":  "image/jpeg",
		"a.jpg":   "image/jpeg",
		"invoice": "image/jpeg",
	}
	for filename, want := range tests {
		if got := MIMETypeForFilename(filename); got != want {
			t.Errorf("MIMETypeForFilename(%q) = %q, want %q", filename, got, want)
		}
	}
}

func TestPrepareImage(t *testing.T) {
	t.Run("small images pass through", func(t *testing.T) {
		data := pngOf(t, 100, 50)
		out, mimeType, err := PrepareImage(data, "image/png")
		if err != nil {
			t.Fatalf("PrepareImage() error = %v", err)
		}
		if !bytes.Equal(out, data) || mimeType != "image/png" {
			t.Errorf("Expected image unchanged")
		}
	})

	t.Run("large images are fitted", func(t *testing.T) {
		out, mimeType, err := PrepareImage(pngOf(t, 4096, 1024), "image/png")
		if err != nil {
			t.Fatalf("PrepareImage() error = %v", err)
		}
		if mimeType != "image/png" {
			t.Errorf("Expected image/png, got %s", mimeType)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("DecodeConfig() error = %v", err)
		}
		if cfg.Width != MaxImageSide || cfg.Height != 512 {
			t.Errorf("Expected %dx512, got %dx%d", MaxImageSide, cfg.Width, cfg.Height)
		}
	})

	t.Run("undecodable data passes through", func(t *testing.T) {
		out, mimeType, err := PrepareImage([]byte("not an image"), "image/jpeg")
		if err != nil {
			t.Fatalf("PrepareImage() error = %v", err)
		}
		if string(out) != "not an image" || mimeType != "image/jpeg" {
			t.Errorf("Expected data unchanged")
		}
	})

	t.Run("broken HEIC is rejected", func(t *testing.T) {
		if _, _, err := PrepareImage([]byte("not heic"), "image/heic"); err == nil {
			t.Errorf("Expected error for invalid HEIC data")
		}
	})
}

func TestNewServiceModel(t *testing.T) {
	t.Setenv("OPENAI_MODEL", "from-env")

	tests := []struct {
		name     string
		provider string
		model    string
		want     string
	}{
		{"configured model wins", "OpenAI", "from-config", "from-config"},
		{"openai default", "OpenAI", "", "gpt-4o"},
		{"ollama default", "Ollama", "", "llava"},
		{"gemini default", "Gemini", "", "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewService(nil, tt.provider, tt.model).model; got != tt.want {
				t.Errorf("Expected model %q, got %q", tt.want, got)
			}
		})
	}
}
