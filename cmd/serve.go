package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/invoicer/invoicer/internal/config"
	"github.com/invoicer/invoicer/internal/extraction"
	"github.com/invoicer/invoicer/internal/gemini"
	"github.com/invoicer/invoicer/internal/handlers"
	"github.com/invoicer/invoicer/internal/ollama"
	"github.com/invoicer/invoicer/internal/openai"
	"github.com/invoicer/invoicer/internal/providers"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var (
		port     string
		provider string
		model    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the invoice extraction backend",
		Long: `Starts the extraction backend on the specified port.

POST /api/process-invoice accepts a multipart upload with an invoiceImage
part and answers with {"invoice_tsv": ..., "note_from_backend": ...}.
Without an API key for the selected provider the backend answers with
simulated data.`,
		Example: `  # Start server on default port 5000 using OpenAI
  invoicer serve

  # Use a local Ollama model on a custom port
  invoicer serve --provider ollama --model llava --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("provider") {
				cfg.Server.SetProvider(provider)
			}
			if cmd.Flags().Changed("model") {
				cfg.Server.Model = model
			}

			p, name, err := newProvider(cfg.Server)
			if err != nil {
				return err
			}
			svc := extraction.NewService(p, name, cfg.Server.Model)
			if svc.Simulated() {
				slog.Warn("No API key configured, serving simulated data", "provider", name)
			}

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:    addr,
				Handler: handlers.New(svc, cfg.Server.MaxUploadBytes).Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Invoicer backend available", "addr", addr, "url", "http://localhost"+addr+"/api/process-invoice", "provider", name)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&provider, "provider", config.DefaultProvider, "Vision provider: openai, ollama or gemini")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults depend on the provider)")

	return cmd
}

// newProvider returns the configured provider, or nil when its API key is
// missing so the service falls back to simulated data.
func newProvider(cfg config.ServerConfig) (providers.Provider, string, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, "OpenAI", nil
		}
		return openai.New(key, ""), "OpenAI", nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), "Ollama", nil
	case "gemini":
		key := os.Getenv("GEMINI_API_KEY")
		if key == "" {
			return nil, "Gemini", nil
		}
		return gemini.New(key), "Gemini", nil
	default:
		return nil, "", fmt.Errorf("unsupported provider: %s. Must be 'openai', 'ollama' or 'gemini'", cfg.Provider)
	}
}
