package cmd

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "invoicer",
		Short: "Turn invoice photos into spreadsheet-ready TSV",
		Long: `Invoicer extracts line items from photographed supplier invoices.

The serve command runs the extraction backend, which sends images to a
vision-capable LLM (OpenAI, Ollama or Gemini). The process command uploads
an image to that backend and prints the TSV, optionally copying it to the
clipboard.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newProcessCmd(&configPath))

	return cmd
}
