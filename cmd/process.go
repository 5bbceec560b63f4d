package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/invoicer/invoicer/internal/client"
	"github.com/invoicer/invoicer/internal/clipboard"
	"github.com/invoicer/invoicer/internal/config"
	"github.com/invoicer/invoicer/internal/controller"
	"github.com/invoicer/invoicer/internal/extraction"
	"github.com/invoicer/invoicer/internal/models"
	"github.com/invoicer/invoicer/internal/storage"
	"github.com/invoicer/invoicer/internal/terminal"
	"github.com/spf13/cobra"
)

const (
	processLabel = "Process Invoice"
	copyLabel    = "Copy"
)

var demoRegions = []string{
	controller.RegionProductsTSV,
	controller.RegionAlcoholTSV,
	controller.RegionJSON,
	controller.RegionVATGrandTotal,
	controller.RegionRichText,
}

// newClipboard is replaced in tests
var newClipboard = func() controller.Clipboard {
	return clipboard.NewSystem()
}

func newProcessCmd(configPath *string) *cobra.Command {
	var (
		endpoint string
		mode     string
		copyTo   string
	)

	cmd := &cobra.Command{
		Use:   "process IMAGE",
		Short: "Upload an invoice image and print the extracted TSV",
		Long: `Uploads an invoice image to the extraction backend and prints the result.

In demo mode no request is made; fixed sample outputs are shown instead.
Use --copy with a region name to place that region's text on the system
clipboard.`,
		Example: `  # Extract an invoice via the local backend
  invoicer process invoice.jpg

  # Extract and copy the TSV to the clipboard
  invoicer process invoice.jpg --copy invoiceTsvOutput

  # Show the demo outputs
  invoicer process invoice.jpg --mode demo --copy productsTsvOutput`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Client.Endpoint = endpoint
			}
			if cmd.Flags().Changed("mode") {
				cfg.Client.Mode = mode
			}
			m, err := controller.ParseMode(cfg.Client.Mode)
			if err != nil {
				return err
			}

			sel, err := readSelection(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			previews := storage.New()

			names := []string{controller.RegionInvoiceTSV}
			if m == controller.ModeDemo {
				names = demoRegions
			}
			regions := make(map[string]controller.Region, len(names))
			rendered := make([]*terminal.Region, 0, len(names))
			for _, name := range names {
				r := terminal.NewRegion(name)
				regions[name] = r
				rendered = append(rendered, r)
			}

			reverted := make(chan struct{})
			ctrl, err := controller.New(controller.Config{
				Mode:      m,
				Trigger:   terminal.NewTrigger(cmd.ErrOrStderr(), processLabel),
				Preview:   terminal.NewPreview(out, previews),
				Previews:  previews,
				Regions:   regions,
				Alerter:   terminal.NewAlerter(cmd.ErrOrStderr()),
				Clipboard: newClipboard(),
				Processor: client.New(cfg.Client.Endpoint),
				AfterFunc: func(d time.Duration, f func()) func() bool {
					return time.AfterFunc(d, func() {
						f()
						close(reverted)
					}).Stop
				},
			})
			if err != nil {
				return err
			}

			ctrl.SelectFile(sel)
			slog.Debug("Processing invoice", "filename", sel.Filename, "mode", m, "endpoint", cfg.Client.Endpoint)

			result, err := ctrl.Process(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range rendered {
				r.Render(out)
			}

			if copyTo != "" {
				if _, ok := regions[copyTo]; !ok {
					return fmt.Errorf("unknown region %q for %s mode", copyTo, m)
				}
				ctrl.BindCopyButton("copy", terminal.NewButton(out, copyLabel), copyTo)
				// clipboard failures are logged by the controller and do not fail the run
				if err := ctrl.Copy(cmd.Context(), "copy"); err == nil {
					waitForRevert(cmd.Context(), reverted)
				}
			}

			if result.Err != nil {
				return result.Err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", config.DefaultEndpoint, "Backend URL for invoice processing")
	cmd.Flags().StringVarP(&mode, "mode", "m", string(controller.ModeLive), "Processing mode: live or demo")
	cmd.Flags().StringVarP(&copyTo, "copy", "c", "", "Copy the named output region to the clipboard")

	return cmd
}

func readSelection(path string) (*models.UploadSelection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil, &models.UserInputError{Message: fmt.Sprintf("cannot read %s: %v", path, pathErr.Err)}
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, &models.UserInputError{Message: "image file is empty"}
	}

	filename := filepath.Base(path)
	mimeType := extraction.MIMETypeForFilename(filename)
	if filepath.Ext(filename) == "" {
		mimeType = http.DetectContentType(data)
	}
	return &models.UploadSelection{
		Filename: filename,
		MIMEType: mimeType,
		Data:     data,
	}, nil
}

func waitForRevert(ctx context.Context, reverted <-chan struct{}) {
	select {
	case <-reverted:
	case <-ctx.Done():
	case <-time.After(controller.CopiedDuration + time.Second):
	}
}
