package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/invoicer/invoicer/internal/models"
)

// Mode selects how the controller produces results
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// ParseMode validates a mode name. An empty name means live.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLive:
		return ModeLive, nil
	case ModeDemo:
		return ModeDemo, nil
	default:
		return "", fmt.Errorf("invalid mode %q. Must be 'live' or 'demo'", s)
	}
}

// Region identifiers
const (
	RegionInvoiceTSV    = "invoiceTsvOutput"
	RegionProductsTSV   = "productsTsvOutput"
	RegionAlcoholTSV    = "alcoholTsvOutput"
	RegionJSON          = "jsonOutput"
	RegionVATGrandTotal = "vatGrandTotalOutput"
	RegionRichText      = "richTextOutput"
)

const (
	NoFileMessage   = "Please select an invoice image."
	ProcessingLabel = "Processing..."
	CopiedLabel     = "Copied!"
	CopiedDuration  = 2 * time.Second
	emptyPreviewRef = "#"
)

// AfterFunc schedules f after d and returns a function that cancels it
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func defaultAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Config wires a controller to its UI. Preview, Previews, Alerter and
// individual regions are optional; Trigger is required, and live mode
// also needs a Processor.
type Config struct {
	Mode      Mode
	Trigger   Trigger
	Preview   Preview
	Previews  PreviewRefs
	Regions   map[string]Region
	Alerter   Alerter
	Clipboard Clipboard
	Processor Processor
	AfterFunc AfterFunc
}

type copyBinding struct {
	button   Button
	target   string
	original string
	pending  bool
	gen      int
	stop     func() bool
}

// Controller drives the select, process, display and copy flow
type Controller struct {
	mode      Mode
	trigger   Trigger
	preview   Preview
	previews  PreviewRefs
	regions   map[string]Region
	alerter   Alerter
	clipboard Clipboard
	processor Processor
	afterFunc AfterFunc

	mu         sync.Mutex
	selection  *models.UploadSelection
	previewRef string
	buttons    map[string]*copyBinding
}

func New(cfg Config) (*Controller, error) {
	mode, err := ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	if cfg.Trigger == nil {
		return nil, errors.New("trigger is required")
	}
	if mode == ModeLive && cfg.Processor == nil {
		return nil, errors.New("live mode requires a processor")
	}

	c := &Controller{
		mode:      mode,
		trigger:   cfg.Trigger,
		preview:   cfg.Preview,
		previews:  cfg.Previews,
		regions:   make(map[string]Region, len(cfg.Regions)),
		alerter:   cfg.Alerter,
		clipboard: cfg.Clipboard,
		processor: cfg.Processor,
		afterFunc: cfg.AfterFunc,
		buttons:   make(map[string]*copyBinding),
	}
	for id, region := range cfg.Regions {
		if region != nil {
			c.regions[id] = region
		}
	}
	if c.afterFunc == nil {
		c.afterFunc = defaultAfterFunc
	}
	return c, nil
}

// Mode reports the configured mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// BindCopyButton registers a copy control for the region named target
func (c *Controller) BindCopyButton(id string, button Button, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buttons[id] = &copyBinding{button: button, target: target}
}

// SelectFile replaces the current selection. A nil selection clears it.
func (c *Controller) SelectFile(sel *models.UploadSelection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.previewRef != "" && c.previews != nil {
		c.previews.Revoke(c.previewRef)
	}
	c.previewRef = ""
	c.selection = sel

	if c.preview == nil {
		return
	}
	if sel == nil {
		c.preview.SetSource(emptyPreviewRef)
		c.preview.SetVisible(false)
		return
	}
	if c.previews != nil {
		c.previewRef = c.previews.Create(sel)
		c.preview.SetSource(c.previewRef)
	}
	c.preview.SetVisible(true)
}

// Selection returns the current selection, if any
func (c *Controller) Selection() *models.UploadSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// Process runs one submission. The returned error is non-nil only when
// nothing was submitted (no selection, or a submission already in flight);
// processing failures are rendered and carried in the result's Err.
func (c *Controller) Process(ctx context.Context) (*models.ProcessingResult, error) {
	c.mu.Lock()
	sel := c.selection
	if sel == nil {
		c.mu.Unlock()
		if c.alerter != nil {
			c.alerter.Alert(NoFileMessage)
		}
		return nil, &models.UserInputError{Message: NoFileMessage}
	}
	if !c.trigger.Enabled() {
		c.mu.Unlock()
		return nil, models.ErrBusy
	}

	originalLabel := c.trigger.Label()
	c.trigger.SetEnabled(false)
	c.trigger.SetLabel(ProcessingLabel)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.trigger.SetEnabled(true)
		c.trigger.SetLabel(originalLabel)
	}()

	if c.mode == ModeDemo {
		return c.fillDemo(), nil
	}

	c.setRegion(RegionInvoiceTSV, "")

	result, err := c.processor.Process(ctx, sel)
	if err != nil {
		slog.Error("Error processing invoice", "filename", sel.Filename, "err", err)
		result = &models.ProcessingResult{Err: err}
	}
	if result == nil {
		result = &models.ProcessingResult{}
	}

	c.setRegion(RegionInvoiceTSV, result.Display())
	return result, nil
}

func (c *Controller) fillDemo() *models.ProcessingResult {
	ids := []string{RegionProductsTSV, RegionAlcoholTSV, RegionJSON, RegionVATGrandTotal, RegionRichText}
	for _, id := range ids {
		c.setRegion(id, "")
	}

	demo := DemoData()
	c.setRegion(RegionProductsTSV, demo.ProductsTSV)
	c.setRegion(RegionAlcoholTSV, demo.AlcoholTSV)
	c.setRegion(RegionJSON, demo.JSONSummary)
	c.setRegion(RegionVATGrandTotal, demo.VATGrandTotal)
	c.setRegion(RegionRichText, demo.RichTextMessage)

	slog.Debug("Filled demo regions")
	return &models.ProcessingResult{Text: demo.ProductsTSV}
}

func (c *Controller) setRegion(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if region, ok := c.regions[id]; ok {
		region.SetText(text)
	}
}

// Copy writes the text of the button's target region to the clipboard and
// briefly relabels the button. Failures are logged and leave the label
// unchanged.
func (c *Controller) Copy(ctx context.Context, buttonID string) error {
	c.mu.Lock()
	b, ok := c.buttons[buttonID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("unknown copy button: %s", buttonID)
	}
	region, ok := c.regions[b.target]
	c.mu.Unlock()
	if !ok {
		slog.Warn("Copy target not found", "button", buttonID, "target", b.target)
		return nil
	}

	if c.clipboard == nil {
		err := &models.ClipboardError{Err: errors.New("no clipboard available")}
		slog.Error("Failed to copy", "button", buttonID, "err", err)
		return err
	}

	if err := c.clipboard.WriteText(ctx, readRegion(region)); err != nil {
		slog.Error("Failed to copy", "button", buttonID, "target", b.target, "err", err)
		return &models.ClipboardError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !b.pending {
		b.original = b.button.Label()
	}
	if b.stop != nil {
		b.stop()
	}
	b.pending = true
	b.gen++
	gen := b.gen
	b.button.SetLabel(CopiedLabel)

	b.stop = c.afterFunc(CopiedDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if b.gen != gen {
			return
		}
		b.button.SetLabel(b.original)
		b.pending = false
		b.stop = nil
	})
	return nil
}

func readRegion(region Region) string {
	if v, ok := region.(Valuer); ok {
		return v.Value()
	}
	return region.Text()
}
