// Package terminal implements the controller's UI ports for a command line
// session.
package terminal

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/invoicer/invoicer/internal/storage"
)

// Trigger shows a spinner carrying the label while disabled
type Trigger struct {
	mu      sync.Mutex
	label   string
	enabled bool
	spin    *spinner.Spinner
}

func NewTrigger(w io.Writer, label string) *Trigger {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	return &Trigger{label: label, enabled: true, spin: s}
}

func (t *Trigger) Label() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.label
}

func (t *Trigger) SetLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.label = label
	t.spin.Suffix = " " + label
}

func (t *Trigger) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Trigger) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if enabled == t.enabled {
		return
	}
	t.enabled = enabled
	if enabled {
		t.spin.Stop()
		return
	}
	t.spin.Suffix = " " + t.label
	t.spin.Start()
}

// Region is an editable text region
type Region struct {
	mu    sync.Mutex
	Name  string
	value string
}

func NewRegion(name string) *Region {
	return &Region{Name: name}
}

func (r *Region) Text() string {
	return r.Value()
}

func (r *Region) SetText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = text
}

func (r *Region) Value() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Render writes the region under a heading. Error results are colored.
func (r *Region) Render(w io.Writer) {
	value := r.Value()
	color.New(color.Bold).Fprintf(w, "== %s ==\n", r.Name)
	if strings.HasPrefix(value, "Error: ") {
		color.New(color.FgRed).Fprintln(w, value)
		return
	}
	fmt.Fprintln(w, value)
}

// Alerter prints alerts in red
type Alerter struct {
	w io.Writer
}

func NewAlerter(w io.Writer) *Alerter {
	return &Alerter{w: w}
}

func (a *Alerter) Alert(message string) {
	color.New(color.FgRed, color.Bold).Fprintln(a.w, message)
}

// Preview describes the selected image instead of drawing it
type Preview struct {
	w      io.Writer
	store  *storage.PreviewStore
	source string
}

func NewPreview(w io.Writer, store *storage.PreviewStore) *Preview {
	return &Preview{w: w, store: store}
}

func (p *Preview) SetSource(ref string) {
	p.source = ref
}

func (p *Preview) SetVisible(visible bool) {
	if !visible {
		return
	}
	sel, ok := p.store.Get(p.source)
	if !ok {
		return
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(sel.Data))
	if err != nil {
		color.New(color.FgCyan).Fprintf(p.w, "Preview: %s (%s, %d bytes)\n", sel.Filename, sel.MIMEType, len(sel.Data))
		return
	}
	color.New(color.FgCyan).Fprintf(p.w, "Preview: %s (%s %dx%d)\n", sel.Filename, format, cfg.Width, cfg.Height)
}

// Button is a copy control whose label changes are echoed
type Button struct {
	mu    sync.Mutex
	w     io.Writer
	label string
}

func NewButton(w io.Writer, label string) *Button {
	return &Button{w: w, label: label}
}

func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if label != b.label {
		color.New(color.FgGreen).Fprintln(b.w, label)
	}
	b.label = label
}
