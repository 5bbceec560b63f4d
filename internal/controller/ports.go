package controller

import (
	"context"

	"github.com/invoicer/invoicer/internal/models"
)

// Trigger is the process control
type Trigger interface {
	Label() string
	SetLabel(string)
	Enabled() bool
	SetEnabled(bool)
}

// Preview displays the selected image
type Preview interface {
	SetSource(ref string)
	SetVisible(bool)
}

// Region displays text. Regions that also implement Valuer are text-entry
// regions and are read through Value when copying.
type Region interface {
	Text() string
	SetText(string)
}

// Valuer is implemented by editable regions
type Valuer interface {
	Value() string
}

// Alerter shows a blocking message to the user
type Alerter interface {
	Alert(message string)
}

// Clipboard is the write side of the system clipboard
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Processor turns a selection into a result. The networked client
// implements it.
type Processor interface {
	Process(ctx context.Context, sel *models.UploadSelection) (*models.ProcessingResult, error)
}

// PreviewRefs creates and releases temporary preview references
type PreviewRefs interface {
	Create(sel *models.UploadSelection) string
	Revoke(ref string)
}

// Button is a copy control
type Button interface {
	Label() string
	SetLabel(string)
}
