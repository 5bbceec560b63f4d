package models

// UploadSelection is the image currently chosen for processing
type UploadSelection struct {
	Filename string
	MIMEType string
	Data     []byte
}

// ProcessResponse is the JSON body exchanged between the front-end and the
// invoice backend
type ProcessResponse struct {
	InvoiceTSV      string `json:"invoice_tsv,omitempty"`
	NoteFromBackend string `json:"note_from_backend,omitempty"`
	Error           string `json:"error,omitempty"`
}

// ProcessingResult holds exactly one of Text or Err
type ProcessingResult struct {
	Text string
	Err  error
}

// Display returns the text a result region shows for this result
func (r *ProcessingResult) Display() string {
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return r.Text
}

// DemoOutputs are the regions filled by the demo configuration
type DemoOutputs struct {
	ProductsTSV     string
	AlcoholTSV      string
	JSONSummary     string
	VATGrandTotal   string
	RichTextMessage string
}
