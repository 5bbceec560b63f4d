package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/invoicer/invoicer/internal/models"
)

// FieldName is the multipart part carrying the invoice image
const FieldName = "invoiceImage"

// Client submits invoice images to the processing backend
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client posting to endpoint
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Process sends the selection in a single POST and decodes the reply.
// Errors are *models.TransportError or *models.BackendError.
func (c *Client) Process(ctx context.Context, sel *models.UploadSelection) (*models.ProcessingResult, error) {
	body, contentType, err := buildBody(sel)
	if err != nil {
		return nil, &models.TransportError{Message: "failed to build request body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &models.TransportError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	slog.Debug("Submitting invoice", "endpoint", c.endpoint, "filename", sel.Filename, "bytes", len(sel.Data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &models.TransportError{Message: "failed to send request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeBackendError(resp)
	}

	var payload models.ProcessResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &models.TransportError{Message: "failed to decode response body", Err: err}
	}

	text := payload.InvoiceTSV
	if payload.NoteFromBackend != "" {
		text = fmt.Sprintf("Note: %s\n\n%s", payload.NoteFromBackend, text)
	}

	return &models.ProcessingResult{Text: text}, nil
}

func buildBody(sel *models.UploadSelection) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := sel.Filename
	if filename == "" {
		filename = "invoice"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FieldName, escapeQuotes(filename)))
	mimeType := sel.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(sel.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

func decodeBackendError(resp *http.Response) *models.BackendError {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return &models.BackendError{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("Server responded with %d. Unable to parse error details.", resp.StatusCode),
		}
	}
	if payload.Error == "" {
		return &models.BackendError{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("Server responded with %d", resp.StatusCode),
		}
	}
	return &models.BackendError{StatusCode: resp.StatusCode, Reason: payload.Error}
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
