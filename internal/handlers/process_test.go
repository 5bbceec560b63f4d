package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/invoicer/invoicer/internal/client"
	"github.com/invoicer/invoicer/internal/extraction"
	"github.com/invoicer/invoicer/internal/handlers"
	"github.com/invoicer/invoicer/internal/models"
	"github.com/invoicer/invoicer/internal/providers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockExtractor struct {
	response *models.ProcessResponse
	err      error
	calls    int
	filename string
	data     []byte
}

func (m *mockExtractor) ExtractInvoice(_ context.Context, data []byte, filename string) (*models.ProcessResponse, error) {
	m.calls++
	m.filename = filename
	m.data = data
	return m.response, m.err
}

func multipartRequest(field, filename string, data []byte) *http.Request {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile(field, filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(data)
		Expect(err).NotTo(HaveOccurred())
	} else {
		Expect(w.WriteField(field, "")).To(Succeed())
	}
	Expect(w.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, "/api/process-invoice", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode(rec *httptest.ResponseRecorder) models.ProcessResponse {
	var resp models.ProcessResponse
	Expect(json.NewDecoder(rec.Body).Decode(&resp)).To(Succeed())
	return resp
}

var _ = Describe("HandleProcessInvoice", func() {
	var (
		extractor *mockExtractor
		routes    http.Handler
		rec       *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		extractor = &mockExtractor{response: &models.ProcessResponse{InvoiceTSV: "A\tB"}}
		routes = handlers.New(extractor, 1024).Routes()
		rec = httptest.NewRecorder()
	})

	It("returns the extracted TSV", func() {
		routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.png", []byte("png")))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(decode(rec).InvoiceTSV).To(Equal("A\tB"))
		Expect(extractor.filename).To(Equal("scan.png"))
		Expect(string(extractor.data)).To(Equal("png"))
	})

	It("round-trips through the client", func() {
		extractor.response = &models.ProcessResponse{InvoiceTSV: "X", NoteFromBackend: "careful"}
		server := httptest.NewServer(routes)
		defer server.Close()

		result, err := client.New(server.URL+"/api/process-invoice").Process(context.Background(), &models.UploadSelection{
			Filename: "scan.jpg",
			MIMEType: "image/jpeg",
			Data:     []byte("jpg"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Text).To(Equal("Note: careful\n\nX"))
	})

	It("serves simulated data when no provider is configured", func() {
		routes = handlers.New(extraction.NewService(nil, "OpenAI", ""), 1024).Routes()
		routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.jpg", []byte("jpg")))

		Expect(rec.Code).To(Equal(http.StatusOK))
		resp := decode(rec)
		Expect(resp.NoteFromBackend).To(ContainSubstring("API key not configured"))
		Expect(resp.InvoiceTSV).To(HavePrefix("TOTAL BUYING PRICE\t"))
	})

	When("the upload is invalid", func() {
		It("rejects a missing image part", func() {
			routes.ServeHTTP(rec, multipartRequest("file", "scan.png", []byte("png")))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec).Error).To(Equal("No invoice image provided"))
			Expect(extractor.calls).To(BeZero())
		})

		It("rejects an empty file input", func() {
			routes.ServeHTTP(rec, multipartRequest(client.FieldName, "", nil))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec).Error).To(Equal("No selected file"))
		})

		It("rejects a non-multipart body", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/process-invoice", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			routes.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec).Error).To(Equal("No invoice image provided"))
		})

		It("accepts a file of exactly the limit", func() {
			routes = handlers.New(extractor, 2*1024*1024).Routes()
			routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.png", bytes.Repeat([]byte("x"), 2*1024*1024)))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(extractor.data).To(HaveLen(2 * 1024 * 1024))
		})

		It("rejects oversized files", func() {
			routes = handlers.New(extractor, 2*1024*1024).Routes()
			routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.png", bytes.Repeat([]byte("x"), 2*1024*1024+1)))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec).Error).To(Equal("File too large (max 2MB)"))
			Expect(extractor.calls).To(BeZero())
		})

		It("rejects other methods", func() {
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/process-invoice", nil))

			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	DescribeTable("maps provider failures to status codes",
		func(kind providers.ErrorKind, code int, prefix string) {
			extractor.err = &providers.Error{Provider: "OpenAI", Kind: kind, Err: errors.New("details")}
			routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.png", []byte("png")))

			Expect(rec.Code).To(Equal(code))
			Expect(decode(rec).Error).To(HavePrefix(prefix))
		},
		Entry("authentication", providers.KindAuthentication, http.StatusUnauthorized, "OpenAI Authentication Error"),
		Entry("rate limit", providers.KindRateLimit, http.StatusTooManyRequests, "OpenAI Rate Limit Error"),
		Entry("invalid request", providers.KindInvalidRequest, http.StatusBadRequest, "OpenAI Invalid Request Error"),
		Entry("connection", providers.KindConnection, http.StatusInternalServerError, "OpenAI API Connection Error"),
		Entry("api", providers.KindAPI, http.StatusInternalServerError, "OpenAI API Error"),
	)

	It("reports unexpected failures as 500", func() {
		extractor.err = errors.New("disk on fire")
		routes.ServeHTTP(rec, multipartRequest(client.FieldName, "scan.png", []byte("png")))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(decode(rec).Error).To(Equal("An unexpected error occurred: disk on fire"))
	})

	Describe("CORS and health", func() {
		It("answers preflight requests", func() {
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/process-invoice", nil))

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("POST"))
		})

		It("reports healthy", func() {
			routes.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("OK"))
		})
	})
})
