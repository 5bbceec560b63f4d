package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/invoicer/invoicer/internal/client"
	"github.com/invoicer/invoicer/internal/models"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Client", func() {
	var (
		server *ghttp.Server
		c      *client.Client
		sel    *models.UploadSelection
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		c = client.New(server.URL() + "/api/process-invoice")
		sel = &models.UploadSelection{
			Filename: "invoice.png",
			MIMEType: "image/png",
			Data:     []byte("fake png bytes"),
		}
	})

	AfterEach(func() {
		server.Close()
	})

	It("posts the image as the invoiceImage part", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/api/process-invoice"),
			func(w http.ResponseWriter, r *http.Request) {
				file, header, err := r.FormFile("invoiceImage")
				Expect(err).NotTo(HaveOccurred())
				defer file.Close()
				data, err := io.ReadAll(file)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("fake png bytes"))
				Expect(header.Filename).To(Equal("invoice.png"))
				Expect(header.Header.Get("Content-Type")).To(Equal("image/png"))
			},
			ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]string{"invoice_tsv": "ok"}),
		))

		result, err := c.Process(context.Background(), sel)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Text).To(Equal("ok"))
		Expect(server.ReceivedRequests()).To(HaveLen(1))
	})

	When("the backend succeeds", func() {
		It("returns the TSV verbatim", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"invoice_tsv": "A\tB\n1\t2"}`))

			result, err := c.Process(context.Background(), sel)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal("A\tB\n1\t2"))
			Expect(result.Display()).To(Equal("A\tB\n1\t2"))
		})

		It("prefixes the backend note", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"invoice_tsv": "X", "note_from_backend": "careful"}`))

			result, err := c.Process(context.Background(), sel)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal("Note: careful\n\nX"))
		})

		It("treats a missing invoice_tsv as empty", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{}`))

			result, err := c.Process(context.Background(), sel)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(BeEmpty())
		})

		It("reports an undecodable body as a transport error", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusOK, `<html>`))

			_, err := c.Process(context.Background(), sel)
			var transportErr *models.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
		})
	})

	When("the backend fails", func() {
		It("surfaces the error field", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, `{"error": "bad image"}`))

			_, err := c.Process(context.Background(), sel)
			var backendErr *models.BackendError
			Expect(errors.As(err, &backendErr)).To(BeTrue())
			Expect(backendErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect((&models.ProcessingResult{Err: err}).Display()).To(Equal("Error: bad image"))
		})

		It("falls back to the status code when the body is not JSON", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, `Internal Server Error`))

			_, err := c.Process(context.Background(), sel)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("500"))
		})

		It("falls back to the status code when the JSON has no error field", func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusBadGateway, `{"detail": "upstream"}`))

			_, err := c.Process(context.Background(), sel)
			Expect(err).To(MatchError("Server responded with 502"))
		})
	})

	When("the backend is unreachable", func() {
		It("returns a transport error", func() {
			url := server.URL()
			server.Close()

			_, err := client.New(url).Process(context.Background(), sel)
			var transportErr *models.TransportError
			Expect(errors.As(err, &transportErr)).To(BeTrue())
		})
	})
})
