package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/analysis"
	"github.com/papercomputeco/clerk/pkg/session/local"
	testutils "github.com/papercomputeco/clerk/pkg/utils/test"
)

type upload struct {
	field, filename string
	data            []byte
}

func multipartRequest(fields map[string]string, files ...upload) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		Expect(mw.WriteField(k, v)).To(Succeed())
	}
	for _, f := range files {
		w, err := mw.CreateFormFile(f.field, f.filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = w.Write(f.data)
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(mw.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, "/v1/invoices/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var _ = Describe("handleAnalyze", func() {
	var (
		server  *Server
		batch   *fakeBatch
		policy  upload
		archive upload
	)

	BeforeEach(func() {
		batch = &fakeBatch{}
		server = newTestServer(&fakeSearcher{}, &fakeChatter{}, batch, local.NewDriver(local.Config{}))

		policy = upload{"policy_file", "policy.pdf", testutils.NewTestPDF("Meals up to 50 per day")}
		archive = upload{"invoices_zip", "invoices.zip", testutils.NewTestZip(
			[]string{"taxi.pdf", "hotel.pdf"},
			map[string][]byte{
				"taxi.pdf":  testutils.NewTestPDF("Taxi 42.50"),
				"hotel.pdf": testutils.NewTestPDF("Hotel 180.00"),
			},
		)}
	})

	It("runs the batch over every invoice in the archive", func() {
		req := multipartRequest(map[string]string{"employee_name": "Alice"}, policy, archive)
		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var body analysis.BatchResult
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Status).To(Equal(analysis.StatusSuccess))
		Expect(body.Processed).To(Equal(2))

		Expect(batch.requests).To(HaveLen(1))
		got := batch.requests[0]
		Expect(got.EmployeeName).To(Equal("Alice"))
		Expect(got.PolicyText).To(ContainSubstring("Meals up to 50 per day"))
		Expect(got.Invoices[0].Name).To(Equal("taxi.pdf"))
		Expect(got.Invoices[1].Text).To(ContainSubstring("Hotel 180.00"))
	})

	It("requires an employee name", func() {
		resp, err := server.app.Test(multipartRequest(nil, policy, archive))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(batch.requests).To(BeEmpty())
	})

	It("rejects a policy that is not a pdf", func() {
		policy.filename = "policy.docx"
		resp, err := server.app.Test(multipartRequest(map[string]string{"employee_name": "Alice"}, policy, archive))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

		var body ErrorResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Error).To(Equal("policy_file must be a PDF"))
	})

	It("rejects an archive that is not a zip", func() {
		archive.filename = "invoices.tar"
		resp, err := server.app.Test(multipartRequest(map[string]string{"employee_name": "Alice"}, policy, archive))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("rejects a missing archive", func() {
		resp, err := server.app.Test(multipartRequest(map[string]string{"employee_name": "Alice"}, policy))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("rejects an archive without pdfs", func() {
		archive.data = testutils.NewTestZip([]string{"notes.txt"}, map[string][]byte{"notes.txt": []byte("hi")})
		resp, err := server.app.Test(multipartRequest(map[string]string{"employee_name": "Alice"}, policy, archive))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("rejects an unreadable policy", func() {
		policy.data = []byte("not a pdf")
		resp, err := server.app.Test(multipartRequest(map[string]string{"employee_name": "Alice"}, policy, archive))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
	})
})
