package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/completion"
	"github.com/papercomputeco/clerk/pkg/completion/ollama"
)

var _ = Describe("Provider", func() {
	var (
		server  *httptest.Server
		reply   map[string]any
		status  int
		request map[string]any
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = map[string]any{"message": map[string]string{"role": "assistant", "content": "  {\"status\":\"Declined\"}  "}, "done": true}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&request)).To(Succeed())
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(reply)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the trimmed assistant message", func() {
		p, err := ollama.NewProvider(ollama.Config{BaseURL: server.URL + "/"})
		Expect(err).NotTo(HaveOccurred())

		out, err := p.Complete(context.Background(), "analyze")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(`{"status":"Declined"}`))
		Expect(request["model"]).To(Equal(ollama.DefaultModel))
		Expect(request["stream"]).To(BeFalse())
	})

	It("surfaces ollama errors", func() {
		reply = map[string]any{"error": "model not found"}
		p, _ := ollama.NewProvider(ollama.Config{BaseURL: server.URL})

		_, err := p.Complete(context.Background(), "x")
		Expect(err).To(MatchError(completion.ErrCompletion))
		Expect(err.Error()).To(ContainSubstring("model not found"))
	})

	It("treats an empty message as a failure", func() {
		reply = map[string]any{"message": map[string]string{"role": "assistant", "content": ""}}
		p, _ := ollama.NewProvider(ollama.Config{BaseURL: server.URL})

		_, err := p.Complete(context.Background(), "x")
		Expect(err).To(MatchError(completion.ErrEmptyResponse))
	})

	It("fails on non-200 status", func() {
		status = http.StatusBadGateway
		p, _ := ollama.NewProvider(ollama.Config{BaseURL: server.URL})

		_, err := p.Complete(context.Background(), "x")
		Expect(err).To(MatchError(completion.ErrCompletion))
	})
})
