package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/embeddings/ollama"
	"github.com/papercomputeco/clerk/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		received map[string]any
		status   int
		payload  any
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		payload = map[string]any{"embeddings": [][]float32{{0.1, 0.2, 0.3}}}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(payload)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("uses the default model when none is configured", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		emb, err := e.Embed(context.Background(), "taxi receipt")
		Expect(err).NotTo(HaveOccurred())
		Expect(emb).To(Equal([]float32{0.1, 0.2, 0.3}))
		Expect(received["model"]).To(Equal(ollama.DefaultEmbeddingModel))
		Expect(received["input"]).To(Equal("taxi receipt"))
		Expect(received).NotTo(HaveKey("dimensions"))
	})

	It("forwards configured dimensions", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL, Model: "all-minilm", Dimensions: 3})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(context.Background(), "x")
		Expect(err).NotTo(HaveOccurred())
		Expect(received["dimensions"]).To(BeNumerically("==", 3))
	})

	It("wraps non-200 responses as embedding errors", func() {
		status = http.StatusInternalServerError
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})

		_, err := e.Embed(context.Background(), "x")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("fails when no embedding comes back", func() {
		payload = map[string]any{"embeddings": [][]float32{}}
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})

		_, err := e.Embed(context.Background(), "x")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})
})
