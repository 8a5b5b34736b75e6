package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/completion/anthropic"
)

var _ = Describe("Provider", func() {
	It("requires an api key", func() {
		_, err := anthropic.NewProvider(anthropic.Config{})
		Expect(err).To(MatchError(ContainSubstring("api key is required")))
	})

	It("joins text blocks from the reply", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/messages"))
			Expect(r.Header.Get("X-Api-Key")).To(Equal("k"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "msg_1",
				"type":  "message",
				"role":  "assistant",
				"model": anthropic.DefaultModel,
				"content": []map[string]any{
					{"type": "text", "text": "Alice has "},
					{"type": "text", "text": "one declined invoice."},
				},
				"stop_reason": "end_turn",
				"usage":       map[string]int{"input_tokens": 5, "output_tokens": 7},
			})
		}))
		defer server.Close()

		p, err := anthropic.NewProvider(anthropic.Config{APIKey: "k", BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		out, err := p.Complete(context.Background(), "summarize")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Alice has one declined invoice."))
	})
})
