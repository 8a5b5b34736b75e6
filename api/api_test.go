package api

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	clerklogger "github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/session/local"
)

func newTestServer(searcher *fakeSearcher, chatter *fakeChatter, batch *fakeBatch, sessions *local.Driver) *Server {
	server, err := NewServer(Config{
		ListenAddr:  ":0",
		SearchLimit: 10,
		Retriever:   searcher,
		Assistant:   chatter,
		Batch:       batch,
		Sessions:    sessions,
	}, clerklogger.Nop())
	Expect(err).NotTo(HaveOccurred())
	return server
}

var _ = Describe("NewServer", func() {
	It("requires every collaborator", func() {
		_, err := NewServer(Config{}, clerklogger.Nop())
		Expect(err).To(MatchError("retriever is required"))

		_, err = NewServer(Config{Retriever: &fakeSearcher{}}, clerklogger.Nop())
		Expect(err).To(MatchError("assistant is required"))

		_, err = NewServer(Config{
			Retriever: &fakeSearcher{},
			Assistant: &fakeChatter{},
			Batch:     &fakeBatch{},
			Sessions:  local.NewDriver(local.Config{}),
		}, nil)
		Expect(err).To(MatchError("logger is required"))
	})

	It("answers ping", func() {
		server := newTestServer(&fakeSearcher{}, &fakeChatter{}, &fakeBatch{}, local.NewDriver(local.Config{}))

		resp, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("mounts the MCP handler when configured", func() {
		called := false
		server, err := NewServer(Config{
			Retriever: &fakeSearcher{},
			Assistant: &fakeChatter{},
			Batch:     &fakeBatch{},
			Sessions:  local.NewDriver(local.Config{}),
			MCPHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusAccepted)
			}),
		}, clerklogger.Nop())
		Expect(err).NotTo(HaveOccurred())

		resp, err := server.app.Test(httptest.NewRequest(http.MethodPost, "/mcp", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
		Expect(called).To(BeTrue())
	})
})
