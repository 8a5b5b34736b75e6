package sessionscmder_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	sessionscmder "github.com/papercomputeco/clerk/cmd/clerk/sessions"
	"github.com/papercomputeco/clerk/pkg/session"
)

var _ = Describe("NewSessionsCmd", func() {
	It("has list, show, delete, and clear subcommands", func() {
		cmd := sessionscmder.NewSessionsCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ConsistOf("list", "show", "delete", "clear"))
	})
})

var _ = Describe("Sessions command execution", func() {
	var (
		server *httptest.Server
		calls  []string
		tmpDir string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		calls = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			calls = append(calls, r.Method+" "+r.URL.Path)
			w.Header().Set("Content-Type", "application/json")

			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/v1/sessions":
				Expect(json.NewEncoder(w).Encode(map[string]any{
					"count": 1,
					"sessions": []session.Summary{{
						ID: "s-1", Turns: 2, CreatedAt: time.Now(), LastActivity: time.Now(),
					}},
				})).To(Succeed())
			case r.Method == http.MethodGet && r.URL.Path == "/v1/sessions/s-1":
				Expect(json.NewEncoder(w).Encode(map[string]any{
					"session_id": "s-1",
					"turns":      []session.Turn{{User: "hi", Bot: "hello", Timestamp: time.Now()}},
				})).To(Succeed())
			case r.Method == http.MethodDelete && r.URL.Path == "/v1/sessions/missing":
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"session not found"}`))
			case r.Method == http.MethodDelete:
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	run := func(args ...string) error {
		cmd := sessionscmder.NewSessionsCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .clerk/ config directory")
		cmd.SetArgs(append(args, "--api-target", server.URL, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	It("lists sessions", func() {
		Expect(run("list")).To(Succeed())
		Expect(calls).To(Equal([]string{"GET /v1/sessions"}))
	})

	It("shows a session history", func() {
		Expect(run("show", "s-1")).To(Succeed())
		Expect(calls).To(Equal([]string{"GET /v1/sessions/s-1"}))
	})

	It("deletes a session", func() {
		Expect(run("delete", "s-1")).To(Succeed())
		Expect(calls).To(Equal([]string{"DELETE /v1/sessions/s-1"}))
	})

	It("fails to delete an unknown session", func() {
		Expect(run("delete", "missing")).NotTo(Succeed())
	})

	It("clears every session", func() {
		Expect(run("clear")).To(Succeed())
		Expect(calls).To(Equal([]string{"DELETE /v1/sessions"}))
	})
})
