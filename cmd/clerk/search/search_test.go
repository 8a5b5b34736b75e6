package searchcmder_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/api"
	searchcmder "github.com/papercomputeco/clerk/cmd/clerk/search"
	"github.com/papercomputeco/clerk/pkg/invoice"
	"github.com/papercomputeco/clerk/pkg/records"
)

var _ = Describe("NewSearchCmd", func() {
	It("requires exactly one query argument", func() {
		cmd := searchcmder.NewSearchCmd()
		Expect(cmd.Args(cmd, []string{})).NotTo(Succeed())
		Expect(cmd.Args(cmd, []string{"taxi"})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"taxi", "hotel"})).NotTo(Succeed())
	})

	It("registers the filter flags", func() {
		cmd := searchcmder.NewSearchCmd()
		for _, name := range []string{"employee", "status", "invoice-id", "amount", "date", "limit", "quiet", "api-target"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("Search command execution", func() {
	var (
		server   *httptest.Server
		received url.Values
		tmpDir   string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		received = nil

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/search"))
			received = r.URL.Query()

			w.Header().Set("Content-Type", "application/json")
			Expect(json.NewEncoder(w).Encode(api.SearchResponse{
				Query: received.Get("query"),
				Results: []records.Result{{
					ID: "inv-1",
					Metadata: invoice.Metadata{
						EmployeeName: "alice smith",
						Status:       invoice.StatusFullyReimbursed,
						TotalAmount:  120,
						Date:         "2024-05-14",
					},
					Distance: 0.12,
				}},
				Count: 1,
			})).To(Succeed())
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	run := func(args ...string) error {
		cmd := searchcmder.NewSearchCmd()
		cmd.PersistentFlags().String("config-dir", "", "Override path to .clerk/ config directory")
		cmd.SetArgs(append(args, "--api-target", server.URL, "--config-dir", tmpDir))
		return cmd.Execute()
	}

	It("sends the query with only the filters that were given", func() {
		Expect(run("taxi rides", "--employee", "Alice Smith", "--date", "May 2024", "--limit", "3")).To(Succeed())

		Expect(received.Get("query")).To(Equal("taxi rides"))
		Expect(received.Get("employee_name")).To(Equal("Alice Smith"))
		Expect(received.Get("date")).To(Equal("May 2024"))
		Expect(received.Get("limit")).To(Equal("3"))
		Expect(received.Has("status")).To(BeFalse())
		Expect(received.Has("amount")).To(BeFalse())
	})

	It("supports quiet output", func() {
		Expect(run("hotel", "--quiet")).To(Succeed())
		Expect(received.Get("query")).To(Equal("hotel"))
	})

	It("surfaces server errors", func() {
		server.Close()
		Expect(run("hotel")).NotTo(Succeed())
	})
})
