package chroma_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	clerklogger "github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/vector"
	"github.com/papercomputeco/clerk/pkg/vector/chroma"
)

// fakeChroma answers the handful of collection endpoints the driver uses.
type fakeChroma struct {
	mu        sync.Mutex
	ids       map[string]bool
	lastQuery map[string]any
	adds      int
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	switch {
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]string{"id": "col-1", "name": "invoices"})
	case strings.HasSuffix(r.URL.Path, "/get"):
		found := []string{}
		for _, id := range body["ids"].([]any) {
			if f.ids[id.(string)] {
				found = append(found, id.(string))
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"ids": found})
	case strings.HasSuffix(r.URL.Path, "/add"):
		f.adds++
		for _, id := range body["ids"].([]any) {
			f.ids[id.(string)] = true
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("{}"))
	case strings.HasSuffix(r.URL.Path, "/query"):
		f.lastQuery = body
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{"e1", "e2"}},
			"distances": [][]float32{{0.1, 0.4}},
			"documents": [][]string{{"doc one", "doc two"}},
			"metadatas": [][]map[string]any{{
				{"employee_name": "alice"},
				{"employee_name": "alice"},
			}},
		})
	default:
		http.NotFound(w, r)
	}
}

var _ = Describe("Driver", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = clerklogger.Nop()
	})

	Describe("NewDriver", func() {
		It("should return an error when URL is empty", func() {
			_, err := chroma.NewDriver(chroma.Config{URL: ""}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("chroma URL is required"))
		})

		It("should succeed after retrying when Chroma becomes available", func() {
			var attempts atomic.Int32

			// Each retry cycle issues a GET for the collection and a POST to
			// create it. Fail the first two cycles.
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempt := attempts.Add(1)
				if attempt <= 4 {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{
					"id":   "test-collection-id",
					"name": "invoices",
				})
			}))
			defer server.Close()

			driver, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    5,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(driver).NotTo(BeNil())
			Expect(attempts.Load()).To(BeNumerically(">=", int32(5)))
		})

		It("should return an error after exhausting all retries", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := chroma.NewDriver(chroma.Config{
				URL:           server.URL,
				MaxRetries:    3,
				RetryDelay:    10 * time.Millisecond,
				MaxRetryDelay: 50 * time.Millisecond,
			}, logger)
			Expect(err).To(MatchError(vector.ErrConnection))
			Expect(err.Error()).To(ContainSubstring("after 3 attempts"))
		})
	})

	Describe("against a collection", func() {
		var (
			fake   *fakeChroma
			server *httptest.Server
			driver *chroma.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			fake = &fakeChroma{ids: map[string]bool{}}
			server = httptest.NewServer(fake)

			var err error
			driver, err = chroma.NewDriver(chroma.Config{URL: server.URL}, logger)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			server.Close()
		})

		It("rejects ids that already exist without calling add", func() {
			doc := vector.Document{ID: "e1", Content: "x", Embedding: []float32{1}}
			Expect(driver.Add(ctx, []vector.Document{doc})).To(Succeed())

			err := driver.Add(ctx, []vector.Document{doc})
			Expect(err).To(MatchError(vector.ErrDuplicateID))
			Expect(fake.adds).To(Equal(1))
		})

		It("sends a single equality as a bare $eq clause", func() {
			_, err := driver.Query(ctx, []float32{1}, vector.Where{"employee_name": "alice"}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.lastQuery["where"]).To(Equal(map[string]any{
				"employee_name": map[string]any{"$eq": "alice"},
			}))
		})

		It("combines several equalities under $and", func() {
			_, err := driver.Query(ctx, []float32{1}, vector.Where{"employee_name": "alice", "status": "Declined"}, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.lastQuery["where"]).To(HaveKey("$and"))
			Expect(fake.lastQuery["where"].(map[string]any)["$and"]).To(HaveLen(2))
		})

		It("omits where when unfiltered and maps documents and distances", func() {
			results, err := driver.Query(ctx, []float32{1}, nil, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(fake.lastQuery).NotTo(HaveKey("where"))
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("e1"))
			Expect(results[0].Content).To(Equal("doc one"))
			Expect(results[0].Distance).To(BeNumerically("~", 0.1, 1e-6))
			Expect(results[1].Metadata["employee_name"]).To(Equal("alice"))
		})
	})

	Describe("Interface compliance", func() {
		It("should implement vector.Driver interface", func() {
			var _ vector.Driver = (*chroma.Driver)(nil)
		})
	})
})
