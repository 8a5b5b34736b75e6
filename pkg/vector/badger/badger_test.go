package badger_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	clerklogger "github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/vector"
	"github.com/papercomputeco/clerk/pkg/vector/badger"
)

var _ = Describe("Driver", func() {
	var (
		driver *badger.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = badger.NewDriver(badger.Config{InMemory: true}, clerklogger.Nop())
		Expect(err).NotTo(HaveOccurred())

		Expect(driver.Add(ctx, []vector.Document{
			{ID: "a", Content: "alpha", Embedding: []float32{0, 0}, Metadata: map[string]any{"employee_name": "alice"}},
			{ID: "b", Content: "beta", Embedding: []float32{2, 0}, Metadata: map[string]any{"employee_name": "bob"}},
			{ID: "c", Content: "gamma", Embedding: []float32{1, 0}, Metadata: map[string]any{"employee_name": "alice"}},
		})).To(Succeed())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	It("requires a path unless in memory", func() {
		_, err := badger.NewDriver(badger.Config{}, clerklogger.Nop())
		Expect(err).To(MatchError(ContainSubstring("badger path is required")))
	})

	It("rejects an existing id", func() {
		err := driver.Add(ctx, []vector.Document{{ID: "a", Content: "other"}})
		Expect(err).To(MatchError(vector.ErrDuplicateID))

		docs, err := driver.Get(ctx, []string{"a"})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs[0].Content).To(Equal("alpha"))
	})

	It("ranks by distance", func() {
		results, err := driver.Query(ctx, []float32{2, 0}, nil, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].ID).To(Equal("b"))
		Expect(results[1].ID).To(Equal("c"))
		Expect(results[2].ID).To(Equal("a"))
	})

	It("applies exact filters", func() {
		results, err := driver.Query(ctx, []float32{2, 0}, vector.Where{"employee_name": "alice"}, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ID).To(Equal("c"))
		Expect(results[0].Content).To(Equal("gamma"))
	})

	It("breaks distance ties by insertion order", func() {
		Expect(driver.Add(ctx, []vector.Document{
			{ID: "x", Embedding: []float32{5, 5}},
			{ID: "y", Embedding: []float32{5, 5}},
		})).To(Succeed())

		results, err := driver.Query(ctx, []float32{5, 5}, nil, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect([]string{results[0].ID, results[1].ID}).To(Equal([]string{"x", "y"}))
	})

	It("skips unknown ids on Get", func() {
		docs, err := driver.Get(ctx, []string{"c", "nope"})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Metadata).To(HaveKeyWithValue("employee_name", "alice"))
	})
})
