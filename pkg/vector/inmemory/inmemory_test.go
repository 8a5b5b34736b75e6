package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/vector"
	"github.com/papercomputeco/clerk/pkg/vector/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		ctx = context.Background()

		Expect(driver.Add(ctx, []vector.Document{
			{ID: "a", Content: "a", Embedding: []float32{0, 0}, Metadata: map[string]any{"employee_name": "alice"}},
			{ID: "b", Content: "b", Embedding: []float32{3, 4}, Metadata: map[string]any{"employee_name": "bob"}},
			{ID: "c", Content: "c", Embedding: []float32{1, 0}, Metadata: map[string]any{"employee_name": "alice"}},
		})).To(Succeed())
	})

	Describe("Add", func() {
		It("rejects an id that is already stored", func() {
			err := driver.Add(ctx, []vector.Document{{ID: "a", Embedding: []float32{9, 9}}})
			Expect(err).To(MatchError(vector.ErrDuplicateID))

			docs, err := driver.Get(ctx, []string{"a"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs[0].Embedding).To(Equal([]float32{0, 0}))
		})

		It("rejects a batch that repeats an id and stores none of it", func() {
			err := driver.Add(ctx, []vector.Document{{ID: "d"}, {ID: "d"}})
			Expect(err).To(MatchError(vector.ErrDuplicateID))
			Expect(driver.Len()).To(Equal(3))
		})
	})

	Describe("Query", func() {
		It("orders by squared L2 distance", func() {
			results, err := driver.Query(ctx, []float32{0, 0}, nil, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ID).To(Equal("a"))
			Expect(results[1].ID).To(Equal("c"))
			Expect(results[2].ID).To(Equal("b"))
			Expect(results[2].Distance).To(Equal(float32(25)))
		})

		It("applies exact metadata filters before ranking", func() {
			results, err := driver.Query(ctx, []float32{3, 4}, vector.Where{"employee_name": "alice"}, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			for _, r := range results {
				Expect(r.Metadata["employee_name"]).To(Equal("alice"))
			}
		})

		It("keeps insertion order on equal distances", func() {
			Expect(driver.Add(ctx, []vector.Document{
				{ID: "x", Embedding: []float32{7, 7}},
				{ID: "y", Embedding: []float32{7, 7}},
			})).To(Succeed())

			results, err := driver.Query(ctx, []float32{7, 7}, nil, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].ID).To(Equal("x"))
			Expect(results[1].ID).To(Equal("y"))
		})

		It("truncates to topK", func() {
			results, err := driver.Query(ctx, []float32{0, 0}, nil, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
		})

		It("returns nothing from an empty store", func() {
			results, err := inmemory.NewDriver().Query(ctx, []float32{0, 0}, nil, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("skips unknown ids", func() {
			docs, err := driver.Get(ctx, []string{"b", "zzz"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("b"))
		})
	})
})
