package analysis_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/analysis"
	clerklogger "github.com/papercomputeco/clerk/pkg/logger"
	"github.com/papercomputeco/clerk/pkg/records"
	testutils "github.com/papercomputeco/clerk/pkg/utils/test"
	"github.com/papercomputeco/clerk/pkg/vector/inmemory"
	"github.com/papercomputeco/clerk/pkg/worker"
)

var _ = Describe("Batch", func() {
	var (
		ctx       context.Context
		provider  *testutils.MockCompletion
		driver    *inmemory.Driver
		store     *records.Store
		publisher *testutils.MockPublisher
		events    *worker.Pool
		batch     *analysis.Batch
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = testutils.NewMockCompletion().
			On("TAXI-RIDE", `{"status": "Fully Reimbursed", "reason": "Within policy", "approved_amount": 30, "total_amount": 30}`).
			On("HOTEL-STAY", `{"status": "Declined", "reason": "Not covered", "approved_amount": 0, "total_amount": 400, "invoice_date": "2024-05-10"}`).
			On("GARBLED", "no idea")
		driver = inmemory.NewDriver()
		store = records.NewStore(records.Config{
			Driver:   driver,
			Embedder: testutils.NewMockEmbedder(),
			Logger:   clerklogger.Nop(),
		})
		publisher = testutils.NewMockPublisher()
		var err error
		events, err = worker.NewPool(&worker.Config{Publisher: publisher, Logger: clerklogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
		batch = analysis.NewBatch(analysis.BatchConfig{
			Analyzer: analysis.NewAnalyzer(provider, clerklogger.Nop()),
			Store:    store,
			Events:   events,
			Workers:  2,
			Logger:   clerklogger.Nop(),
		})
	})

	AfterEach(func() {
		events.Close()
	})

	It("stores every analyzed invoice", func() {
		result := batch.Run(ctx, analysis.BatchRequest{
			EmployeeName: "Jane Doe",
			PolicyText:   "policy",
			Invoices: []analysis.Invoice{
				{Name: "taxi.pdf", Text: "TAXI-RIDE 30.00"},
				{Name: "hotel.pdf", Text: "HOTEL-STAY 400.00"},
			},
		})

		Expect(result.Status).To(Equal(analysis.StatusSuccess))
		Expect(result.Processed).To(Equal(2))
		Expect(result.Errors).To(BeEmpty())
		Expect(result.Message).To(Equal("Successfully processed 2 invoice(s)"))
		Expect(result.InvoiceIDs).To(HaveLen(2))
		Expect(result.InvoiceIDs[0]).To(HavePrefix("jane_doe_taxi_"))
		Expect(result.InvoiceIDs[1]).To(HavePrefix("jane_doe_hotel_"))
		Expect(driver.Len()).To(Equal(2))

		docs, err := driver.Get(ctx, []string{result.InvoiceIDs[1]})
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(docs[0].Content).To(HavePrefix("Employee: jane_doe\nStatus: Declined\nReason: Not covered"))
		Expect(docs[0].Metadata).To(HaveKeyWithValue("date", "2024-05-10"))
		Expect(docs[0].Metadata).To(HaveKeyWithValue("total_amount", 400.0))

		events.Close()
		published := make([]string, 0)
		for _, e := range publisher.Events() {
			published = append(published, e.InvoiceID)
			Expect(e.EmployeeName).To(Equal("jane_doe"))
		}
		Expect(published).To(ConsistOf(result.InvoiceIDs))
	})

	It("reports per invoice failures in input order", func() {
		result := batch.Run(ctx, analysis.BatchRequest{
			EmployeeName: "Jane Doe",
			PolicyText:   "policy",
			Invoices: []analysis.Invoice{
				{Name: "bad.pdf", Err: errors.New("unreadable pdf")},
				{Name: "taxi.pdf", Text: "TAXI-RIDE 30.00"},
				{Name: "garbled.pdf", Text: "GARBLED"},
			},
		})

		Expect(result.Status).To(Equal(analysis.StatusPartialSuccess))
		Expect(result.Processed).To(Equal(1))
		Expect(result.Errors).To(HaveLen(2))
		Expect(result.Errors[0]).To(Equal("Error processing bad.pdf: unreadable pdf"))
		Expect(result.Errors[1]).To(HavePrefix("Error processing garbled.pdf: "))
		Expect(driver.Len()).To(Equal(1))
	})

	It("reports storage failures", func() {
		mock := testutils.NewMockVectorDriver()
		mock.AddErr = errors.New("disk full")
		failing := analysis.NewBatch(analysis.BatchConfig{
			Analyzer: analysis.NewAnalyzer(provider, clerklogger.Nop()),
			Store: records.NewStore(records.Config{
				Driver:   mock,
				Embedder: testutils.NewMockEmbedder(),
				Logger:   clerklogger.Nop(),
			}),
			Logger: clerklogger.Nop(),
		})

		result := failing.Run(ctx, analysis.BatchRequest{
			EmployeeName: "Jane Doe",
			Invoices:     []analysis.Invoice{{Name: "taxi.pdf", Text: "TAXI-RIDE"}},
		})
		Expect(result.Status).To(Equal(analysis.StatusFailure))
		Expect(result.Errors).To(Equal([]string{"Failed to store analysis for taxi.pdf"}))
	})

	It("fails the whole batch only when nothing is stored", func() {
		provider.FailAll = true
		result := batch.Run(ctx, analysis.BatchRequest{
			EmployeeName: "Jane Doe",
			Invoices: []analysis.Invoice{
				{Name: "a.pdf", Text: "TAXI-RIDE"},
				{Name: "b.pdf", Text: "HOTEL-STAY"},
			},
		})

		Expect(result.Status).To(Equal(analysis.StatusFailure))
		Expect(result.Processed).To(BeZero())
		Expect(result.Errors).To(HaveLen(2))
		for _, e := range result.Errors {
			Expect(strings.HasPrefix(e, "Error processing ")).To(BeTrue())
		}
	})

	It("succeeds trivially on an empty batch", func() {
		result := batch.Run(ctx, analysis.BatchRequest{EmployeeName: "Jane Doe"})
		Expect(result.Status).To(Equal(analysis.StatusSuccess))
		Expect(result.Errors).NotTo(BeNil())
		Expect(result.InvoiceIDs).NotTo(BeNil())
	})
})
