package retrieval_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/retrieval"
	"github.com/papercomputeco/clerk/pkg/vector"
)

var _ = Describe("FilterBag", func() {
	Describe("Partition", func() {
		It("splits exact and approximate constraints", func() {
			exact, approx, errs := retrieval.FilterBag{
				"employee_name": "Jane Doe",
				"status":        "fully reimbursed",
				"invoice_id":    "inv-1",
				"amount":        "around 150",
				"date":          "May 2024",
			}.Partition()

			Expect(errs).To(BeEmpty())
			Expect(exact).To(Equal(vector.Where{
				"employee_name": "jane_doe",
				"status":        "Fully Reimbursed",
				"invoice_id":    "inv-1",
			}))
			Expect(*approx.Amount).To(Equal(150.0))
			Expect(approx.Date.Precision).To(Equal(retrieval.PrecisionMonth))
		})

		It("ignores unrecognized keys and empty values", func() {
			exact, approx, errs := retrieval.FilterBag{
				"color":         "blue",
				"employee_name": "",
				"status":        nil,
			}.Partition()

			Expect(errs).To(BeEmpty())
			Expect(exact).To(BeEmpty())
			Expect(approx.Empty()).To(BeTrue())
		})

		It("drops unparseable approximate constraints and reports them", func() {
			_, approx, errs := retrieval.FilterBag{
				"amount": "a lot",
				"date":   "last tuesday",
			}.Partition()

			Expect(approx.Empty()).To(BeTrue())
			Expect(errs).To(HaveLen(2))
			Expect(errs).To(ContainElement(MatchError(retrieval.ErrInvalidAmountFilter)))
			Expect(errs).To(ContainElement(MatchError(retrieval.ErrInvalidDateFilter)))
		})
	})
})

var _ = Describe("ParseAmount", func() {
	DescribeTable("accepted inputs",
		func(in any, want float64) {
			got, err := retrieval.ParseAmount(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("float", 145.5, 145.5),
		Entry("int", 100, 100.0),
		Entry("numeric string", "150", 150.0),
		Entry("embedded number", "around 150", 150.0),
		Entry("currency with separators", "$1,200.50", 1200.5),
	)

	It("rejects strings without a number", func() {
		_, err := retrieval.ParseAmount("unknown")
		Expect(err).To(MatchError(retrieval.ErrInvalidAmountFilter))
	})

	It("rejects unsupported types", func() {
		_, err := retrieval.ParseAmount([]string{"1"})
		Expect(err).To(MatchError(retrieval.ErrInvalidAmountFilter))
	})
})

var _ = Describe("ParseDate", func() {
	DescribeTable("day precision",
		func(in string, month time.Month) {
			d, err := retrieval.ParseDate(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Precision).To(Equal(retrieval.PrecisionDay))
			Expect(d.Time.Year()).To(Equal(2024))
			Expect(d.Time.Month()).To(Equal(month))
			Expect(d.Time.Day()).To(Equal(10))
		},
		Entry("iso", "2024-05-10", time.May),
		Entry("rfc3339", "2024-05-10T08:30:00Z", time.May),
		Entry("slashes", "2024/05/10", time.May),
		Entry("us", "05/10/2024", time.May),
		Entry("long month", "September 10, 2024", time.September),
		Entry("short month", "Sep 10, 2024", time.September),
		Entry("day first", "10 May 2024", time.May),
		Entry("lowercase month", "may 10, 2024", time.May),
	)

	DescribeTable("month precision",
		func(in string) {
			d, err := retrieval.ParseDate(in)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Precision).To(Equal(retrieval.PrecisionMonth))
			Expect(d.Time.Year()).To(Equal(2024))
			Expect(d.Time.Month()).To(Equal(time.September))
		},
		Entry("long month", "September 2024"),
		Entry("short month", "Sep 2024"),
		Entry("comma", "September, 2024"),
		Entry("iso", "2024-09"),
		Entry("numeric", "09/2024"),
		Entry("uppercase", "SEPTEMBER 2024"),
	)

	It("rejects unknown layouts", func() {
		_, err := retrieval.ParseDate("sometime soon")
		Expect(err).To(MatchError(retrieval.ErrInvalidDateFilter))
	})
})
