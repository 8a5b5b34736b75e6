package retrieval_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/invoice"
	"github.com/papercomputeco/clerk/pkg/records"
	"github.com/papercomputeco/clerk/pkg/retrieval"
)

func result(id string, total float64, date string) records.Result {
	return records.Result{
		ID:       id,
		Metadata: invoice.Metadata{TotalAmount: total, Date: date},
	}
}

func ids(results []records.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func amount(v float64) *float64 { return &v }

func date(s string) *retrieval.DateFilter {
	d, err := retrieval.ParseDate(s)
	Expect(err).NotTo(HaveOccurred())
	return &d
}

var _ = Describe("Approximate", func() {
	It("passes everything through when no constraint is active", func() {
		in := []records.Result{result("a", 1, "garbage"), result("b", 2, "")}
		Expect(retrieval.Approximate{}.Apply(in)).To(Equal(in))
	})

	DescribeTable("amount tolerance",
		func(requested, total float64, kept bool) {
			out := retrieval.Approximate{Amount: amount(requested)}.Apply(
				[]records.Result{result("a", total, "2024-05-10")},
			)
			if kept {
				Expect(out).To(HaveLen(1))
			} else {
				Expect(out).To(BeEmpty())
			}
		},
		Entry("exact", 100.0, 100.0, true),
		Entry("upper boundary", 100.0, 120.0, true),
		Entry("lower boundary", 100.0, 80.0, true),
		Entry("just past", 100.0, 121.0, false),
		Entry("just under", 100.0, 79.0, false),
	)

	It("matches month precision on year and month", func() {
		out := retrieval.Approximate{Date: date("May 2024")}.Apply([]records.Result{
			result("a", 0, "2024-05-01"),
			result("b", 0, "2024-05-31T23:00:00Z"),
			result("c", 0, "2024-06-01"),
			result("d", 0, "2023-05-10"),
		})
		Expect(ids(out)).To(Equal([]string{"a", "b"}))
	})

	It("matches day precision on the calendar day", func() {
		out := retrieval.Approximate{Date: date("2024-05-10")}.Apply([]records.Result{
			result("a", 0, "2024-05-10T14:22:01Z"),
			result("b", 0, "2024-05-11"),
		})
		Expect(ids(out)).To(Equal([]string{"a"}))
	})

	It("drops candidates whose stored date does not parse", func() {
		out := retrieval.Approximate{Date: date("May 2024")}.Apply([]records.Result{
			result("a", 0, "not a date"),
			result("b", 0, ""),
			result("c", 0, "2024-05-02"),
		})
		Expect(ids(out)).To(Equal([]string{"c"}))
	})

	It("requires every active constraint and preserves order", func() {
		in := []records.Result{
			result("a", 150, "2024-05-10"),
			result("b", 300, "2024-05-10"),
			result("c", 140, "2024-04-10"),
			result("d", 160, "2024-05-20"),
		}
		both := retrieval.Approximate{Amount: amount(150), Date: date("May 2024")}

		Expect(ids(both.Apply(in))).To(Equal([]string{"a", "d"}))

		amountFirst := retrieval.Approximate{Date: date("May 2024")}.Apply(
			retrieval.Approximate{Amount: amount(150)}.Apply(in),
		)
		dateFirst := retrieval.Approximate{Amount: amount(150)}.Apply(
			retrieval.Approximate{Date: date("May 2024")}.Apply(in),
		)
		Expect(ids(amountFirst)).To(Equal(ids(dateFirst)))
	})
})
