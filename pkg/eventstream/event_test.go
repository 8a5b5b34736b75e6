package eventstream_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/clerk/pkg/eventstream"
	"github.com/papercomputeco/clerk/pkg/invoice"
)

var _ = Describe("Event", func() {
	It("marshals InvoiceStoredEvent with expected top-level keys", func() {
		event := eventstream.NewInvoiceStoredEvent("jane_doe_receipt_20240510_120000", invoice.Metadata{
			EmployeeName:   "jane_doe",
			Status:         invoice.StatusPartiallyReimbursed,
			TotalAmount:    150,
			ApprovedAmount: 100,
		}, "analyze")

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKeyWithValue("schema_version", BeNumerically("==", 1)))
		Expect(got).To(HaveKeyWithValue("event_type", "clerk.invoice.stored"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKeyWithValue("invoice_id", "jane_doe_receipt_20240510_120000"))
		Expect(got).To(HaveKeyWithValue("employee_name", "jane_doe"))
		Expect(got).To(HaveKeyWithValue("status", "Partially Reimbursed"))
		Expect(got).To(HaveKeyWithValue("approved_amount", BeNumerically("==", 100)))
	})

	It("assigns a fresh event id to every event", func() {
		a := eventstream.NewInvoiceStoredEvent("a", invoice.Metadata{}, "")
		b := eventstream.NewInvoiceStoredEvent("a", invoice.Metadata{}, "")
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("provides ErrNilEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilEvent).To(MatchError("nil invoice event"))
	})
})
