package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/clerk/pkg/invoice"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeInvoiceStored is emitted after an analyzed invoice is stored.
	EventTypeInvoiceStored = "clerk.invoice.stored"
)

// InvoiceStoredEvent is a transport-neutral event payload for a stored invoice.
type InvoiceStoredEvent struct {
	SchemaVersion  int            `json:"schema_version"`
	EventType      string         `json:"event_type"`
	EventID        string         `json:"event_id"`
	EmittedAt      time.Time      `json:"emitted_at"`
	InvoiceID      string         `json:"invoice_id"`
	EmployeeName   string         `json:"employee_name"`
	Status         invoice.Status `json:"status"`
	TotalAmount    float64        `json:"total_amount"`
	ApprovedAmount float64        `json:"approved_amount"`
	Source         string         `json:"source,omitempty"`
}

// NewInvoiceStoredEvent builds an event for a record that was just stored.
func NewInvoiceStoredEvent(id string, m invoice.Metadata, source string) *InvoiceStoredEvent {
	return &InvoiceStoredEvent{
		SchemaVersion:  SchemaVersionV1,
		EventType:      EventTypeInvoiceStored,
		EventID:        uuid.NewString(),
		EmittedAt:      time.Now().UTC(),
		InvoiceID:      id,
		EmployeeName:   m.EmployeeName,
		Status:         m.Status,
		TotalAmount:    m.TotalAmount,
		ApprovedAmount: m.ApprovedAmount,
		Source:         source,
	}
}
