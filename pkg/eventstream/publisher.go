package eventstream

import "context"

// Publisher publishes invoice events to an event stream backend.
type Publisher interface {
	PublishInvoice(ctx context.Context, event *InvoiceStoredEvent) error
	Close() error
}
