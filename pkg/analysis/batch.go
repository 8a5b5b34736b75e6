package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/papercomputeco/clerk/pkg/eventstream"
	"github.com/papercomputeco/clerk/pkg/invoice"
)

// DefaultWorkers is the number of invoices analyzed concurrently.
const DefaultWorkers = 4

// Batch statuses.
const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
	StatusFailure        = "failure"
)

// Invoice is one document of a batch. Err is set when its text could not be
// extracted; such invoices are reported and skipped.
type Invoice struct {
	Name string
	Text string
	Err  error
}

// BatchRequest is a set of invoices submitted by one employee.
type BatchRequest struct {
	EmployeeName string
	PolicyText   string
	Invoices     []Invoice
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Processed  int      `json:"invoices_processed"`
	Errors     []string `json:"errors"`
	InvoiceIDs []string `json:"invoice_ids"`
}

// Inserter is the slice of records.Store a batch needs.
type Inserter interface {
	Insert(ctx context.Context, id, documentText string, metadata invoice.Metadata) error
}

// Enqueuer accepts events for asynchronous publishing.
type Enqueuer interface {
	Enqueue(event *eventstream.InvoiceStoredEvent) bool
}

// BatchConfig wires a Batch.
type BatchConfig struct {
	Analyzer *Analyzer
	Store    Inserter

	// Events is optional.
	Events Enqueuer

	// Workers defaults to DefaultWorkers.
	Workers int

	Logger *slog.Logger
}

// Batch analyzes and stores many invoices concurrently.
type Batch struct {
	analyzer *Analyzer
	store    Inserter
	events   Enqueuer
	workers  int
	logger   *slog.Logger
	now      func() time.Time
}

// NewBatch creates a batch runner.
func NewBatch(c BatchConfig) *Batch {
	workers := c.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Batch{
		analyzer: c.Analyzer,
		store:    c.Store,
		events:   c.Events,
		workers:  workers,
		logger:   c.Logger,
		now:      time.Now,
	}
}

type invoiceOutcome struct {
	id  string
	err string
}

// Run analyzes every invoice in req. A failure affects only its own invoice;
// errors are reported in input order.
func (b *Batch) Run(ctx context.Context, req BatchRequest) BatchResult {
	outcomes := make([]invoiceOutcome, len(req.Invoices))

	pool, err := ants.NewPool(b.workers)
	if err != nil {
		b.logger.Error("creating analysis pool failed, running sequentially", "error", err)
		for i, inv := range req.Invoices {
			outcomes[i] = b.process(ctx, req, inv)
		}
		return b.summarize(outcomes)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, inv := range req.Invoices {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			outcomes[i] = b.process(ctx, req, inv)
		})
		if err != nil {
			wg.Done()
			outcomes[i] = invoiceOutcome{err: fmt.Sprintf("Error processing %s: %v", inv.Name, err)}
		}
	}
	wg.Wait()

	return b.summarize(outcomes)
}

func (b *Batch) process(ctx context.Context, req BatchRequest, inv Invoice) invoiceOutcome {
	if inv.Err != nil {
		b.logger.Error("invoice text extraction failed", "file", inv.Name, "error", inv.Err)
		return invoiceOutcome{err: fmt.Sprintf("Error processing %s: %v", inv.Name, inv.Err)}
	}

	outcome, err := b.analyzer.Analyze(ctx, Request{
		PolicyText:   req.PolicyText,
		EmployeeName: req.EmployeeName,
		InvoiceText:  inv.Text,
	})
	if err != nil {
		b.logger.Error("invoice analysis failed", "file", inv.Name, "error", err)
		return invoiceOutcome{err: fmt.Sprintf("Error processing %s: %v", inv.Name, err)}
	}

	employee := invoice.NormalizeEmployee(req.EmployeeName)
	id := invoice.NewID(employee, inv.Name, b.now())
	metadata := invoice.Metadata{
		EmployeeName:   employee,
		Status:         outcome.Status,
		ApprovedAmount: outcome.ApprovedAmount,
		TotalAmount:    outcome.TotalAmount,
		Date:           outcome.InvoiceDate,
		InvoiceID:      id,
		Reason:         outcome.Reason,
	}
	document := invoice.DocumentText(employee, string(outcome.Status), outcome.Reason, inv.Text)

	if err := b.store.Insert(ctx, id, document, metadata); err != nil {
		b.logger.Error("storing invoice analysis failed", "file", inv.Name, "invoice_id", id, "error", err)
		return invoiceOutcome{err: fmt.Sprintf("Failed to store analysis for %s", inv.Name)}
	}

	b.logger.Info("invoice analyzed",
		"invoice_id", id,
		"status", outcome.Status,
		"total_amount", outcome.TotalAmount,
		"approved_amount", outcome.ApprovedAmount,
	)

	if b.events != nil {
		b.events.Enqueue(eventstream.NewInvoiceStoredEvent(id, metadata, "analyze"))
	}
	return invoiceOutcome{id: id}
}

func (b *Batch) summarize(outcomes []invoiceOutcome) BatchResult {
	result := BatchResult{
		Errors:     []string{},
		InvoiceIDs: []string{},
	}
	for _, o := range outcomes {
		if o.err != "" {
			result.Errors = append(result.Errors, o.err)
			continue
		}
		result.Processed++
		result.InvoiceIDs = append(result.InvoiceIDs, o.id)
	}

	switch {
	case len(result.Errors) == 0:
		result.Status = StatusSuccess
	case result.Processed > 0:
		result.Status = StatusPartialSuccess
	default:
		result.Status = StatusFailure
	}
	result.Message = fmt.Sprintf("Successfully processed %d invoice(s)", result.Processed)

	b.logger.Info("invoice batch complete",
		"status", result.Status,
		"processed", result.Processed,
		"errors", len(result.Errors),
	)
	return result
}
