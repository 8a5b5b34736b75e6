// Package analysis decides reimbursement outcomes for invoices against a
// policy and stores them as searchable records.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/clerk/pkg/completion"
	"github.com/papercomputeco/clerk/pkg/invoice"
	"github.com/papercomputeco/clerk/pkg/llm"
	"github.com/papercomputeco/clerk/pkg/retrieval"
)

// Request is one invoice to analyze.
type Request struct {
	PolicyText   string
	EmployeeName string
	InvoiceText  string
}

// Analyzer asks a completion provider for a reimbursement decision.
type Analyzer struct {
	provider completion.Provider
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer backed by provider.
func NewAnalyzer(provider completion.Provider, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		provider: provider,
		logger:   logger,
	}
}

// Analyze returns the outcome for one invoice. Provider failures are
// returned as is; a reply without a JSON object yields ErrMalformedAnalysis.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*invoice.Outcome, error) {
	prompt := llm.AnalyzeInvoicePrompt(req.PolicyText, req.EmployeeName, req.InvoiceText)

	reply, err := a.provider.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("invoice analysis completion failed", "employee_name", req.EmployeeName, "error", err)
		return nil, err
	}

	fields, err := llm.ExtractJSONObject(reply)
	if err != nil {
		a.logger.Error("invoice analysis reply has no JSON", "employee_name", req.EmployeeName, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	return a.outcome(fields), nil
}

func (a *Analyzer) outcome(fields map[string]any) *invoice.Outcome {
	out := &invoice.Outcome{
		Status:         invoice.StatusPartiallyReimbursed,
		Reason:         invoice.DefaultReason,
		ApprovedAmount: max(amountField(fields, invoice.KeyApprovedAmount), 0),
		TotalAmount:    max(amountField(fields, invoice.KeyTotalAmount), 0),
	}

	if raw, ok := fields["status"].(string); ok && strings.TrimSpace(raw) != "" {
		status, err := invoice.ParseStatus(raw)
		if err != nil {
			a.logger.Warn("unknown status in analysis, using default",
				"status", raw,
				"default", out.Status,
			)
		} else {
			out.Status = status
		}
	}

	if reason, ok := fields["reason"].(string); ok && strings.TrimSpace(reason) != "" {
		out.Reason = strings.TrimSpace(reason)
	}

	if raw, ok := fields["invoice_date"].(string); ok && raw != "" {
		if d, err := retrieval.ParseDate(raw); err == nil && d.Precision == retrieval.PrecisionDay {
			out.InvoiceDate = d.Time.Format("2006-01-02")
		}
	}

	return out
}

func amountField(fields map[string]any, key string) float64 {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0
	}
	f, err := retrieval.ParseAmount(v)
	if err != nil {
		return 0
	}
	return f
}
