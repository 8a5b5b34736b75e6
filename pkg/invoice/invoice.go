// Package invoice holds the invoice record model shared by the record store,
// the retrieval pipeline and the analysis batch.
package invoice

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Metadata keys as persisted alongside each record.
const (
	KeyEmployeeName   = "employee_name"
	KeyStatus         = "status"
	KeyApprovedAmount = "approved_amount"
	KeyTotalAmount    = "total_amount"
	KeyDate           = "date"
	KeyInvoiceID      = "invoice_id"
	KeyStoredAt       = "stored_at"
	KeyReason         = "reason"
)

// DefaultReason is used when an analysis does not explain its decision.
const DefaultReason = "No reason provided"

// Record is a stored, analyzed invoice.
type Record struct {
	ID       string
	Document string
	Metadata Metadata
}

// Metadata is the structured outcome stored with every record.
type Metadata struct {
	EmployeeName   string  `json:"employee_name"`
	Status         Status  `json:"status"`
	ApprovedAmount float64 `json:"approved_amount"`
	TotalAmount    float64 `json:"total_amount"`
	Date           string  `json:"date"`
	InvoiceID      string  `json:"invoice_id"`
	StoredAt       string  `json:"stored_at,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// Normalize returns a copy with the employee name normalized and negative
// amounts clamped to zero.
func (m Metadata) Normalize() Metadata {
	m.EmployeeName = NormalizeEmployee(m.EmployeeName)
	if s, err := ParseStatus(string(m.Status)); err == nil {
		m.Status = s
	}
	m.ApprovedAmount = max(m.ApprovedAmount, 0)
	m.TotalAmount = max(m.TotalAmount, 0)
	return m
}

// Map flattens the metadata into the scalar map handed to vector drivers.
func (m Metadata) Map() map[string]any {
	out := map[string]any{
		KeyEmployeeName:   m.EmployeeName,
		KeyStatus:         string(m.Status),
		KeyApprovedAmount: m.ApprovedAmount,
		KeyTotalAmount:    m.TotalAmount,
		KeyDate:           m.Date,
		KeyInvoiceID:      m.InvoiceID,
	}
	if m.StoredAt != "" {
		out[KeyStoredAt] = m.StoredAt
	}
	if m.Reason != "" {
		out[KeyReason] = m.Reason
	}
	return out
}

// MetadataFromMap is the inverse of Map. Missing or mistyped fields are left
// at their zero value.
func MetadataFromMap(raw map[string]any) Metadata {
	return Metadata{
		EmployeeName:   stringField(raw, KeyEmployeeName),
		Status:         Status(stringField(raw, KeyStatus)),
		ApprovedAmount: floatField(raw, KeyApprovedAmount),
		TotalAmount:    floatField(raw, KeyTotalAmount),
		Date:           stringField(raw, KeyDate),
		InvoiceID:      stringField(raw, KeyInvoiceID),
		StoredAt:       stringField(raw, KeyStoredAt),
		Reason:         stringField(raw, KeyReason),
	}
}

// NormalizeEmployee lowercases a name and replaces whitespace runs with "_".
func NormalizeEmployee(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// DocumentText renders the text that gets embedded for a record.
func DocumentText(employee, status, reason, raw string) string {
	return fmt.Sprintf("Employee: %s\nStatus: %s\nReason: %s\nInvoice Content: %s",
		employee, status, reason, raw)
}

// NewID builds a record id of the form <employee>_<stem>_<YYYYMMDD_HHMMSS>.
func NewID(employee, filename string, at time.Time) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s_%s", NormalizeEmployee(employee), stem, at.Format("20060102_150405"))
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func floatField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
