package invoice

// Outcome is the result of analyzing one invoice against a policy.
type Outcome struct {
	Status         Status  `json:"status"`
	Reason         string  `json:"reason"`
	ApprovedAmount float64 `json:"approved_amount"`
	TotalAmount    float64 `json:"total_amount"`

	// InvoiceDate is the date printed on the invoice, if the analysis found one.
	InvoiceDate string `json:"invoice_date,omitempty"`
}
