// Package llm holds the prompts sent to completion providers and the helpers
// that read structured data back out of their replies.
package llm

import (
	"fmt"
	"strings"
)

// AnalyzeInvoicePrompt asks for a reimbursement decision on one invoice.
func AnalyzeInvoicePrompt(policyText, employeeName, invoiceText string) string {
	return fmt.Sprintf(`You are an expert financial analyst. Analyze the following employee invoice against the company reimbursement policy.

COMPANY POLICY:
%s

EMPLOYEE INVOICE:
Employee: %s
Invoice Content: %s

Based on the policy, determine:
1. Reimbursement Status: "Fully Reimbursed", "Partially Reimbursed", or "Declined"
2. Detailed reason for the status
3. If partially reimbursed, the approved amount
4. The invoice date, if one is printed on the invoice

Return ONLY valid JSON with these fields:
{
  "status": "Fully Reimbursed | Partially Reimbursed | Declined",
  "reason": "string",
  "approved_amount": 0.0,
  "total_amount": 0.0,
  "invoice_date": "YYYY-MM-DD or null"
}`, policyText, employeeName, invoiceText)
}

// FilterExtractionPrompt asks for the structured filters mentioned in a query.
func FilterExtractionPrompt(query string) string {
	return fmt.Sprintf(`You extract structured filters from employee invoice reimbursement queries.

USER QUERY:
%q

Return ONLY valid JSON with the following fields, using null for anything not mentioned:
- "employee_name": string, lower case with spaces replaced by "_"
- "status": one of "Fully Reimbursed", "Partially Reimbursed", "Declined"
- "invoice_id": string
- "date": "YYYY-MM-DD" for an exact day or an approximate month such as "May 2024"
- "amount": a number, or an approximate amount such as "around 150"

Example:
{
  "employee_name": "ronit_shah",
  "status": "Fully Reimbursed",
  "invoice_id": null,
  "date": "May 2024",
  "amount": 150
}`, query)
}

// ChatResponsePrompt asks for an answer grounded in retrieved invoices.
func ChatResponsePrompt(history, context, query string) string {
	if strings.TrimSpace(history) == "" {
		history = "(none)"
	}
	if strings.TrimSpace(context) == "" {
		context = "(no matching invoices)"
	}

	return fmt.Sprintf(`You are a helpful assistant for an invoice reimbursement system.
Answer the user's query using the context retrieved from the invoice database.

CHAT HISTORY:
%s

CONTEXT FROM INVOICE DATABASE:
%s

USER QUERY: %s

Respond in markdown. If no relevant information is found, say so politely and
suggest what information might help.`, history, context, query)
}
