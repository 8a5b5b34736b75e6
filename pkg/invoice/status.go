package invoice

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the reimbursement decision for an invoice.
type Status string

const (
	StatusFullyReimbursed     Status = "Fully Reimbursed"
	StatusPartiallyReimbursed Status = "Partially Reimbursed"
	StatusDeclined            Status = "Declined"
)

// ErrUnknownStatus is returned by ParseStatus for labels outside the three
// known decisions.
var ErrUnknownStatus = errors.New("unknown reimbursement status")

// Statuses lists every known status in display order.
var Statuses = []Status{StatusFullyReimbursed, StatusPartiallyReimbursed, StatusDeclined}

// ParseStatus maps "Fully Reimbursed", "FullyReimbursed", "fully_reimbursed"
// and similar spellings onto the canonical label.
func ParseStatus(s string) (Status, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "fullyreimbursed":
		return StatusFullyReimbursed, nil
	case "partiallyreimbursed":
		return StatusPartiallyReimbursed, nil
	case "declined":
		return StatusDeclined, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s Status) String() string {
	return string(s)
}
