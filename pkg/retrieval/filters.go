package retrieval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/papercomputeco/clerk/pkg/invoice"
	"github.com/papercomputeco/clerk/pkg/vector"
)

// Filter keys recognized in a FilterBag. Anything else is ignored.
const (
	FilterEmployeeName = invoice.KeyEmployeeName
	FilterStatus       = invoice.KeyStatus
	FilterInvoiceID    = invoice.KeyInvoiceID
	FilterAmount       = "amount"
	FilterDate         = "date"
)

// FilterKeys lists every recognized filter key.
var FilterKeys = []string{
	FilterEmployeeName,
	FilterStatus,
	FilterInvoiceID,
	FilterAmount,
	FilterDate,
}

// FilterBag is the raw set of constraints attached to a query, as produced
// by filter extraction or by API/CLI parameters.
type FilterBag map[string]any

// Partition splits the bag into exact equalities the record store can apply
// and approximate constraints applied after ranking. Constraints that cannot
// be parsed are dropped and returned as errors so callers can log them.
func (b FilterBag) Partition() (vector.Where, Approximate, []error) {
	exact := vector.Where{}
	var (
		approx Approximate
		errs   []error
	)

	for key, raw := range b {
		if isEmpty(raw) {
			continue
		}

		switch key {
		case FilterEmployeeName:
			if name := invoice.NormalizeEmployee(fmt.Sprint(raw)); name != "" {
				exact[FilterEmployeeName] = name
			}

		case FilterStatus:
			// An unrecognized label cannot match any stored record; pass it
			// through so the result is empty rather than unfiltered.
			s := strings.TrimSpace(fmt.Sprint(raw))
			if status, err := invoice.ParseStatus(s); err == nil {
				s = string(status)
			}
			exact[FilterStatus] = s

		case FilterInvoiceID:
			exact[FilterInvoiceID] = strings.TrimSpace(fmt.Sprint(raw))

		case FilterAmount:
			amount, err := ParseAmount(raw)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			approx.Amount = &amount

		case FilterDate:
			date, err := ParseDate(fmt.Sprint(raw))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			approx.Date = &date
		}
	}

	return exact, approx, errs
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseAmount reads an amount from a number, a numeric string or a string
// with a number embedded in it ("around 150", "$1,200.50").
func ParseAmount(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		if m := numberPattern.FindString(s); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f, nil
			}
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmountFilter, n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmountFilter, v)
	}
}

// Precision is the calendar granularity a date filter carries.
type Precision int

const (
	PrecisionDay Precision = iota
	PrecisionMonth
)

func (p Precision) String() string {
	if p == PrecisionMonth {
		return "month"
	}
	return "day"
}

// DateFilter is a parsed date constraint.
type DateFilter struct {
	Time      time.Time
	Precision Precision
}

// Matches reports whether t falls in the same calendar day or month.
func (d DateFilter) Matches(t time.Time) bool {
	if t.Year() != d.Time.Year() || t.Month() != d.Time.Month() {
		return false
	}
	return d.Precision == PrecisionMonth || t.Day() == d.Time.Day()
}

var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var monthLayouts = []string{
	"January 2006",
	"Jan 2006",
	"January, 2006",
	"Jan, 2006",
	"2006-01",
	"01/2006",
	"1/2006",
}

// ParseDate parses s into a day or month precision filter. Month names are
// matched case-insensitively by time.Parse.
func ParseDate(s string) (DateFilter, error) {
	s = strings.Join(strings.Fields(s), " ")

	for _, layout := range dayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateFilter{Time: t, Precision: PrecisionDay}, nil
		}
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateFilter{Time: t, Precision: PrecisionMonth}, nil
		}
	}
	return DateFilter{}, fmt.Errorf("%w: %q", ErrInvalidDateFilter, s)
}

// ParseStoredDate parses a date as written into record metadata.
func ParseStoredDate(s string) (time.Time, error) {
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}
