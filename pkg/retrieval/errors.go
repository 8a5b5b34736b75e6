package retrieval

import "errors"

var (
	// ErrInvalidAmountFilter is reported when an amount filter has no number in it.
	ErrInvalidAmountFilter = errors.New("invalid amount filter")

	// ErrInvalidDateFilter is reported when a date filter matches no known layout.
	ErrInvalidDateFilter = errors.New("invalid date filter")
)
