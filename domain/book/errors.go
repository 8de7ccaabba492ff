package book

import "errors"

var (
	// ErrOrderNotFound is returned by cancel/amend for ids that were
	// never issued or are no longer resting. The book is untouched.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidPrice is returned for a non-positive price. Rejected
	// before any mutation.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrInvalidQuantity is returned for a non-positive quantity on
	// insert, or a negative quantity on amend.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrDuplicateOrderID is returned by Restore when a snapshot
	// carries the same id twice.
	ErrDuplicateOrderID = errors.New("duplicate order id")
)
