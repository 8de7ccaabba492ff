package book

import "github.com/shopspring/decimal"

// Side of the book an order rests on.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Ask {
		return "ask"
	}
	return "bid"
}

// ParseSide maps the wire spelling of a side to its constant.
func ParseSide(s string) (Side, bool) {
	switch s {
	case "bid", "buy":
		return Bid, true
	case "ask", "sell":
		return Ask, true
	default:
		return 0, false
	}
}

// Order is a single resting order. The book owns every Order for its
// whole lifetime: nothing outside this package constructs, copies, or
// frees one.
//
// next/prev are the FIFO queue links inside the order's price level and
// level points back at that level. Together they are what makes removal
// O(1) without scanning the queue.
type Order struct {
	ID    uint64
	Side  Side
	Price decimal.Decimal
	Qty   decimal.Decimal

	// Seq is the logical arrival rank. It is assigned on insert and
	// refreshed when a price amend sends the order to the back of a
	// new queue. Ties inside a level are broken by queue position, so
	// Seq exists for observability, not for ordering.
	Seq uint64

	next, prev *Order
	level      *Level
}

// Next returns the order behind o in its level's queue.
func (o *Order) Next() *Order { return o.next }
