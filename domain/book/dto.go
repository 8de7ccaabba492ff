package book

import "github.com/shopspring/decimal"

// PriceLevel is the aggregated read-only view of one level.
type PriceLevel struct {
	Price decimal.Decimal
	Qty   decimal.Decimal
}

// DepthSnapshot is a bounded top-N view of both sides, best-to-worst.
type DepthSnapshot struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// Quote is the best bid and offer. A nil side means no resting
// liquidity there, never a zero-price sentinel.
type Quote struct {
	Bid *PriceLevel
	Ask *PriceLevel
}

// OrderSnapshot is one exported resting order.
type OrderSnapshot struct {
	ID    uint64
	Side  Side
	Price decimal.Decimal
	Qty   decimal.Decimal
	Seq   uint64
}
