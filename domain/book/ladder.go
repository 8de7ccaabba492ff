package book

import (
	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"
)

// Ladder is one side's price table: an ordered map from price to
// *Level. The comparator direction is the only thing that differs
// between sides: bids sort descending and asks ascending, so the
// leftmost entry is always the best price on either side.
type Ladder struct {
	tree *rbt.Tree
}

// NewLadder returns an empty ladder ordered best-to-worst for side.
func NewLadder(side Side) *Ladder {
	if side == Bid {
		return &Ladder{tree: rbt.NewWith(bidComparator)}
	}
	return &Ladder{tree: rbt.NewWith(askComparator)}
}

// Len returns the number of populated price levels.
func (l *Ladder) Len() int { return l.tree.Size() }

// Find returns the level at price, or nil.
func (l *Ladder) Find(price decimal.Decimal) *Level {
	if v, ok := l.tree.Get(price); ok {
		return v.(*Level)
	}
	return nil
}

// GetOrCreate returns the level at price, inserting an empty one if
// the price is not yet populated. Insertion is the only O(log P)
// path on the way into the book.
func (l *Ladder) GetOrCreate(price decimal.Decimal) *Level {
	if v, ok := l.tree.Get(price); ok {
		return v.(*Level)
	}
	lvl := &Level{Price: price}
	l.tree.Put(price, lvl)
	return lvl
}

// Delete erases the level at price.
func (l *Ladder) Delete(price decimal.Decimal) {
	l.tree.Remove(price)
}

// Best returns the best-priced level, or nil when the side is empty.
func (l *Ladder) Best() *Level {
	n := l.tree.Left()
	if n == nil {
		return nil
	}
	return n.Value.(*Level)
}

// Walk visits levels best-to-worst until fn returns false.
func (l *Ladder) Walk(fn func(*Level) bool) {
	it := l.tree.Iterator()
	for it.Next() {
		if !fn(it.Value().(*Level)) {
			return
		}
	}
}

func askComparator(a, b interface{}) int {
	return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
}

func bidComparator(a, b interface{}) int {
	return b.(decimal.Decimal).Cmp(a.(decimal.Decimal))
}
