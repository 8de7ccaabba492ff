package book

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"depthbook/infra/memory"
	"depthbook/infra/sequence"
)

// Book maintains the resting-order state of one instrument: two price
// ladders, the order index, and the arena pool the records live in.
// It never matches: a bid may rest above the best ask and both stay
// put. Crossing semantics belong to whatever sits on top.
//
// One mutation touches the index, an order record, and up to two
// levels, so every operation runs under a single mutex. The structures
// must never be observable in a partially-updated state, which is why
// there is no per-side or per-level locking.
type Book struct {
	mu    sync.Mutex
	bids  *Ladder
	asks  *Ladder
	index map[uint64]*Order

	pool     *memory.Pool[Order]
	ids      *sequence.Sequencer
	arrivals *sequence.Sequencer

	// version bumps on every successful mutation; feed publishers use
	// it to skip idle ticks.
	version uint64
}

// New returns an empty book.
func New() *Book {
	return &Book{
		bids:     NewLadder(Bid),
		asks:     NewLadder(Ask),
		index:    make(map[uint64]*Order, 1024),
		pool:     memory.NewPool(func() *Order { return &Order{} }),
		ids:      sequence.New(0),
		arrivals: sequence.New(0),
	}
}

// NewOrder rests a new order and returns its id. Ids are strictly
// increasing and never reused. The order joins the back of its price
// level's queue; a new level costs O(log P), everything else O(1).
func (b *Book) NewOrder(side Side, price, qty decimal.Decimal) (uint64, error) {
	if !price.IsPositive() {
		return 0, ErrInvalidPrice
	}
	if !qty.IsPositive() {
		return 0, ErrInvalidQuantity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o := b.pool.Get()
	*o = Order{
		ID:    b.ids.Next(),
		Side:  side,
		Price: price,
		Qty:   qty,
		Seq:   b.arrivals.Next(),
	}
	b.index[o.ID] = o
	b.ladder(side).GetOrCreate(price).enqueue(o)
	b.version++
	return o.ID, nil
}

// CancelOrder removes a resting order. ErrOrderNotFound for unknown or
// already-removed ids, with no side effects.
func (b *Book) CancelOrder(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[id]
	if !ok {
		return ErrOrderNotFound
	}
	b.detach(o)
	b.release(o)
	b.version++
	return nil
}

// AmendOrder updates a resting order's price and/or quantity.
//
// Quantity-only amends keep queue position: changing size without
// moving price does not forfeit time priority. A price amend is a
// cancel-and-reinsert that preserves the id; the order drops to the
// back of the new level's queue.
//
// Amending quantity to exactly zero cancels the order outright, so a
// level can never carry a zero-quantity member.
func (b *Book) AmendOrder(id uint64, newPrice, newQty decimal.Decimal) error {
	if !newPrice.IsPositive() {
		return ErrInvalidPrice
	}
	if newQty.IsNegative() {
		return ErrInvalidQuantity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o, ok := b.index[id]
	if !ok {
		return ErrOrderNotFound
	}

	switch {
	case newQty.IsZero():
		b.detach(o)
		b.release(o)
	case o.Price.Equal(newPrice):
		delta := newQty.Sub(o.Qty)
		o.Qty = newQty
		o.level.TotalQty = o.level.TotalQty.Add(delta)
		if !o.level.TotalQty.IsPositive() {
			panic(fmt.Sprintf("book: level %s total %s after amend of order %d", o.Price, o.level.TotalQty, o.ID))
		}
	default:
		b.detach(o)
		o.Price = newPrice
		o.Qty = newQty
		o.Seq = b.arrivals.Next()
		b.ladder(o.Side).GetOrCreate(newPrice).enqueue(o)
	}
	b.version++
	return nil
}

// Depth returns the top-N levels per side, best-to-worst. Fewer than
// depth entries come back when a side is shallower.
func (b *Book) Depth(depth int) DepthSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return DepthSnapshot{
		Bids: topLevels(b.bids, depth),
		Asks: topLevels(b.asks, depth),
	}
}

// BBO returns the best level of each side, nil where a side is empty.
func (b *Book) BBO() Quote {
	b.mu.Lock()
	defer b.mu.Unlock()

	var q Quote
	if lvl := b.bids.Best(); lvl != nil {
		q.Bid = &PriceLevel{Price: lvl.Price, Qty: lvl.TotalQty}
	}
	if lvl := b.asks.Best(); lvl != nil {
		q.Ask = &PriceLevel{Price: lvl.Price, Qty: lvl.TotalQty}
	}
	return q
}

// Len returns the number of live resting orders.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.index)
}

// Version returns the mutation counter.
func (b *Book) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// BidsWalk visits bid levels best-to-worst under the book lock. The
// callback must not mutate the book and must not retain the levels.
func (b *Book) BidsWalk(fn func(*Level) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bids.Walk(fn)
}

// AsksWalk is BidsWalk for the ask side.
func (b *Book) AsksWalk(fn func(*Level) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.asks.Walk(fn)
}

// Export returns every resting order plus the id and arrival
// high-water marks, all under one lock so the result is a consistent
// cut. Orders come out bids-then-asks, best-to-worst, FIFO within a
// level, which is the order Restore needs them back in.
func (b *Book) Export() (orders []OrderSnapshot, lastID, lastArrival uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	orders = make([]OrderSnapshot, 0, len(b.index))
	collect := func(l *Ladder) {
		l.Walk(func(lvl *Level) bool {
			for o := lvl.head; o != nil; o = o.next {
				orders = append(orders, OrderSnapshot{
					ID: o.ID, Side: o.Side, Price: o.Price, Qty: o.Qty, Seq: o.Seq,
				})
			}
			return true
		})
	}
	collect(b.bids)
	collect(b.asks)
	return orders, b.ids.Current(), b.arrivals.Current()
}

// Restore re-inserts an order with an explicit id and arrival rank.
// Only snapshot loading uses this; orders must arrive in queue order
// per level so FIFO priority survives the round trip.
func (b *Book) Restore(id uint64, side Side, price, qty decimal.Decimal, seq uint64) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if !qty.IsPositive() {
		return ErrInvalidQuantity
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.index[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrderID, id)
	}
	o := b.pool.Get()
	*o = Order{ID: id, Side: side, Price: price, Qty: qty, Seq: seq}
	b.index[o.ID] = o
	b.ladder(side).GetOrCreate(price).enqueue(o)
	b.version++
	return nil
}

// FastForward advances the id and arrival counters after a snapshot
// load so ids from before the snapshot are never reissued.
func (b *Book) FastForward(lastID, lastArrival uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lastID > b.ids.Current() {
		b.ids.Reset(lastID)
	}
	if lastArrival > b.arrivals.Current() {
		b.arrivals.Reset(lastArrival)
	}
}

func (b *Book) ladder(side Side) *Ladder {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

// detach removes o from its level, erasing the level if it empties.
// The ladder lookup cross-checks the order's recorded level pointer;
// a mismatch means the three structures have desynchronized, which is
// a bug and not a recoverable condition.
func (b *Book) detach(o *Order) {
	lad := b.ladder(o.Side)
	lvl := lad.Find(o.Price)
	if lvl == nil || lvl != o.level {
		panic(fmt.Sprintf("book: order %d recorded at %s %s but level lookup disagrees", o.ID, o.Side, o.Price))
	}
	lvl.unlink(o)
	if lvl.Count() == 0 {
		lad.Delete(lvl.Price)
	}
}

// release drops the index entry and recycles the record. Only valid
// after detach.
func (b *Book) release(o *Order) {
	delete(b.index, o.ID)
	*o = Order{}
	b.pool.Put(o)
}

func topLevels(l *Ladder, depth int) []PriceLevel {
	if depth <= 0 {
		return nil
	}
	out := make([]PriceLevel, 0, depth)
	l.Walk(func(lvl *Level) bool {
		out = append(out, PriceLevel{Price: lvl.Price, Qty: lvl.TotalQty})
		return len(out) < depth
	})
	return out
}
