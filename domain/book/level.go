package book

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Level aggregates all resting orders at one price on one side.
// Orders are kept in a doubly-linked FIFO: head is the earliest
// arrival and therefore the highest priority at this price.
//
// A Level only ever exists inside a Ladder while it has members;
// the book erases it the moment its last order leaves.
type Level struct {
	Price    decimal.Decimal
	TotalQty decimal.Decimal

	head, tail *Order
	count      int
}

// Head returns the highest-priority order at this price.
func (l *Level) Head() *Order { return l.head }

// Count returns the number of resting orders at this price.
func (l *Level) Count() int { return l.count }

// enqueue appends o at the tail, i.e. behind every order already
// resting at this price.
func (l *Level) enqueue(o *Order) {
	if o.level != nil {
		panic(fmt.Sprintf("book: order %d enqueued while still linked to level %s", o.ID, o.level.Price))
	}
	if l.tail != nil {
		l.tail.next = o
		o.prev = l.tail
	} else {
		l.head = o
	}
	l.tail = o
	l.count++
	l.TotalQty = l.TotalQty.Add(o.Qty)
	o.level = l
}

// unlink removes o from the queue in O(1) using its own links.
func (l *Level) unlink(o *Order) {
	if o.level != l {
		panic(fmt.Sprintf("book: order %d unlinked from level %s it does not belong to", o.ID, l.Price))
	}
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.next, o.prev = nil, nil
	o.level = nil
	l.count--
	l.TotalQty = l.TotalQty.Sub(o.Qty)
	if l.count > 0 && !l.TotalQty.IsPositive() {
		panic(fmt.Sprintf("book: level %s desynchronized, %d orders but total %s", l.Price, l.count, l.TotalQty))
	}
}
