package service

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"depthbook/domain/book"
	"depthbook/infra/outbox"
	"depthbook/infra/sequence"
	"depthbook/infra/wal"
)

// BookService wires the book to its durability and feed side-effects.
// The book itself serializes mutations; the service adds, per
// successful mutation, a WAL record and an outbox event under the
// same logical step.
//
// WAL and outbox are optional: a nil handle turns the side-effect off,
// which embedded and test setups use.
type BookService struct {
	// mu makes (mutation, seq assignment, WAL append, outbox put) one
	// atomic step. Without it two concurrent places could commit to
	// the book in one order and to the WAL in the other, and replay
	// would reissue ids out of order. Snapshot cuts take it too.
	mu sync.Mutex

	log    *slog.Logger
	book   *book.Book
	wal    *wal.WAL
	outbox *outbox.Outbox

	// seq numbers WAL records and outbox events. It is distinct from
	// order ids: cancels and amends consume a seq but no id.
	seq *sequence.Sequencer
}

func New(log *slog.Logger, b *book.Book, w *wal.WAL, ob *outbox.Outbox) *BookService {
	return &BookService{
		log:    log,
		book:   b,
		wal:    w,
		outbox: ob,
		seq:    sequence.New(0),
	}
}

// Place rests a new order and returns its id.
func (s *BookService) Place(side book.Side, price, qty decimal.Decimal) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.book.NewOrder(side, price, qty)
	if err != nil {
		return 0, err
	}

	seq := s.seq.Next()
	s.append(wal.NewRecord(wal.RecordPlace, seq, encodePlace(id, side, price, qty)))

	ev := newEvent("place", seq, id)
	ev.Side = side.String()
	ev.Price = price.String()
	ev.Qty = qty.String()
	s.publish(ev)

	s.log.Debug("order placed", "id", id, "side", side.String(), "price", price.String(), "qty", qty.String(), "seq", seq)
	return id, nil
}

// Cancel removes a resting order.
func (s *BookService) Cancel(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.book.CancelOrder(id); err != nil {
		return err
	}

	seq := s.seq.Next()
	s.append(wal.NewRecord(wal.RecordCancel, seq, encodeCancel(id)))
	s.publish(newEvent("cancel", seq, id))

	s.log.Debug("order cancelled", "id", id, "seq", seq)
	return nil
}

// Amend updates a resting order's price and/or quantity.
func (s *BookService) Amend(id uint64, price, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.book.AmendOrder(id, price, qty); err != nil {
		return err
	}

	seq := s.seq.Next()
	s.append(wal.NewRecord(wal.RecordAmend, seq, encodeAmend(id, price, qty)))

	ev := newEvent("amend", seq, id)
	ev.Price = price.String()
	ev.Qty = qty.String()
	s.publish(ev)

	s.log.Debug("order amended", "id", id, "price", price.String(), "qty", qty.String(), "seq", seq)
	return nil
}

// Depth returns the top-n levels per side.
func (s *BookService) Depth(n int) book.DepthSnapshot {
	return s.book.Depth(n)
}

// BBO returns the best bid and offer.
func (s *BookService) BBO() book.Quote {
	return s.book.BBO()
}

// Version returns the book's mutation counter.
func (s *BookService) Version() uint64 {
	return s.book.Version()
}

func (s *BookService) append(r *wal.Record) {
	if s.wal == nil {
		return
	}
	if err := s.wal.Append(r); err != nil {
		s.log.Error("wal append failed", "seq", r.Seq, "err", err)
	}
}

func (s *BookService) publish(ev Event) {
	if s.outbox == nil {
		return
	}
	if err := s.outbox.Put(ev.Seq, ev.encode()); err != nil {
		s.log.Error("outbox put failed", "seq", ev.Seq, "err", err)
	}
}
