package service

import (
	"errors"
	"fmt"

	"depthbook/infra/wal"
)

// ReplayFromWAL re-applies every logged mutation with seq > after to
// the book and fast-forwards the service sequencer past the last
// record. It must finish before the service accepts traffic.
//
// Replay is strict: a place must reproduce the id it was logged with,
// and a cancel or amend must find its order. Any mismatch means the
// log and snapshot disagree, and starting up on top of that state
// would silently diverge from the pre-restart book.
func (s *BookService) ReplayFromWAL(dir string, after uint64) error {
	lastSeq, err := wal.Replay(dir, func(rec *wal.Record) error {
		if rec.Seq <= after {
			return nil
		}

		switch rec.Type {
		case wal.RecordPlace:
			id, side, price, qty, err := decodePlace(rec.Data)
			if err != nil {
				return err
			}
			got, err := s.book.NewOrder(side, price, qty)
			if err != nil {
				return fmt.Errorf("replay place seq %d: %w", rec.Seq, err)
			}
			if got != id {
				return fmt.Errorf("replay place seq %d: id %d reissued as %d", rec.Seq, id, got)
			}

		case wal.RecordCancel:
			id, err := decodeCancel(rec.Data)
			if err != nil {
				return err
			}
			if err := s.book.CancelOrder(id); err != nil {
				return fmt.Errorf("replay cancel seq %d order %d: %w", rec.Seq, id, err)
			}

		case wal.RecordAmend:
			id, price, qty, err := decodeAmend(rec.Data)
			if err != nil {
				return err
			}
			if err := s.book.AmendOrder(id, price, qty); err != nil {
				return fmt.Errorf("replay amend seq %d order %d: %w", rec.Seq, id, err)
			}

		default:
			return errors.New("unknown record type")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The log may be empty after a snapshot truncated every covered
	// segment, so the floor is the snapshot seq, not just the last
	// record. Restarting below it would reissue covered seqs and a
	// later replay would skip those records as already applied.
	floor := lastSeq
	if after > floor {
		floor = after
	}
	if floor > s.seq.Current() {
		s.seq.Reset(floor)
	}

	s.log.Info("wal replay complete", "last_seq", lastSeq, "orders", s.book.Len())
	return nil
}
