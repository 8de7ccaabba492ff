package service

import (
	"context"
	"time"

	"depthbook/snapshot"
)

// StartSnapshotJob periodically persists the book and garbage-collects
// the WAL segments and acked outbox entries the snapshot covers.
func (s *BookService) StartSnapshotJob(ctx context.Context, dir string, interval time.Duration) {
	w := &snapshot.Writer{Dir: dir}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		var lastVersion uint64
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				v := s.book.Version()
				if v == lastVersion {
					continue
				}

				// Holding mu stops mutations for the cut so the
				// exported orders match the captured seq exactly.
				s.mu.Lock()
				seq := s.seq.Current()
				err := w.Write(seq, s.book)
				s.mu.Unlock()
				if err != nil {
					s.log.Error("snapshot write failed", "seq", seq, "err", err)
					continue
				}
				lastVersion = v

				if s.wal != nil {
					if err := s.wal.TruncateBefore(seq); err != nil {
						s.log.Warn("wal truncate failed", "seq", seq, "err", err)
					}
				}
				if s.outbox != nil {
					if err := s.outbox.TruncateAckedUpTo(seq); err != nil {
						s.log.Warn("outbox truncate failed", "seq", seq, "err", err)
					}
				}
				s.log.Debug("snapshot written", "seq", seq)
			}
		}
	}()
}
